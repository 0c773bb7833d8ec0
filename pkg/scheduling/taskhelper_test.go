package scheduling

import "testing"

// TestTaskHelperTimeDirectionSymmetry checks the direction law: under the
// backward view, start and end swap roles with their signs flipped
// (start <-> -end, end <-> -start), sizes unchanged.
func TestTaskHelperTimeDirectionSymmetry(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 2, 5, 10, 3, 3, "a")
	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a}, model.Precedences())

	fwdStartMin, fwdStartMax := th.StartMin(a), th.StartMax(a)
	fwdEndMin, fwdEndMax := th.EndMin(a), th.EndMax(a)

	if err := th.SynchronizeAndSetTimeDirection(false); err != nil {
		t.Fatalf("SynchronizeAndSetTimeDirection(false) error = %v", err)
	}

	cases := []struct {
		name      string
		got, want int
	}{
		{"StartMin", th.StartMin(a), -fwdEndMax},
		{"StartMax", th.StartMax(a), -fwdEndMin},
		{"EndMin", th.EndMin(a), -fwdStartMax},
		{"EndMax", th.EndMax(a), -fwdStartMin},
		{"SizeMin", th.SizeMin(a), 3},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("backward %s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

// TestTaskHelperBackwardIncreaseStartMinTightensEndMax: pushing the logical
// start-min in the backward view must land on the raw variable as an
// end-max reduction, which is exactly how every single-direction propagator
// gets its symmetric pass for free.
func TestTaskHelperBackwardIncreaseStartMinTightensEndMax(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 10, 15, 3, 3, "a")
	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a}, model.Precedences())

	if err := th.SynchronizeAndSetTimeDirection(false); err != nil {
		t.Fatalf("SynchronizeAndSetTimeDirection(false) error = %v", err)
	}
	// Backward start-min is -(end_max) = -13; raising it to -9 must cap the
	// forward end_max at 9, i.e. raw start_max at 6.
	ok, conflict := th.IncreaseStartMin(a, -9)
	if conflict != nil {
		t.Fatalf("IncreaseStartMin() conflict = %v", conflict)
	}
	if !ok {
		t.Fatalf("IncreaseStartMin() pushed = false, want true")
	}
	if err := th.SynchronizeAndSetTimeDirection(true); err != nil {
		t.Fatalf("SynchronizeAndSetTimeDirection(true) error = %v", err)
	}
	if got := th.EndMax(a); got != 9 {
		t.Errorf("forward EndMax = %d, want 9", got)
	}
}

// TestTaskHelperSynchronizeIdempotent: synchronising twice in the same
// direction must leave every sort order unchanged.
func TestTaskHelperSynchronizeIdempotent(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 3, 7, 10, 2, 2, "a")
	b := buildTask(model, 1, 0, 4, 10, 3, 3, "b")
	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b}, model.Precedences())

	first := append([]int(nil), th.TaskByIncreasingStartMin()...)
	if err := th.SynchronizeAndSetTimeDirection(true); err != nil {
		t.Fatalf("SynchronizeAndSetTimeDirection(true) error = %v", err)
	}
	second := th.TaskByIncreasingStartMin()
	if len(first) != len(second) {
		t.Fatalf("order length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("order[%d] = %d after resync, want %d", i, second[i], first[i])
		}
	}
}

// TestTaskHelperPushEmptyingOptionalDomainForcesAbsence: an optional task
// whose bound push leaves no feasible start must be forced absent, never
// reported as a conflict.
func TestTaskHelperPushEmptyingOptionalDomainForcesAbsence(t *testing.T) {
	model := NewModel()
	presenceVar := model.NewVariable(NewBitSetDomainFromValues(2, []int{1, 2}))
	a := buildTask(model, 0, 0, 2, 10, 3, 3, "a")
	a.PresenceVar = presenceVar
	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a}, model.Precedences())

	ok, conflict := th.IncreaseStartMin(a, 3)
	if conflict != nil {
		t.Fatalf("IncreaseStartMin() conflict = %v, want absence push", conflict)
	}
	if !ok {
		t.Fatalf("IncreaseStartMin() pushed = false, want true (absence)")
	}
	if !th.IsAbsent(a) {
		t.Errorf("IsAbsent(a) = false, want true after the domain-emptying push")
	}
}
