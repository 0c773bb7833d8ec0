package scheduling

import "testing"

// TestNotLastPushesEndMaxDown exercises the not-last rule directly against the
// propagator (bypassing the other disjunctive filters) so the scenario
// isolates NotLast's own reasoning: a occupies [0,2) and b occupies [3,5),
// leaving only [2,3) free. c (size 1) cannot be scheduled last: a and b
// packed left end at 5, past c's start_max of 4. So c must end no later
// than the start_max of the critical task b, forcing end_max(c) down to 3.
func TestNotLastPushesEndMaxDown(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 0, 10, 2, 2, "a")
	b := buildTask(model, 1, 3, 3, 10, 2, 2, "b")
	c := buildTask(model, 2, 0, 4, 10, 1, 1, "c")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b, c}, model.Precedences())
	nl := NewNotLast(th, []*Task{a, b, c})

	pushed, err := nl.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}

	gotEndMax := th.EndMax(c)
	if gotEndMax > 3 {
		t.Errorf("end_max(c) = %d, want <= 3 (cannot be scheduled after both a and b)", gotEndMax)
	}
}

// TestNotLastNoPushWhenSlackAvailable checks the negative case: when no
// task's domain comes close enough to another's to make any ordering
// infeasible, NotLast must not touch any bounds, in either time direction.
func TestNotLastNoPushWhenSlackAvailable(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 0, 10, 1, 1, "a")
	b := buildTask(model, 1, 5, 5, 10, 1, 1, "b")
	c := buildTask(model, 2, 2, 3, 10, 1, 1, "c")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b, c}, model.Precedences())
	nl := NewNotLast(th, []*Task{a, b, c})

	dom := solver.GetDomain(solver.Current(), c.StartVar)
	wantMin, wantMax := dom.Min(), dom.Max()

	if pushed, err := nl.Propagate(); err != nil {
		t.Fatalf("Propagate() error = %v", err)
	} else if pushed {
		t.Errorf("Propagate() pushed = true, want false (no infeasible ordering exists)")
	}

	dom = solver.GetDomain(solver.Current(), c.StartVar)
	if dom.Min() != wantMin || dom.Max() != wantMax {
		t.Errorf("start domain of c changed to [%d,%d], want unchanged [%d,%d]", dom.Min(), dom.Max(), wantMin, wantMax)
	}
}
