package scheduling

import "testing"

// buildTask allocates a fresh start-variable domain over [0, horizon] (value
// 1..horizon+1 internally) restricted to [lo, hi], and returns a mandatory
// Task over it.
func buildTask(model *Model, id, lo, hi, horizon, sizeMin, sizeMax int, name string) *Task {
	values := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		values = append(values, v+1)
	}
	startVar := model.NewVariable(NewBitSetDomainFromValues(horizon+1, values))
	return NewTask(id, startVar, sizeMin, sizeMax, name)
}

func startMinOf(s *Solver, t *Task) int {
	return s.GetDomain(s.Current(), t.StartVar).Min() - 1
}

func TestTwoItemDisjunctiveForcesOrder(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 9, 9, 5, 5, "a")
	b := buildTask(model, 1, 0, 3, 9, 5, 5, "b")
	solver := NewSolver(model)
	solver.AddDisjunctive([]*Task{a, b})

	if err := solver.Propagate(); err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}

	// b cannot start after 3 and run for 5, so a (which can start as late as
	// 9) must run after b: a's start_min is pushed to b's end_min (5).
	if got := startMinOf(solver, a); got != 5 {
		t.Errorf("start_min(a) = %d, want 5", got)
	}
}

func TestTwoItemDisjunctiveConflictWhenNeitherOrderFits(t *testing.T) {
	model := NewModel()
	// Both tasks are pinned to overlapping 2-unit windows with size 5: no
	// relative order can fit either.
	a := buildTask(model, 0, 0, 1, 20, 5, 5, "a")
	b := buildTask(model, 1, 0, 1, 20, 5, 5, "b")
	solver := NewSolver(model)
	solver.AddDisjunctive([]*Task{a, b})

	if err := solver.Propagate(); err == nil {
		t.Fatalf("Propagate() error = nil, want a conflict")
	}
}
