package scheduling

import "testing"

// TestTimeTablePerTaskDoesNotSelfConflict guards against a regression where
// a single mandatory task whose own demand exceeds half of capacity would
// be compared against a profile that included its own contribution,
// spuriously concluding an overload against itself.
func TestTimeTablePerTaskDoesNotSelfConflict(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 2, 2, 10, 3, 3, "a")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2)})
	ttt := NewTimeTablePerTask(th, dh, []*Task{a}, Constant(3))

	pushed, err := ttt.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v, want no conflict (a alone cannot overload its own resource)", err)
	}
	if pushed {
		t.Errorf("Propagate() pushed = true, want false")
	}
}

// TestTimeTablePerTaskPushesStartMinPastBlockingTask: a's
// mandatory part [2,5) at demand 2 leaves only 1 unit of spare capacity
// (capacity 3), too little for b's own demand of 2, so b cannot overlap
// [2,5) at all and its start_min must jump past it.
func TestTimeTablePerTaskPushesStartMinPastBlockingTask(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 2, 2, 10, 3, 3, "a")
	b := buildTask(model, 1, 0, 10, 10, 3, 3, "b")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2), Constant(2)})
	ttt := NewTimeTablePerTask(th, dh, []*Task{a, b}, Constant(3))

	pushed, err := ttt.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}
	if got := startMinOf(solver, b); got < 5 {
		t.Errorf("start_min(b) = %d, want >= 5 (pushed past a's mandatory part)", got)
	}
}
