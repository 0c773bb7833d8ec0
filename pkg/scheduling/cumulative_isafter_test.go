package scheduling

import "testing"

// TestCumulativeIsAfterSubsetLiftsBound: a and b (energy 6 each: size 3,
// demand 2) both precede c on a capacity-3 resource. Each precedence alone
// only moves c past a single end-min (3), but their combined energy of 12
// cannot drain through capacity 3 in under 4 time units, so
// start_min(c) >= 0 + ceil(12/3) = 4.
func TestCumulativeIsAfterSubsetLiftsBound(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 10, 20, 3, 3, "a")
	b := buildTask(model, 1, 0, 10, 20, 3, 3, "b")
	c := buildTask(model, 2, 0, 15, 20, 1, 1, "c")

	if err := model.Precedences().AddPrecedence(a.ID, c.ID, 0); err != nil {
		t.Fatalf("AddPrecedence(a, c) error = %v", err)
	}
	if err := model.Precedences().AddPrecedence(b.ID, c.ID, 0); err != nil {
		t.Fatalf("AddPrecedence(b, c) error = %v", err)
	}

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b, c}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2), Constant(2), Constant(1)})
	ia := NewCumulativeIsAfterSubset(th, dh, []*Task{a, b}, Constant(3), model.Precedences())

	pushed, err := ia.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}
	if got := startMinOf(solver, c); got < 4 {
		t.Errorf("start_min(c) = %d, want >= 4 (after draining 12 energy at capacity 3)", got)
	}
}

// TestCumulativeIsAfterSubsetNoPrecedencesNoPush: with nothing recorded in
// the precedence graph the propagator must be inert.
func TestCumulativeIsAfterSubsetNoPrecedencesNoPush(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 10, 20, 3, 3, "a")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2)})
	ia := NewCumulativeIsAfterSubset(th, dh, []*Task{a}, Constant(3), model.Precedences())

	if pushed, err := ia.Propagate(); err != nil {
		t.Fatalf("Propagate() error = %v", err)
	} else if pushed {
		t.Errorf("Propagate() pushed = true, want false")
	}
}
