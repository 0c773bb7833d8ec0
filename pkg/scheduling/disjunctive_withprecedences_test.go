package scheduling

import "testing"

// TestDisjunctiveWithPrecedencesLiftsBound: a (size 3) and b (size 2) are
// pairwise disjoint and both recorded, at level zero, as predecessors of c.
// Individually neither precedence moves c past 3, but because a and b
// cannot overlap each other, c cannot start before their packed span ends:
// start_min(c) >= 0 + (3+2) + 0 = 5.
func TestDisjunctiveWithPrecedencesLiftsBound(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 10, 20, 3, 3, "a")
	b := buildTask(model, 1, 0, 10, 20, 2, 2, "b")
	c := buildTask(model, 2, 0, 15, 20, 1, 1, "c")

	if err := model.Precedences().AddPrecedence(a.ID, c.ID, 0); err != nil {
		t.Fatalf("AddPrecedence(a, c) error = %v", err)
	}
	if err := model.Precedences().AddPrecedence(b.ID, c.ID, 0); err != nil {
		t.Fatalf("AddPrecedence(b, c) error = %v", err)
	}

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b, c}, model.Precedences())
	dwp := NewDisjunctiveWithPrecedences(th, []*Task{a, b}, model.Precedences())

	pushed, err := dwp.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}
	if got := startMinOf(solver, c); got < 5 {
		t.Errorf("start_min(c) = %d, want >= 5 (after the packed span of a and b)", got)
	}
}

// TestPrecedenceGraphRejectsCycle: recording a->b then b->a must fail, a
// cyclic level-zero precedence set being a static contradiction.
func TestPrecedenceGraphRejectsCycle(t *testing.T) {
	pg := NewPrecedenceGraph()
	if err := pg.AddPrecedence(0, 1, 0); err != nil {
		t.Fatalf("AddPrecedence(0, 1) error = %v", err)
	}
	if err := pg.AddPrecedence(1, 0, 0); err == nil {
		t.Fatalf("AddPrecedence(1, 0) error = nil, want cycle rejection")
	}
}

// TestPrecedenceGraphMinDistanceKeepsTightestOffset: re-recording the same
// pair with a smaller offset must not overwrite the larger one already
// recorded.
func TestPrecedenceGraphMinDistanceKeepsTightestOffset(t *testing.T) {
	pg := NewPrecedenceGraph()
	if err := pg.AddPrecedence(0, 1, 2); err != nil {
		t.Fatalf("AddPrecedence offset 2 error = %v", err)
	}
	if err := pg.AddPrecedence(0, 1, 1); err != nil {
		t.Fatalf("AddPrecedence offset 1 error = %v", err)
	}
	if off, ok := pg.MinDistance(0, 1); !ok || off != 2 {
		t.Errorf("MinDistance(0, 1) = (%d, %v), want (2, true)", off, ok)
	}
	if _, ok := pg.MinDistance(1, 0); ok {
		t.Errorf("MinDistance(1, 0) = recorded, want absent")
	}
}
