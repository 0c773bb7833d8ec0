package scheduling

import "testing"

// TestCumulativeEnergyOverloadConflict: two present tasks, each contributing
// energy 4 (size 2 * demand 2), must both run inside [0,3) against capacity
// 2. The window only offers 2*3 = 6 units of resource-time, so the
// theta-lambda envelope (8) proves overload even though no single instant
// is yet forced over capacity.
func TestCumulativeEnergyOverloadConflict(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 1, 3, 2, 2, "a")
	b := buildTask(model, 1, 0, 1, 3, 2, 2, "b")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2), Constant(2)})
	eo := NewCumulativeEnergyOverload(th, dh, []*Task{a, b}, Constant(2))

	if _, err := eo.Propagate(); err == nil {
		t.Fatalf("Propagate() error = nil, want energy overload conflict")
	}
}

// TestCumulativeEnergyOverloadPushesAbsentOptional: a alone fits the [0,3)
// window at capacity 2 (energy 4 <= 6), but adding the optional c (another
// energy 4) would need 8 > 6, so c's presence literal must be forced to
// absent rather than reporting a hard conflict.
func TestCumulativeEnergyOverloadPushesAbsentOptional(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 1, 3, 2, 2, "a")
	presenceVar := model.NewVariable(NewBitSetDomainFromValues(2, []int{1, 2}))
	c := buildTask(model, 1, 0, 1, 3, 2, 2, "c")
	c.PresenceVar = presenceVar

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, c}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(2), Constant(2)})
	eo := NewCumulativeEnergyOverload(th, dh, []*Task{a, c}, Constant(2))

	pushed, err := eo.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v, want no conflict (c forced absent)", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}
	dom := solver.GetDomain(solver.Current(), presenceVar)
	if !dom.IsSingleton() || dom.SingletonValue()-1 != 0 {
		t.Errorf("presence(c) = %v, want forced to absent (0)", dom)
	}
}

// TestConservativeScaleOverloadNoFalseConflict guards the dual-feasibility
// of the f0 projection itself: two demand-3 tasks sharing one slot of a
// capacity-7 resource are plainly feasible (3+3 = 6 <= 7), so no scale K
// may project them into an overload. The ceiling variant of f0 fails
// exactly here (at K=3 it projects 2+2 > 3).
func TestConservativeScaleOverloadNoFalseConflict(t *testing.T) {
	model := NewModel()
	a := buildTask(model, 0, 0, 0, 2, 1, 1, "a")
	b := buildTask(model, 1, 0, 0, 2, 1, 1, "b")

	solver := NewSolver(model)
	th := NewTaskHelper(solver, []*Task{a, b}, model.Precedences())
	dh := NewDemandHelper(th, []AffineExpression{Constant(3), Constant(3)})
	cs := NewConservativeScaleOverload(th, dh, []*Task{a, b}, Constant(7), DefaultDFFScales())

	if _, err := cs.Propagate(); err != nil {
		t.Fatalf("Propagate() error = %v, want no conflict (6 <= 7 is feasible)", err)
	}
}

// TestConservativeScaleOverloadDetectsOverload: three demand-3 tasks pinned
// to the same slot of a capacity-7 resource (9 > 7). The default scales are
// tried in order 2, 3, 4, 5, 8; K=5 is the first to flag it: each demand
// projects to floor(15/7) = 2 and the window to 5, so 6 > 5.
func TestConservativeScaleOverloadDetectsOverload(t *testing.T) {
	model := NewModel()
	tasks := make([]*Task, 3)
	demands := make([]AffineExpression, 3)
	for i := range tasks {
		tasks[i] = buildTask(model, i, 0, 0, 2, 1, 1, "t")
		demands[i] = Constant(3)
	}

	solver := NewSolver(model)
	th := NewTaskHelper(solver, tasks, model.Precedences())
	dh := NewDemandHelper(th, demands)
	cs := NewConservativeScaleOverload(th, dh, tasks, Constant(7), DefaultDFFScales())

	if _, err := cs.Propagate(); err == nil {
		t.Fatalf("Propagate() error = nil, want DFF overload conflict (9 > 7)")
	}
}
