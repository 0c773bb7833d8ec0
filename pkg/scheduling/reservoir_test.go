package scheduling

import "testing"

// TestReservoirTimeTablingPushesRisingEventPastCapacity:
// a reservoir with max level 5 takes on +5 at a fixed time 0 and -3 at a
// fixed time 5; a third, flexible +3 event cannot occur anywhere in
// [0,5) (5+3=8 would overflow) but fits cleanly at or after 5 (2+3=5). Its
// time variable's lower bound must therefore be pushed to 5.
func TestReservoirTimeTablingPushesRisingEventPastCapacity(t *testing.T) {
	model := NewModel()
	values := make([]int, 0, 11)
	for v := 0; v <= 10; v++ {
		values = append(values, v+1)
	}
	timeVar := model.NewVariable(NewBitSetDomainFromValues(11, values))

	solver := NewSolver(model)
	th := NewTaskHelper(solver, nil, model.Precedences())

	events := []ReservoirEvent{
		{Time: Constant(0), Delta: 5, PresenceVar: -1},
		{Time: Constant(5), Delta: -3, PresenceVar: -1},
		{Time: FromVar(timeVar), Delta: 3, PresenceVar: -1},
	}
	rt := NewReservoirTimeTabling(th, events, 0, 5)

	pushed, err := rt.Propagate()
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if !pushed {
		t.Fatalf("Propagate() pushed = false, want true")
	}

	dom := solver.GetDomain(solver.Current(), timeVar)
	if got := dom.Min() - 1; got < 5 {
		t.Errorf("start_min(timeVar) = %d, want >= 5 (pushed past the capacity-exceeding window)", got)
	}
}

// TestReservoirTimeTablingNoConflictWhenFeasible checks that a reservoir
// whose events never threaten the bounds produces neither a conflict nor a
// spurious push.
func TestReservoirTimeTablingNoConflictWhenFeasible(t *testing.T) {
	model := NewModel()
	solver := NewSolver(model)
	th := NewTaskHelper(solver, nil, model.Precedences())

	events := []ReservoirEvent{
		{Time: Constant(0), Delta: 2, PresenceVar: -1},
		{Time: Constant(5), Delta: -2, PresenceVar: -1},
	}
	rt := NewReservoirTimeTabling(th, events, 0, 5)

	if pushed, err := rt.Propagate(); err != nil {
		t.Fatalf("Propagate() error = %v", err)
	} else if pushed {
		t.Errorf("Propagate() pushed = true, want false")
	}
}
