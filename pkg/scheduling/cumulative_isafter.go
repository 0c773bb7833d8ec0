package scheduling

import "sort"

// CumulativeIsAfterSubset lifts level-zero precedence bounds over a
// cumulative resource: for a variable v with recorded precedences
// end(t_i) + offset_i <= v, any subset S of the t_i must pump
// sum(energy_min(S)) through a capacity-C pipe after min_start(S), so
// v >= min_start(S) + ceil(sum(energy_min(S)) / C) + min(offset_i). The
// disjunctive counterpart (DisjunctiveWithPrecedences) is the C = 1,
// demand = 1 special case of the same scan.
type CumulativeIsAfterSubset struct {
	th       *TaskHelper
	dh       *DemandHelper
	tasks    []*Task
	capacity AffineExpression
	prec     *PrecedenceGraph
	id       RegistrationID
}

// NewCumulativeIsAfterSubset builds the propagator over one cumulative
// constraint's tasks and the model's precedence graph.
func NewCumulativeIsAfterSubset(th *TaskHelper, dh *DemandHelper, tasks []*Task, capacity AffineExpression, prec *PrecedenceGraph) *CumulativeIsAfterSubset {
	return &CumulativeIsAfterSubset{th: th, dh: dh, tasks: tasks, capacity: capacity, prec: prec}
}

func (p *CumulativeIsAfterSubset) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 5)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *CumulativeIsAfterSubset) Propagate() (bool, error) {
	if p.prec == nil {
		return false, nil
	}
	th := p.th
	dh := p.dh
	capMax := th.AffineMax(p.capacity)
	if capMax <= 0 {
		return false, nil
	}
	if err := th.SynchronizeAndSetTimeDirection(true); err != nil {
		return false, nil
	}

	targets := map[int]bool{}
	for _, t := range p.tasks {
		for key := range p.prec.offsets {
			if key[0] == t.ID {
				targets[key[1]] = true
			}
		}
	}

	pushed := false
	for v := range targets {
		type member struct {
			taskIdx int
			offset  int
		}
		var members []member
		for i, t := range p.tasks {
			if !th.IsPresent(t) {
				continue
			}
			if off, ok := p.prec.MinDistance(t.ID, v); ok {
				members = append(members, member{taskIdx: i, offset: off})
			}
		}
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return th.ShiftedStartMin(p.tasks[members[i].taskIdx]) < th.ShiftedStartMin(p.tasks[members[j].taskIdx])
		})

		// Suffix scan: the members starting at or after a given point form
		// the subset whose pumped energy bounds v from below.
		bestLB := -1 << 62
		sumEnergy := 0
		minOffset := 1 << 62
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			sumEnergy += dh.EnergyMin(m.taskIdx)
			if m.offset < minOffset {
				minOffset = m.offset
			}
			duration := (sumEnergy + capMax - 1) / capMax
			lb := th.ShiftedStartMin(p.tasks[m.taskIdx]) + duration + minOffset
			if lb > bestLB {
				bestLB = lb
			}
		}
		if bestLB <= -1<<61 {
			continue
		}
		targetTask := th.TaskByID(v)
		if targetTask == nil {
			continue
		}
		th.ResetReason()
		for _, m := range members {
			t := p.tasks[m.taskIdx]
			th.AddStartMinReason(t, th.StartMin(t))
			th.AddPresenceReason(t)
		}
		ok, conflict := th.IncreaseStartMin(targetTask, bestLB)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}
