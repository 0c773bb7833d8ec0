package scheduling

import "sort"

// DisjunctiveWithPrecedences lifts level-zero precedence bounds into
// variable lower bounds. For every variable v with a recorded precedence
// end(t_i) + offset_i <= v, if the t_i targeting v are
// pairwise disjoint (guaranteed by the caller supplying a set that is
// itself under a disjunctive/no-overlap constraint), then
// v >= min_start(S) + sum(size_min(S)) + min(offset_i).
//
// Simplification (recorded in DESIGN.md): per-subwindow scoping is realised
// by requiring the caller to pass one already-disjoint task set per call
// (each constructor takes one constraint's worth of tasks at a time) rather
// than re-deriving independent subwindows internally.
type DisjunctiveWithPrecedences struct {
	th    *TaskHelper
	tasks []*Task
	prec  *PrecedenceGraph
	id    RegistrationID
}

// NewDisjunctiveWithPrecedences builds the propagator over a pairwise
// disjoint task set and the model's precedence graph.
func NewDisjunctiveWithPrecedences(th *TaskHelper, tasks []*Task, prec *PrecedenceGraph) *DisjunctiveWithPrecedences {
	return &DisjunctiveWithPrecedences{th: th, tasks: tasks, prec: prec}
}

func (p *DisjunctiveWithPrecedences) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 5)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *DisjunctiveWithPrecedences) Propagate() (bool, error) {
	if p.prec == nil {
		return false, nil
	}
	th := p.th
	if err := th.SynchronizeAndSetTimeDirection(true); err != nil {
		return false, nil
	}

	// Collect the set of distinct variables targeted by a precedence whose
	// source is one of our tasks.
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
			task   *Task
			offset int
		}
		var members []member
		for _, t := range p.tasks {
			if !th.IsPresent(t) {
				continue // the lifted bound sums size over tasks that must run
			}
			if off, ok := p.prec.MinDistance(t.ID, v); ok {
				members = append(members, member{task: t, offset: off})
			}
		}
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return th.ShiftedStartMin(members[i].task) < th.ShiftedStartMin(members[j].task)
		})

		bestLB := -1 << 62
		sumDuration := 0
		minOffset := 1 << 62
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			sumDuration += th.SizeMin(m.task)
			if m.offset < minOffset {
				minOffset = m.offset
			}
			lb := th.ShiftedStartMin(m.task) + sumDuration + minOffset
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
			th.AddStartMinReason(m.task, th.StartMin(m.task))
			th.AddPresenceReason(m.task)
		}
		ok, conflict := th.IncreaseStartMin(targetTask, bestLB)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}
