package scheduling

import "sort"

// DisjunctiveOverloadChecker detects that a set of
// tasks cannot all fit before some deadline, or force absence of optional
// tasks whose inclusion would cause overload. Runs in both time directions
// via TaskHelper.RunBothDirections so it catches overload from either end
// of the horizon.
//
// Simplification (recorded in DESIGN.md): the "subwindow split"
// performance optimisation is not implemented; this propagator processes
// the whole task set as a single window. That is strictly more work, never
// less sound, than splitting into independent windows.
type DisjunctiveOverloadChecker struct {
	th    *TaskHelper
	tasks []*Task
	tree  *ThetaLambdaTree
	id    RegistrationID
}

// NewDisjunctiveOverloadChecker builds the overload checker over tasks.
func NewDisjunctiveOverloadChecker(th *TaskHelper, tasks []*Task) *DisjunctiveOverloadChecker {
	return &DisjunctiveOverloadChecker{th: th, tasks: tasks, tree: NewThetaLambdaTree(len(tasks))}
}

func (p *DisjunctiveOverloadChecker) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 1)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *DisjunctiveOverloadChecker) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *DisjunctiveOverloadChecker) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	n := len(p.tasks)
	p.tree.Reset(n)

	// The theta-lambda tree's envelope composition (thetalambda.go's
	// compose) assumes leaf order == chronological order, so events must be
	// placed at a leaf position equal to their rank in increasing
	// shifted_start_min, NOT their raw task-array index. startRank maps a
	// task's array index to that leaf position; rankToIdx is its inverse,
	// used to translate an event id the tree hands back (e.g. from
	// GetEventsWithOptionalEnvelopeGreaterThan) into a task-array index.
	rankToIdx := make([]int, n)
	for i := range rankToIdx {
		rankToIdx[i] = i
	}
	sort.SliceStable(rankToIdx, func(a, b int) bool {
		return th.ShiftedStartMin(p.tasks[rankToIdx[a]]) < th.ShiftedStartMin(p.tasks[rankToIdx[b]])
	})
	startRank := make([]int, n)
	for rank, idx := range rankToIdx {
		startRank[idx] = rank
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// Sort indices by increasing shifted_end_max.
	sort.SliceStable(order, func(a, b int) bool {
		return th.ShiftedEndMax(p.tasks[order[a]]) < th.ShiftedEndMax(p.tasks[order[b]])
	})

	pushed := false
	inserted := make([]int, 0, n)
	for _, idx := range order {
		t := p.tasks[idx]
		if th.IsAbsent(t) {
			continue
		}
		energy := th.SizeMin(t)
		if th.IsPresent(t) {
			p.tree.AddOrUpdateEvent(startRank[idx], th.ShiftedStartMin(t), energy, energy)
		} else {
			p.tree.AddOrUpdateOptionalEvent(startRank[idx], th.ShiftedStartMin(t), energy)
		}
		inserted = append(inserted, idx)
		deadline := th.ShiftedEndMax(t)

		if p.tree.GetEnvelope() > deadline {
			th.ResetReason()
			for _, k := range inserted {
				tk := p.tasks[k]
				if th.IsPresent(tk) {
					th.AddPresenceReason(tk)
					th.AddStartMinReason(tk, th.ShiftedStartMin(tk))
					th.AddEndMinReason(tk, th.EndMin(tk))
				}
			}
			th.AddShiftedEndMaxReason(t, deadline)
			return pushed, th.ReportConflict("disjunctive overload")
		}

		for p.tree.GetOptionalEnvelope() > deadline {
			_, optionalRank, _ := p.tree.GetEventsWithOptionalEnvelopeGreaterThan(deadline)
			if optionalRank < 0 {
				break
			}
			opt := p.tasks[rankToIdx[optionalRank]]
			th.ResetReason()
			for _, k := range inserted {
				tk := p.tasks[k]
				if tk.ID == opt.ID {
					continue
				}
				if th.IsPresent(tk) {
					th.AddPresenceReason(tk)
					th.AddStartMinReason(tk, th.ShiftedStartMin(tk))
					th.AddEndMinReason(tk, th.EndMin(tk))
				}
			}
			th.AddShiftedEndMaxReason(t, deadline)
			ok, conflict := th.PushTaskAbsence(opt)
			if conflict != nil {
				return pushed, conflict
			}
			pushed = pushed || ok
			p.tree.RemoveEvent(optionalRank)
		}
	}
	return pushed, nil
}
