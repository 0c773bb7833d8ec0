package scheduling

import "sort"

// EdgeFinding implements disjunctive edge finding: given a set of tasks
// with a common deadline, detect any task that cannot fit anywhere but
// after all the
// others ("gray" in the theta-lambda terminology) and push its start-min up
// to the envelope of the remaining theta set.
//
// Simplification (recorded in DESIGN.md): the "subwindow split"
// optimisation is not implemented — the whole task list is treated as one
// window, which is sound (just potentially slower) since edge-finding over
// the full set subsumes edge-finding over any partition of it.
type EdgeFinding struct {
	th    *TaskHelper
	tasks []*Task
	tree  *ThetaLambdaTree
	id    RegistrationID
}

// NewEdgeFinding builds the propagator over tasks.
func NewEdgeFinding(th *TaskHelper, tasks []*Task) *EdgeFinding {
	return &EdgeFinding{th: th, tasks: tasks, tree: NewThetaLambdaTree(len(tasks))}
}

func (p *EdgeFinding) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 4)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *EdgeFinding) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *EdgeFinding) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	n := len(p.tasks)
	if n < 2 {
		return false, nil
	}
	p.tree.Reset(n)

	// The theta-lambda tree's envelope composition assumes leaf order is
	// chronological, so events must be placed at a leaf position equal to
	// their rank in increasing start_min, not their raw task-array index.
	// rankToIdx/startRank convert between the two; any event id the tree
	// hands back (gray/critical event) must be translated through
	// rankToIdx before indexing p.tasks.
	rankToIdx := make([]int, n)
	for i := range rankToIdx {
		rankToIdx[i] = i
	}
	sort.SliceStable(rankToIdx, func(a, b int) bool {
		return th.StartMin(p.tasks[rankToIdx[a]]) < th.StartMin(p.tasks[rankToIdx[b]])
	})
	startRank := make([]int, n)
	for rank, idx := range rankToIdx {
		startRank[idx] = rank
	}

	// Only tasks known present participate: a task of unknown presence may
	// still end up absent, so neither the theta envelope nor a gray push may
	// rest on its energy. Optional-task filtering against this window is the
	// overload checker's job.
	presentIdx := make([]int, 0, n)
	for i, t := range p.tasks {
		if !th.IsPresent(t) {
			continue
		}
		energy := th.SizeMin(t)
		p.tree.AddOrUpdateEvent(startRank[i], th.StartMin(t), energy, energy)
		presentIdx = append(presentIdx, i)
	}
	if len(presentIdx) < 2 {
		return false, nil
	}

	sort.SliceStable(presentIdx, func(a, b int) bool {
		return th.EndMax(p.tasks[presentIdx[a]]) > th.EndMax(p.tasks[presentIdx[b]])
	})

	pushed := false
	for k := 0; k < len(presentIdx)-1; k++ {
		grayIdx := presentIdx[k]
		grayTask := p.tasks[grayIdx]
		energy := th.SizeMin(grayTask)
		p.tree.AddOrUpdateOptionalEvent(startRank[grayIdx], th.StartMin(grayTask), energy)
		deadline := th.EndMax(p.tasks[presentIdx[k+1]])

		if p.tree.GetEnvelope() > deadline {
			th.ResetReason()
			for j := k + 1; j < len(presentIdx); j++ {
				tj := p.tasks[presentIdx[j]]
				th.AddStartMinReason(tj, th.StartMin(tj))
				th.AddPresenceReason(tj)
			}
			th.AddEndMaxReason(p.tasks[presentIdx[k+1]], deadline)
			return pushed, th.ReportConflict("edge finding overload")
		}

		for p.tree.GetOptionalEnvelope() > deadline {
			envelope := p.tree.GetEnvelope()
			_, grayRank, _ := p.tree.GetEventsWithOptionalEnvelopeGreaterThan(deadline)
			if grayRank < 0 {
				break
			}
			gt := p.tasks[rankToIdx[grayRank]]
			if th.StartMin(gt) < envelope {
				th.ResetReason()
				for j := k + 1; j < len(presentIdx); j++ {
					tj := p.tasks[presentIdx[j]]
					th.AddStartMinReason(tj, th.StartMin(tj))
					th.AddPresenceReason(tj)
				}
				th.AddEndMaxReason(p.tasks[presentIdx[k+1]], deadline)
				ok, conflict := th.IncreaseStartMin(gt, envelope)
				if conflict != nil {
					return pushed, conflict
				}
				pushed = pushed || ok
				if th.IsPresent(gt) && th.AtLevelZero() {
					for j := k + 1; j < len(presentIdx); j++ {
						_ = th.NotifyLevelZeroPrecedence(p.tasks[presentIdx[j]], gt)
					}
				}
			}
			p.tree.RemoveEvent(grayRank)
		}
	}
	return pushed, nil
}
