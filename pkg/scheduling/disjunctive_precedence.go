package scheduling

import "sort"

// DetectablePrecedences: when start_max(a) < end_min(b)
// for a present task a, a must precede b; accumulating every such
// predecessor of b into a TaskSet gives the tightest possible push of
// start_min(b).
//
// Simplification (recorded in DESIGN.md): the production algorithm keeps an
// incremental, rank-split TaskSet so the whole pass is O(n log n); this
// port rebuilds the predecessor TaskSet per task, giving O(n^2 log n)
// overall. Soundness and the pushed bounds are identical — only the
// asymptotic constant changes, which is acceptable at this engine's scale.
type DetectablePrecedences struct {
	th    *TaskHelper
	tasks []*Task
	id    RegistrationID
}

// NewDetectablePrecedences builds the propagator over tasks.
func NewDetectablePrecedences(th *TaskHelper, tasks []*Task) *DetectablePrecedences {
	return &DetectablePrecedences{th: th, tasks: tasks}
}

func (p *DetectablePrecedences) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 2)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *DetectablePrecedences) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *DetectablePrecedences) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	order := make([]int, len(p.tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return th.EndMin(p.tasks[order[a]]) < th.EndMin(p.tasks[order[b]])
	})

	pushed := false
	ts := NewTaskSet(len(p.tasks))
	for _, idx := range order {
		b := p.tasks[idx]
		if th.IsAbsent(b) {
			continue
		}
		ts.Clear()
		for _, other := range p.tasks {
			if other.ID == b.ID || th.IsAbsent(other) || !th.IsPresent(other) {
				continue
			}
			if th.StartMax(other) < th.EndMin(b) {
				ts.AddEntry(TaskSetEntry{TaskID: other.ID, StartMin: th.StartMin(other), SizeMin: th.SizeMin(other)})
			}
		}
		if ts.Len() == 0 {
			continue
		}
		endMin, critical := ts.ComputeEndMin()
		if endMin > th.StartMin(b) {
			th.ResetReason()
			for _, e := range ts.Entries()[critical:] {
				pred := th.TaskByID(e.TaskID)
				th.AddStartMaxReason(pred, th.StartMax(pred))
				th.AddPresenceReason(pred)
			}
			th.AddEndMinReason(b, th.EndMin(b))
			th.AddPresenceReason(b)
			ok, conflict := th.IncreaseStartMin(b, endMin)
			if conflict != nil {
				return pushed, conflict
			}
			pushed = pushed || ok
		}
	}
	return pushed, nil
}

// SimplePrecedences is the reduced variant: for each task, only the single
// detected predecessor with the latest start_max is pushed before it (not
// the full TaskSet), found by an O(n^2) pairwise scan. AddDisjunctive wires
// it in place of the detectable-precedences / not-last / edge-finding layers
// when UseTimetableEdgeFinding is off.
type SimplePrecedences struct {
	th    *TaskHelper
	tasks []*Task
	id    RegistrationID
}

// NewSimplePrecedences builds the reduced propagator over tasks.
func NewSimplePrecedences(th *TaskHelper, tasks []*Task) *SimplePrecedences {
	return &SimplePrecedences{th: th, tasks: tasks}
}

func (p *SimplePrecedences) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 1)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *SimplePrecedences) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *SimplePrecedences) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	pushed := false
	for _, b := range p.tasks {
		if th.IsAbsent(b) {
			continue
		}
		var best *Task
		for _, a := range p.tasks {
			if a.ID == b.ID || !th.IsPresent(a) {
				continue
			}
			if th.StartMax(a) < th.EndMin(b) {
				if best == nil || th.StartMax(a) > th.StartMax(best) {
					best = a
				}
			}
		}
		if best == nil {
			continue
		}
		ok, conflict := th.PushTaskOrderWhenPresent(best, b)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}
