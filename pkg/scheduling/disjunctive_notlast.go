package scheduling

import "sort"

// NotLast detects that a task t cannot be the last of a set — if every choice of "t scheduled after all others" leads to the
// others' end-min exceeding start_max(t), end_max(t) can be reduced to the
// largest start-max among the critical set excluding t.
type NotLast struct {
	th    *TaskHelper
	tasks []*Task
	id    RegistrationID
}

// NewNotLast builds the propagator over tasks.
func NewNotLast(th *TaskHelper, tasks []*Task) *NotLast {
	return &NotLast{th: th, tasks: tasks}
}

func (p *NotLast) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 3)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *NotLast) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *NotLast) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	order := make([]int, len(p.tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return th.EndMax(p.tasks[order[a]]) < th.EndMax(p.tasks[order[b]])
	})

	pushed := false
	for _, idx := range order {
		t := p.tasks[idx]
		if th.IsAbsent(t) {
			continue
		}
		ts := NewTaskSet(len(p.tasks))
		for _, other := range p.tasks {
			if th.IsAbsent(other) || !th.IsPresent(other) {
				continue
			}
			if th.StartMax(other) < th.EndMax(t) {
				ts.AddEntry(TaskSetEntry{TaskID: other.ID, StartMin: th.StartMin(other), SizeMin: th.SizeMin(other)})
			}
		}
		if ts.Len() == 0 {
			continue
		}
		endMinIgnoringT, critical := ts.ComputeEndMinIgnoring(t.ID)
		if endMinIgnoringT <= th.StartMax(t) {
			continue
		}
		// found tracks whether any candidate was seen at all: StartMax can be
		// negative in the backward time direction, so a sentinel like -1
		// would wrongly look "unset" and suppress a genuine push.
		var maxStartMax int
		found := false
		entries := ts.Entries()
		for i := critical; i < len(entries); i++ {
			if entries[i].TaskID == t.ID {
				continue
			}
			other := th.TaskByID(entries[i].TaskID)
			if sm := th.StartMax(other); !found || sm > maxStartMax {
				maxStartMax = sm
				found = true
			}
		}
		if !found {
			continue
		}
		th.ResetReason()
		for i := critical; i < len(entries); i++ {
			if entries[i].TaskID == t.ID {
				continue
			}
			other := th.TaskByID(entries[i].TaskID)
			th.AddStartMinReason(other, th.StartMin(other))
			th.AddPresenceReason(other)
		}
		th.AddPresenceReason(t)
		ok, conflict := th.DecreaseEndMax(t, maxStartMax)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}
