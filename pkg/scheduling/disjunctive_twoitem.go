package scheduling

// TwoItemDisjunctive is the cheapest member of the disjunctive family and
// runs at the default (highest) dispatch priority. For every pair of tasks
// it checks both possible orderings; if one ordering is infeasible given
// current bounds, the other is pushed via PushTaskOrderWhenPresent. If both
// orderings are infeasible and both tasks are present, that is an immediate
// conflict.
type TwoItemDisjunctive struct {
	th    *TaskHelper
	tasks []*Task
	id    RegistrationID
}

// NewTwoItemDisjunctive builds the pairwise propagator over tasks.
func NewTwoItemDisjunctive(th *TaskHelper, tasks []*Task) *TwoItemDisjunctive {
	return &TwoItemDisjunctive{th: th, tasks: tasks}
}

func (p *TwoItemDisjunctive) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 0)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	return p.id
}

func (p *TwoItemDisjunctive) Propagate() (bool, error) {
	th := p.th
	if err := th.SynchronizeAndSetTimeDirection(true); err != nil {
		return false, nil
	}
	pushed := false
	n := len(p.tasks)
	for i := 0; i < n; i++ {
		a := p.tasks[i]
		if th.IsAbsent(a) {
			continue
		}
		for j := i + 1; j < n; j++ {
			b := p.tasks[j]
			if th.IsAbsent(b) {
				continue
			}
			abImpossible := th.EndMin(a) > th.StartMax(b)
			baImpossible := th.EndMin(b) > th.StartMax(a)
			if abImpossible && baImpossible {
				if th.IsPresent(a) && th.IsPresent(b) {
					th.ResetReason()
					th.AddEndMinReason(a, th.EndMin(a))
					th.AddStartMaxReason(b, th.StartMax(b))
					th.AddEndMinReason(b, th.EndMin(b))
					th.AddStartMaxReason(a, th.StartMax(a))
					th.AddPresenceReason(a)
					th.AddPresenceReason(b)
					return pushed, th.ReportConflict("two-item disjunctive: neither order fits")
				}
				// One side is still undecided: it cannot coexist with the
				// other in either order, so if the other is present the
				// undecided one must be absent.
				if th.IsPresent(a) && !th.IsPresent(b) {
					th.ResetReason()
					th.AddPresenceReason(a)
					th.AddEndMinReason(a, th.EndMin(a))
					th.AddStartMaxReason(a, th.StartMax(a))
					ok, conflict := th.PushTaskAbsence(b)
					if conflict != nil {
						return pushed, conflict
					}
					pushed = pushed || ok
				} else if th.IsPresent(b) && !th.IsPresent(a) {
					th.ResetReason()
					th.AddPresenceReason(b)
					th.AddEndMinReason(b, th.EndMin(b))
					th.AddStartMaxReason(b, th.StartMax(b))
					ok, conflict := th.PushTaskAbsence(a)
					if conflict != nil {
						return pushed, conflict
					}
					pushed = pushed || ok
				}
				continue
			}
			if abImpossible {
				// b must come before a.
				ok, conflict := th.PushTaskOrderWhenPresent(b, a)
				if conflict != nil {
					return pushed, conflict
				}
				pushed = pushed || ok
			} else if baImpossible {
				ok, conflict := th.PushTaskOrderWhenPresent(a, b)
				if conflict != nil {
					return pushed, conflict
				}
				pushed = pushed || ok
			}
		}
	}
	return pushed, nil
}

func taskIDs(tasks []*Task) []int {
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
