package scheduling

// TimeTablePerTask builds the mandatory-part profile of a cumulative
// resource and sweeps each task's window against it, pushing start-min
// (forward direction) or end-max (backward direction,
// via TaskHelper.RunBothDirections) past any profile rectangle that would
// overflow capacity if the task were placed there.
//
// Simplification (recorded in DESIGN.md): the "relevant_height" flattening
// heuristic is a pure performance optimisation (it shrinks the profile
// before sweeping); it is not implemented here, so this
// propagator does strictly more comparisons than the production version for
// the same sound result. The three reason-window "modes" collapse to a
// single always-correct "full interval" mode (mode 2).
type TimeTablePerTask struct {
	th       *TaskHelper
	dh       *DemandHelper
	tasks    []*Task
	capacity AffineExpression
	id       RegistrationID
}

// NewTimeTablePerTask builds the propagator for a cumulative resource.
func NewTimeTablePerTask(th *TaskHelper, dh *DemandHelper, tasks []*Task, capacity AffineExpression) *TimeTablePerTask {
	return &TimeTablePerTask{th: th, dh: dh, tasks: tasks, capacity: capacity}
}

func (p *TimeTablePerTask) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 1)
	w.WatchAllTasks(taskIDs(p.tasks), p.id)
	w.NotifyMayNotReachFixedPoint(p.id)
	return p.id
}

func (p *TimeTablePerTask) Propagate() (bool, error) {
	pushed, conflict := p.th.RunBothDirections(p.propagateOneDirection)
	if conflict != nil {
		return pushed, conflict
	}
	return pushed, nil
}

func (p *TimeTablePerTask) propagateOneDirection() (bool, *Conflict) {
	th := p.th
	dh := p.dh
	capMax := th.AffineMax(p.capacity)

	var events []profileEvent
	negInf, posInf := -1<<30, 1<<30
	for i, t := range p.tasks {
		if !th.IsPresent(t) {
			continue
		}
		if !th.HasMandatoryPart(t) {
			continue
		}
		dmin := dh.DemandMin(i)
		if dmin == 0 {
			continue
		}
		events = append(events, profileEvent{time: th.StartMax(t), delta: dmin})
		events = append(events, profileEvent{time: th.EndMin(t), delta: -dmin})
	}
	profile := BuildProfile(events, negInf, posInf)

	if profile.MaxHeight() > capMax {
		th.ResetReason()
		for i, t := range p.tasks {
			if th.IsPresent(t) && th.HasMandatoryPart(t) && dh.DemandMin(i) > 0 {
				th.AddPresenceReason(t)
				th.AddStartMaxReason(t, th.StartMax(t))
				th.AddEndMinReason(t, th.EndMin(t))
			}
		}
		return false, th.ReportConflict("cumulative time-tabling: capacity exceeded")
	}

	pushed := false
	for i, t := range p.tasks {
		if th.IsAbsent(t) {
			continue
		}
		dmin := dh.DemandMin(i)
		if dmin == 0 {
			continue
		}
		threshold := capMax - dmin
		lo, hi := th.StartMin(t), th.EndMin(t)
		if hi <= lo {
			continue
		}

		// A task with a mandatory part is itself part of the shared profile;
		// scanning that profile directly would compare t's own contribution
		// against a threshold already discounted for t's own demand and
		// self-trigger whenever dmin(t) alone exceeds it. Rebuild the
		// profile without t before scanning its window.
		scanProfile := profile
		if th.HasMandatoryPart(t) {
			var others []profileEvent
			for j, other := range p.tasks {
				if j == i || !th.IsPresent(other) || !th.HasMandatoryPart(other) {
					continue
				}
				odmin := dh.DemandMin(j)
				if odmin == 0 {
					continue
				}
				others = append(others, profileEvent{time: th.StartMax(other), delta: odmin})
				others = append(others, profileEvent{time: th.EndMin(other), delta: -odmin})
			}
			scanProfile = BuildProfile(others, negInf, posInf)
		}

		idx := scanProfile.FirstRectAtOrAfterExceeding(lo, threshold)
		if idx < 0 {
			continue
		}
		rectStart := scanProfile.Rects[idx].Start
		if rectStart >= hi {
			continue
		}
		var rectEnd int
		if idx+1 < len(scanProfile.Rects) {
			rectEnd = scanProfile.Rects[idx+1].Start
		} else {
			rectEnd = posInf
		}
		newStartMin := rectEnd
		if newStartMin <= th.StartMin(t) {
			continue
		}
		th.ResetReason()
		for j, other := range p.tasks {
			if other.ID == t.ID || !th.IsPresent(other) || !th.HasMandatoryPart(other) {
				continue
			}
			if dh.DemandMin(j) == 0 {
				continue
			}
			if th.StartMax(other) < rectEnd && th.EndMin(other) > rectStart {
				th.AddPresenceReason(other)
				th.AddStartMaxReason(other, th.StartMax(other))
				th.AddEndMinReason(other, th.EndMin(other))
			}
		}
		th.AddStartMinReason(t, th.StartMin(t))
		ok, conflict := th.IncreaseStartMin(t, newStartMin)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}
