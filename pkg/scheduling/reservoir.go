package scheduling

import "sort"

// ReservoirEvent is one (time, delta, presence) triple of a reservoir
// constraint: at Time, the reservoir's level changes by Delta, but only if
// the task/event at PresenceVar (or unconditionally, if PresenceVar < 0) is
// present.
type ReservoirEvent struct {
	Time        AffineExpression
	Delta       int
	PresenceVar int // < 0 means always present
}

func (e ReservoirEvent) isAbsent(th *TaskHelper) bool {
	if e.PresenceVar < 0 {
		return false
	}
	d := th.solver.GetDomain(th.solver.current, e.PresenceVar)
	return d.IsSingleton() && d.SingletonValue()-1 == 0
}

func (e ReservoirEvent) isPresent(th *TaskHelper) bool {
	if e.PresenceVar < 0 {
		return true
	}
	d := th.solver.GetDomain(th.solver.current, e.PresenceVar)
	return d.IsSingleton() && d.SingletonValue()-1 == 1
}

func (e ReservoirEvent) timeLowerBound(th *TaskHelper) int {
	dom := th.solver.GetDomain(th.solver.current, e.Time.Var)
	if e.Time.IsConstant() || dom == nil {
		return e.Time.Constant
	}
	return e.Time.Min(dom.Min()-1, dom.Max()-1)
}

func (e ReservoirEvent) timeUpperBound(th *TaskHelper) int {
	dom := th.solver.GetDomain(th.solver.current, e.Time.Var)
	if e.Time.IsConstant() || dom == nil {
		return e.Time.Constant
	}
	return e.Time.Max(dom.Min()-1, dom.Max()-1)
}

// ReservoirTimeTabling: for a set of (time, delta, present) events, keep
// the running level within [minLevel, maxLevel].
// Built as two mirrored passes in one propagator call — one enforcing
// maxLevel directly, one enforcing minLevel by negating deltas — rather
// than as two separately-instantiated propagators, since both passes share
// the same event bookkeeping.
type ReservoirTimeTabling struct {
	th                 *TaskHelper
	events             []ReservoirEvent
	minLevel, maxLevel int
	id                 RegistrationID
}

// NewReservoirTimeTabling builds the propagator over the reservoir's events.
func NewReservoirTimeTabling(th *TaskHelper, events []ReservoirEvent, minLevel, maxLevel int) *ReservoirTimeTabling {
	return &ReservoirTimeTabling{th: th, events: events, minLevel: minLevel, maxLevel: maxLevel}
}

func (p *ReservoirTimeTabling) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 1)
	return p.id
}

func (p *ReservoirTimeTabling) Propagate() (bool, error) {
	pushedMax, conflict := p.propagateBound(p.maxLevel, false)
	if conflict != nil {
		return pushedMax, conflict
	}
	pushedMin, conflict := p.propagateBound(-p.minLevel, true)
	if conflict != nil {
		return pushedMax || pushedMin, conflict
	}
	return pushedMax || pushedMin, nil
}

// propagateBound handles one direction: negate=false enforces the max-level
// bound directly (a rising event, delta_min>0, only counts when present,
// using its latest possible time); negate=true mirrors the logic for the
// min-level bound by flipping the sign of every delta and the level.
func (p *ReservoirTimeTabling) propagateBound(capacity int, negate bool) (bool, *Conflict) {
	th := p.th
	var minimalProfile []evInfo
	for i, e := range p.events {
		delta := e.Delta
		if negate {
			delta = -delta
		}
		if delta > 0 {
			if !e.isPresent(th) {
				continue
			}
			minimalProfile = append(minimalProfile, evInfo{idx: i, delta: delta, time: e.timeUpperBound(th)})
		} else if delta < 0 {
			if e.isAbsent(th) {
				continue
			}
			minimalProfile = append(minimalProfile, evInfo{idx: i, delta: delta, time: e.timeLowerBound(th)})
		}
	}
	sort.SliceStable(minimalProfile, func(a, b int) bool { return minimalProfile[a].time < minimalProfile[b].time })

	// prefixLevel[i] is the running level strictly before minimalProfile[i]
	// is applied (i.e. the level an event placed at minimalProfile[i].time
	// would have to coexist with).
	prefixLevel := make([]int, len(minimalProfile))
	level := 0
	for i, ev := range minimalProfile {
		prefixLevel[i] = level
		level += ev.delta
	}

	if level > capacity || anyPrefixExceeds(prefixLevel, minimalProfile, capacity) {
		th.ResetReason()
		for _, ev := range minimalProfile {
			other := p.events[ev.idx]
			if other.PresenceVar >= 0 {
				if ev.delta > 0 {
					th.reason = append(th.reason, IntegerLiteral{Var: other.PresenceVar, Bound: 1, IsLowerBound: true})
				} else {
					th.reason = append(th.reason, IntegerLiteral{Var: other.PresenceVar, Bound: 0, IsLowerBound: false})
				}
			}
		}
		return false, th.ReportConflict("reservoir level overload")
	}

	// Per-event push check. This must use each rising event's own earliest
	// possible time (not its position in minimalProfile, which is sorted by
	// every event's own OPTIMISTIC bound): checking levelWithEvent against
	// prefixLevel at that position would just re-derive the same quantity
	// anyPrefixExceeds already cleared above, so it would never fire.
	// Instead, for event e with earliest time lowerT, sum the contribution
	// of every other event that must already have resolved by lowerT, and
	// see whether adding e's own delta there overflows; if so, scan forward
	// for the first later time at which it no longer would.
	pushed := false
	for k, e := range p.events {
		delta := e.Delta
		if negate {
			delta = -delta
		}
		if delta <= 0 || !e.isPresent(th) {
			continue // end-max pushes for falling events handled by the mirrored (negate) pass
		}
		lowerT := e.timeLowerBound(th)

		levelBefore := 0
		for _, ev := range minimalProfile {
			if ev.idx != k && ev.time <= lowerT {
				levelBefore += ev.delta
			}
		}
		if levelBefore+delta <= capacity {
			continue
		}

		target := -1
		runningExcl := levelBefore
		for _, ev := range minimalProfile {
			if ev.idx == k || ev.time <= lowerT {
				continue
			}
			runningExcl += ev.delta
			if runningExcl+delta <= capacity {
				target = ev.time
				break
			}
		}
		if target < 0 {
			if e.PresenceVar >= 0 {
				th.ResetReason()
				for _, ev := range minimalProfile {
					if ev.idx != k && ev.time <= lowerT {
						other := p.events[ev.idx]
						if other.PresenceVar >= 0 {
							th.reason = append(th.reason, IntegerLiteral{Var: other.PresenceVar, Bound: 1, IsLowerBound: true})
						}
					}
				}
				ok, conflict := th.PushTaskAbsence(&Task{ID: -1, PresenceVar: e.PresenceVar})
				if conflict != nil {
					return pushed, conflict
				}
				pushed = pushed || ok
			}
			continue
		}
		if e.Time.IsConstant() {
			continue // a fixed time cannot be pushed; overload already checked above
		}
		th.ResetReason()
		for _, ev := range minimalProfile {
			if ev.idx != k && ev.time > lowerT && ev.time <= target {
				other := p.events[ev.idx]
				if other.PresenceVar >= 0 {
					th.reason = append(th.reason, IntegerLiteral{Var: other.PresenceVar, Bound: 1, IsLowerBound: true})
				}
			}
		}
		var newBound int
		if negate {
			newBound = -target
		} else {
			newBound = target
		}
		lit := IntegerLiteral{Var: e.Time.Var, Bound: e.Time.InverseValueForMin(newBound), IsLowerBound: true}
		ok, conflict := th.PushIntegerLiteral(lit)
		if conflict != nil {
			return pushed, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}

// evInfo is one entry of a reservoir's minimal profile: the event at
// p.events[idx], its signed delta for the direction being checked, and the
// time bound (latest for rising, earliest for falling) it contributes at.
type evInfo struct {
	idx   int
	delta int
	time  int
}

func anyPrefixExceeds(prefixLevel []int, events []evInfo, capacity int) bool {
	for i, ev := range events {
		if prefixLevel[i]+ev.delta > capacity {
			return true
		}
	}
	return false
}
