package scheduling

import "sort"

// TaskHelper gives propagators a synchronised, direction-aware view of task
// state and the canonical mechanism for building reasons and pushing
// bounds. A single horizon-sized domain (maxValue = horizon+1, since
// Domain values are 1-indexed) backs every task's start
// variable; end and size bounds are derived rather than separately stored,
// since this engine does not give a task's size its own variable.
type TaskHelper struct {
	solver *Solver
	tasks  []*Task
	prec   *PrecedenceGraph

	forward bool

	byIncStartMin          []int
	byIncEndMin            []int
	byIncNegStartMax       []int
	byIncNegShiftedEndMax  []int
	byIncShiftedStartMin   []int

	reason []IntegerLiteral
}

// NewTaskHelper builds a helper over tasks, reading/writing through solver's
// current running state.
func NewTaskHelper(solver *Solver, tasks []*Task, prec *PrecedenceGraph) *TaskHelper {
	th := &TaskHelper{solver: solver, tasks: tasks, prec: prec, forward: true}
	_ = th.SynchronizeAndSetTimeDirection(true)
	return th
}

// Tasks returns the tasks this helper was built over.
func (th *TaskHelper) Tasks() []*Task { return th.tasks }

func (th *TaskHelper) domain(t *Task) Domain {
	return th.solver.GetDomain(th.solver.current, t.StartVar)
}

// --- raw (direction-independent) accessors on the underlying start var ---

func (th *TaskHelper) rawStartMin(t *Task) int { return th.domain(t).Min() - 1 }
func (th *TaskHelper) rawStartMax(t *Task) int { return th.domain(t).Max() - 1 }

// --- direction-aware bound queries ---

// StartMin returns the logical start-min, accounting for time direction.
func (th *TaskHelper) StartMin(t *Task) int {
	if th.forward {
		return th.rawStartMin(t)
	}
	return -(th.rawStartMax(t) + t.SizeMax)
}

// StartMax returns the logical start-max.
func (th *TaskHelper) StartMax(t *Task) int {
	if th.forward {
		return th.rawStartMax(t)
	}
	return -(th.rawStartMin(t) + t.SizeMin)
}

// EndMin returns the logical end-min.
func (th *TaskHelper) EndMin(t *Task) int {
	if th.forward {
		return th.rawStartMin(t) + t.SizeMin
	}
	return -th.rawStartMax(t)
}

// EndMax returns the logical end-max.
func (th *TaskHelper) EndMax(t *Task) int {
	if th.forward {
		return th.rawStartMax(t) + t.SizeMax
	}
	return -th.rawStartMin(t)
}

// SizeMin returns the task's minimal size (direction-invariant).
func (th *TaskHelper) SizeMin(t *Task) int { return t.SizeMin }

// SizeMax returns the task's maximal size (direction-invariant).
func (th *TaskHelper) SizeMax(t *Task) int { return t.SizeMax }

// ShiftedStartMin is max(start_min, end_min - size_min).
func (th *TaskHelper) ShiftedStartMin(t *Task) int {
	sm := th.StartMin(t)
	alt := th.EndMin(t) - t.SizeMin
	if alt > sm {
		return alt
	}
	return sm
}

// ShiftedEndMax is min(end_max, start_max + size_min).
func (th *TaskHelper) ShiftedEndMax(t *Task) int {
	em := th.EndMax(t)
	alt := th.StartMax(t) + t.SizeMin
	if alt < em {
		return alt
	}
	return em
}

// HasMandatoryPart reports start_max < end_min (and thus a non-empty
// mandatory part [start_max, end_min)), only meaningful when present.
func (th *TaskHelper) HasMandatoryPart(t *Task) bool {
	return th.StartMax(t) < th.EndMin(t)
}

// IsPresent reports whether t is known Present.
func (th *TaskHelper) IsPresent(t *Task) bool {
	if t.PresenceVar < 0 {
		return true
	}
	d := th.solver.GetDomain(th.solver.current, t.PresenceVar)
	return d.IsSingleton() && d.SingletonValue()-1 == 1
}

// IsAbsent reports whether t is known Absent.
func (th *TaskHelper) IsAbsent(t *Task) bool {
	if t.PresenceVar < 0 {
		return false
	}
	d := th.solver.GetDomain(th.solver.current, t.PresenceVar)
	return d.IsSingleton() && d.SingletonValue()-1 == 0
}

// Presence returns the task's current PresenceState.
func (th *TaskHelper) Presence(t *Task) PresenceState {
	if th.IsAbsent(t) {
		return Absent
	}
	if th.IsPresent(t) {
		return Present
	}
	return Unknown
}

// --- synchronisation ---

// SynchronizeAndSetTimeDirection refreshes cached sort orders; if the
// direction flips relative to the previous call, orders are recomputed from
// scratch (they always are here, since this engine keeps the caches small).
func (th *TaskHelper) SynchronizeAndSetTimeDirection(forward bool) error {
	th.forward = forward
	n := len(th.tasks)

	th.byIncStartMin = sortedIndices(n, func(i, j int) bool { return th.StartMin(th.tasks[i]) < th.StartMin(th.tasks[j]) })
	th.byIncEndMin = sortedIndices(n, func(i, j int) bool { return th.EndMin(th.tasks[i]) < th.EndMin(th.tasks[j]) })
	th.byIncNegStartMax = sortedIndices(n, func(i, j int) bool { return -th.StartMax(th.tasks[i]) < -th.StartMax(th.tasks[j]) })
	th.byIncNegShiftedEndMax = sortedIndices(n, func(i, j int) bool {
		return -th.ShiftedEndMax(th.tasks[i]) < -th.ShiftedEndMax(th.tasks[j])
	})
	th.byIncShiftedStartMin = sortedIndices(n, func(i, j int) bool {
		return th.ShiftedStartMin(th.tasks[i]) < th.ShiftedStartMin(th.tasks[j])
	})
	return nil
}

func sortedIndices(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

// TaskByIncreasingStartMin returns task indices sorted by increasing start-min.
func (th *TaskHelper) TaskByIncreasingStartMin() []int { return th.byIncStartMin }

// TaskByIncreasingEndMin returns task indices sorted by increasing end-min.
func (th *TaskHelper) TaskByIncreasingEndMin() []int { return th.byIncEndMin }

// TaskByIncreasingNegatedStartMax returns indices sorted by -start_max
// increasing, i.e. start_max decreasing.
func (th *TaskHelper) TaskByIncreasingNegatedStartMax() []int { return th.byIncNegStartMax }

// TaskByIncreasingNegatedShiftedEndMax sorts by -shifted_end_max increasing.
func (th *TaskHelper) TaskByIncreasingNegatedShiftedEndMax() []int {
	return th.byIncNegShiftedEndMax
}

// TaskByIncreasingShiftedStartMin sorts by shifted_start_min increasing.
func (th *TaskHelper) TaskByIncreasingShiftedStartMin() []int { return th.byIncShiftedStartMin }

// --- reason building ---

// ResetReason clears the internal reason buffer.
func (th *TaskHelper) ResetReason() { th.reason = th.reason[:0] }

// AddPresenceReason records that t is known present.
func (th *TaskHelper) AddPresenceReason(t *Task) {
	if t.PresenceVar >= 0 {
		th.reason = append(th.reason, IntegerLiteral{Var: t.PresenceVar, Bound: 1, IsLowerBound: true})
	}
}

// AddAbsenceReason records that t is known absent.
func (th *TaskHelper) AddAbsenceReason(t *Task) {
	if t.PresenceVar >= 0 {
		th.reason = append(th.reason, IntegerLiteral{Var: t.PresenceVar, Bound: 0, IsLowerBound: false})
	}
}

// AddStartMinReason asserts start_min(t) >= bound is already implied.
func (th *TaskHelper) AddStartMinReason(t *Task, bound int) {
	th.reason = append(th.reason, IntegerLiteral{Var: t.StartVar, Bound: bound, IsLowerBound: th.forward})
}

// AddStartMaxReason asserts start_max(t) <= bound is already implied.
func (th *TaskHelper) AddStartMaxReason(t *Task, bound int) {
	th.reason = append(th.reason, IntegerLiteral{Var: t.StartVar, Bound: bound, IsLowerBound: !th.forward})
}

// AddEndMinReason asserts end_min(t) >= bound.
func (th *TaskHelper) AddEndMinReason(t *Task, bound int) {
	th.AddStartMinReason(t, bound-t.SizeMin)
}

// AddEndMaxReason asserts end_max(t) <= bound.
func (th *TaskHelper) AddEndMaxReason(t *Task, bound int) {
	th.AddStartMaxReason(t, bound-t.SizeMax)
}

// AddSizeMinReason records the (static, always-true) size_min fact; kept as
// a no-op placeholder since size bounds aren't trail-resident in this
// engine; a fixed expression's reason is trivially satisfied.
func (th *TaskHelper) AddSizeMinReason(t *Task) {}

// AddShiftedEndMaxReason asserts shifted_end_max(t) <= bound.
func (th *TaskHelper) AddShiftedEndMaxReason(t *Task, bound int) {
	th.AddEndMaxReason(t, bound)
	th.AddStartMaxReason(t, bound-t.SizeMin)
}

// AddEnergyAfterReason adds the minimal reason sufficient to conclude task t,
// intersected with [time, +inf), contributes at least sizeNeeded duration.
func (th *TaskHelper) AddEnergyAfterReason(t *Task, sizeNeeded, time int) {
	th.AddStartMinReason(t, th.StartMin(t))
	th.AddEndMinReason(t, th.EndMin(t))
	th.AddPresenceReason(t)
}

// AddReasonForBeingBeforeAssumingNoOverlap adds the precedence reason
// end_min(a) <= start_max(b); if a level-zero precedence is already known,
// it is used instead of the live bounds.
func (th *TaskHelper) AddReasonForBeingBeforeAssumingNoOverlap(a, b *Task) {
	if th.prec != nil {
		if _, ok := th.prec.MinDistance(a.ID, b.ID); ok {
			return // level-zero fact, no trail-dependent reason needed
		}
	}
	th.AddEndMinReason(a, th.EndMin(a))
	th.AddStartMaxReason(b, th.StartMax(b))
}

// Reason returns the accumulated reason literals.
func (th *TaskHelper) Reason() []IntegerLiteral { return th.reason }

// ReportConflict builds a Conflict from the current reason buffer.
func (th *TaskHelper) ReportConflict(msg string) *Conflict {
	return NewConflict(msg, th.reason)
}

// --- pushing bounds ---

// IncreaseStartMin pushes the logical start-min of t up to newMin,
// translating through the current time direction onto the raw start
// variable. Returns (pushed, conflict).
func (th *TaskHelper) IncreaseStartMin(t *Task, newMin int) (bool, *Conflict) {
	if th.forward {
		return th.rawIncreaseStartMin(t, newMin)
	}
	return th.rawDecreaseEndMax(t, -newMin)
}

// DecreaseEndMax pushes the logical end-max of t down to newMax.
func (th *TaskHelper) DecreaseEndMax(t *Task, newMax int) (bool, *Conflict) {
	if th.forward {
		return th.rawDecreaseEndMax(t, newMax)
	}
	return th.rawIncreaseStartMin(t, -newMax)
}

func (th *TaskHelper) rawIncreaseStartMin(t *Task, rawNewMin int) (bool, *Conflict) {
	d := th.domain(t)
	if rawNewMin <= th.rawStartMin(t) {
		return false, nil
	}
	newDomain := d.RemoveBelow(rawNewMin + 1)
	if newDomain.Count() == 0 {
		// An optional task whose pushed bound no longer fits cannot be
		// present; only a task already known present turns this into a
		// conflict.
		if t.PresenceVar >= 0 && !th.IsPresent(t) {
			return th.PushTaskAbsence(t)
		}
		return false, th.ReportConflict("start_min push emptied domain")
	}
	th.solver.Push(t.StartVar, newDomain)
	return true, nil
}

func (th *TaskHelper) rawDecreaseEndMax(t *Task, rawNewEndMax int) (bool, *Conflict) {
	newRawStartMax := rawNewEndMax - t.SizeMax
	d := th.domain(t)
	if newRawStartMax >= th.rawStartMax(t) {
		return false, nil
	}
	newDomain := d.RemoveAbove(newRawStartMax + 1)
	if newDomain.Count() == 0 {
		if t.PresenceVar >= 0 && !th.IsPresent(t) {
			return th.PushTaskAbsence(t)
		}
		return false, th.ReportConflict("end_max push emptied domain")
	}
	th.solver.Push(t.StartVar, newDomain)
	return true, nil
}

// PushTaskOrderWhenPresent conditionally pushes end_min(a) <= start_max(b)
// given current presences. Each directional bound is only pushed when the
// task whose bound it is derived FROM is known present: start_min(b) >=
// end_min(a) holds only in schedules where a actually runs, so an a of
// unknown presence contributes nothing yet (and symmetrically for b).
func (th *TaskHelper) PushTaskOrderWhenPresent(a, b *Task) (bool, *Conflict) {
	if th.IsAbsent(a) || th.IsAbsent(b) {
		return false, nil
	}
	pushed := false
	if th.IsPresent(a) && th.EndMin(a) > th.StartMin(b) {
		th.ResetReason()
		th.AddEndMinReason(a, th.EndMin(a))
		th.AddPresenceReason(a)
		th.AddPresenceReason(b)
		ok, conflict := th.IncreaseStartMin(b, th.EndMin(a))
		if conflict != nil {
			return false, conflict
		}
		pushed = pushed || ok
	}
	if th.IsPresent(b) && th.StartMax(b) < th.EndMax(a) {
		th.ResetReason()
		th.AddStartMaxReason(b, th.StartMax(b))
		th.AddPresenceReason(a)
		th.AddPresenceReason(b)
		ok, conflict := th.DecreaseEndMax(a, th.StartMax(b))
		if conflict != nil {
			return false, conflict
		}
		pushed = pushed || ok
	}
	return pushed, nil
}

// PushTaskAbsence forces t's presence literal to Absent.
func (th *TaskHelper) PushTaskAbsence(t *Task) (bool, *Conflict) {
	if t.PresenceVar < 0 {
		return false, th.ReportConflict("cannot push absence on a mandatory task")
	}
	if th.IsAbsent(t) {
		return false, nil
	}
	newDomain := NewBitSetDomainFromValues(1, []int{1}) // logical 0 -> raw 1
	th.solver.Push(t.PresenceVar, newDomain)
	return true, nil
}

// PushIntegerLiteral pushes a single IntegerLiteral directly (used by
// propagators that compute a bound on a variable that is not necessarily a
// task's start variable, e.g. the target variable of a lifted precedence
// bound).
func (th *TaskHelper) PushIntegerLiteral(lit IntegerLiteral) (bool, *Conflict) {
	d := th.solver.GetDomain(th.solver.current, lit.Var)
	var newDomain Domain
	if lit.IsLowerBound {
		if lit.Bound <= d.Min()-1 {
			return false, nil
		}
		newDomain = d.RemoveBelow(lit.Bound + 1)
	} else {
		if lit.Bound >= d.Max()-1 {
			return false, nil
		}
		newDomain = d.RemoveAbove(lit.Bound + 1)
	}
	if newDomain.Count() == 0 {
		return false, th.ReportConflict("integer literal push emptied domain")
	}
	th.solver.Push(lit.Var, newDomain)
	return true, nil
}

// NotifyLevelZeroPrecedence records "end(a) <= start(b)" as permanently true
// at decision level zero.
func (th *TaskHelper) NotifyLevelZeroPrecedence(a, b *Task) error {
	if th.prec == nil {
		return nil
	}
	return th.prec.AddPrecedence(a.ID, b.ID, 0)
}

// GetCurrentMinDistanceBetweenTasks returns the minimal known offset such
// that end(a)+offset <= start(b), or (0, false) if unknown.
func (th *TaskHelper) GetCurrentMinDistanceBetweenTasks(a, b *Task) (int, bool) {
	if th.prec == nil {
		return 0, false
	}
	return th.prec.MinDistance(a.ID, b.ID)
}

// AtLevelZero reports whether the underlying solver has made no search
// decisions yet, the only time it is safe to call NotifyLevelZeroPrecedence.
func (th *TaskHelper) AtLevelZero() bool { return th.solver.AtLevelZero() }

// TaskByID returns the task with the given id, or nil.
func (th *TaskHelper) TaskByID(id int) *Task {
	for _, t := range th.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// RunBothDirections runs fn once per time direction (forward, then
// backward), synchronising the helper before each call. This is the
// "bidirectional wrapper": most
// single-direction filtering algorithms (detectable precedences, not-last,
// edge-finding, time-tabling) are defined once and simply re-run against
// the negated view to cover the symmetric end-max-pushing case.
func (th *TaskHelper) RunBothDirections(fn func() (bool, *Conflict)) (bool, *Conflict) {
	pushedAny := false
	for _, forward := range [2]bool{true, false} {
		if err := th.SynchronizeAndSetTimeDirection(forward); err != nil {
			return pushedAny, nil
		}
		pushed, conflict := fn()
		if conflict != nil {
			return pushedAny, conflict
		}
		pushedAny = pushedAny || pushed
	}
	// Leave the helper facing forward so callers reading bounds after the
	// run (or a propagator that forgets to synchronise) see forward time.
	_ = th.SynchronizeAndSetTimeDirection(true)
	return pushedAny, nil
}

// AffineMin evaluates an affine expression's lower bound against the
// solver's current domain of its underlying variable.
func (th *TaskHelper) AffineMin(a AffineExpression) int {
	if a.IsConstant() {
		return a.Constant
	}
	d := th.solver.GetDomain(th.solver.current, a.Var)
	if d == nil {
		return a.Constant
	}
	return a.Min(d.Min()-1, d.Max()-1)
}

// AffineMax evaluates an affine expression's upper bound against the
// solver's current domain of its underlying variable.
func (th *TaskHelper) AffineMax(a AffineExpression) int {
	if a.IsConstant() {
		return a.Constant
	}
	d := th.solver.GetDomain(th.solver.current, a.Var)
	if d == nil {
		return a.Constant
	}
	return a.Max(d.Min()-1, d.Max()-1)
}
