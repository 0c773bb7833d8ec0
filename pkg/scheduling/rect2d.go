package scheduling

// Rectangle pairs a task on each of two orthogonal axes. The axes share
// presence: if XTask is present the rectangle is present, and vice versa —
// callers must wire the two presence variables together (or supply the same
// one) when constructing the tasks.
type Rectangle struct {
	XTask *Task
	YTask *Task
}

// smallest1DIntersection computes the minimum overlap of a bound interval
// [boundMin, boundMax) against a task's current interval along one axis,
// using the task's guaranteed (mandatory) span only. Used axis-wise by
// Rectangle's minimum-intersection-with-a-window computation.
func smallest1DIntersection(th *TaskHelper, t *Task, lo, hi int) int {
	start := th.StartMax(t)
	end := th.EndMin(t)
	if end <= start {
		return 0 // no mandatory part on this axis
	}
	a, b := start, end
	if a < lo {
		a = lo
	}
	if b > hi {
		b = hi
	}
	if b <= a {
		return 0
	}
	return b - a
}

// MinIntersectionWithWindow returns the rectangle's minimum overlap with the
// axis-aligned window [xl,xr) x [yl,yr), computed axis-wise.
func (r *Rectangle) MinIntersectionWithWindow(xth, yth *TaskHelper, xl, xr, yl, yr int) int {
	dx := smallest1DIntersection(xth, r.XTask, xl, xr)
	dy := smallest1DIntersection(yth, r.YTask, yl, yr)
	return dx * dy
}

// IsDegenerateHorizontal reports a zero-height rectangle (size_y forced to 0).
func (r *Rectangle) IsDegenerateHorizontal(yth *TaskHelper) bool {
	return r.YTask.SizeMax == 0
}

// IsDegenerateVertical reports a zero-width rectangle (size_x forced to 0).
func (r *Rectangle) IsDegenerateVertical(xth *TaskHelper) bool {
	return r.XTask.SizeMax == 0
}

// IsPoint reports a rectangle degenerate on both axes.
func (r *Rectangle) IsPoint(xth, yth *TaskHelper) bool {
	return r.IsDegenerateHorizontal(yth) && r.IsDegenerateVertical(xth)
}
