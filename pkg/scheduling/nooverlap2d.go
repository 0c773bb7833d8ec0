package scheduling

import (
	"math/rand"
	"sort"

	"github.com/gitrdm/cpsched/internal/parallel"
)

// rectClass classifies a Rectangle by which axes are forced degenerate
// (size 0): pairwise checks only run between compatible classes
// (full-vs-everything, vertical-vs-
// horizontal, but never horizontal-vs-horizontal or vertical-vs-vertical,
// since two boxes degenerate on the same axis can share that axis's line
// without contradiction).
type rectClass int

const (
	rectFull rectClass = iota
	rectHorizontal       // size_y forced 0
	rectVertical         // size_x forced 0
	rectPoint            // both forced 0
)

func classify(r *Rectangle, xth, yth *TaskHelper) rectClass {
	switch {
	case r.IsPoint(xth, yth):
		return rectPoint
	case r.IsDegenerateHorizontal(yth):
		return rectHorizontal
	case r.IsDegenerateVertical(xth):
		return rectVertical
	default:
		return rectFull
	}
}

// pairCompatible reports whether two rectangle classes are ever required to
// be checked against each other for overlap. A point can never conflict
// with anything (zero area).
func pairCompatible(a, b rectClass) bool {
	if a == rectPoint || b == rectPoint {
		return false
	}
	if a == rectHorizontal && b == rectHorizontal {
		return false
	}
	if a == rectVertical && b == rectVertical {
		return false
	}
	return true
}

// NoOverlap2D propagates a set of axis-aligned rectangles, each pairing an
// x-task and a y-task sharing presence, that must not overlap. Composed of
// several sub-checks run in one Propagate call, cheapest and most targeted
// first.
//
// Simplification (recorded in DESIGN.md): the "try-edge" geometric variant
// is not implemented. The Monte-Carlo window sampling used to pick
// energy-conflict candidates IS implemented (see
// mcsample.go): before falling back to the full-rectangle-set orthogonal
// packing check, the energy layer samples random candidate windows and, on
// a hit, reports a conflict scoped to that smaller window's rectangles —
// both paths are sound, the windowed one just tends to produce a tighter
// reason.
type NoOverlap2D struct {
	xth, yth         *TaskHelper
	rects            []*Rectangle
	maxPairsPairwise int
	useLine          bool
	useCumulative    bool
	useEnergy        bool
	mcSamples        int
	mcRNG            *rand.Rand
	mcPool           *parallel.StaticWorkerPool
	id               RegistrationID
}

// NewNoOverlap2D builds the propagator over a set of rectangles sharing one
// x-axis TaskHelper and one y-axis TaskHelper. maxPairsPairwise bounds the
// O(n^2) pairwise layer (a non-positive value disables it);
// useLine/useCumulative/useEnergy gate the other three layers, mirroring
// the model's PropagatorConfig flags for this constraint. mcSamples and
// seed control the energy layer's Monte-Carlo window sampling (mcSamples<=0
// disables it, falling back straight to the full-set check); pool, if
// non-nil, runs the per-window evaluations concurrently — the result is
// identical with pool nil, just slower, since sampling's own output is
// sorted before use (see mcsample.go).
func NewNoOverlap2D(xth, yth *TaskHelper, rects []*Rectangle, maxPairsPairwise int, useLine, useCumulative, useEnergy bool, mcSamples int, seed int64, pool *parallel.StaticWorkerPool) *NoOverlap2D {
	return &NoOverlap2D{
		xth: xth, yth: yth, rects: rects, maxPairsPairwise: maxPairsPairwise,
		useLine: useLine, useCumulative: useCumulative, useEnergy: useEnergy,
		mcSamples: mcSamples, mcRNG: rand.New(rand.NewSource(seed)), mcPool: pool,
	}
}

// Close shuts down the propagator's sampling worker pool, if one was
// configured. Safe to call even when no pool is set. Callers that build a
// Solver and then discard it without calling Close leak that pool's
// goroutines for the process lifetime, the usual caveat of any long-lived
// worker pool.
func (p *NoOverlap2D) Close() {
	if p.mcPool != nil {
		p.mcPool.Shutdown()
	}
}

func (p *NoOverlap2D) RegisterWith(w *Watcher) RegistrationID {
	p.id = w.Register()
	w.SetPriority(p.id, 4)
	ids := make([]int, 0, len(p.rects)*2)
	for _, r := range p.rects {
		ids = append(ids, r.XTask.ID, r.YTask.ID)
	}
	w.WatchAllTasks(ids, p.id)
	return p.id
}

func (p *NoOverlap2D) Propagate() (bool, error) {
	if err := p.xth.SynchronizeAndSetTimeDirection(true); err != nil {
		return false, nil
	}
	if err := p.yth.SynchronizeAndSetTimeDirection(true); err != nil {
		return false, nil
	}

	anyPushed := false

	if p.useLine {
		if pushed, conflict := p.disjunctiveOnLines(p.xth, p.yth, true); conflict != nil {
			return anyPushed || pushed, conflict
		} else {
			anyPushed = anyPushed || pushed
		}
		if pushed, conflict := p.disjunctiveOnLines(p.yth, p.xth, false); conflict != nil {
			return anyPushed || pushed, conflict
		} else {
			anyPushed = anyPushed || pushed
		}
	}

	if p.useCumulative {
		if pushed, conflict := p.cumulativeRelaxation(p.xth, p.yth); conflict != nil {
			return anyPushed || pushed, conflict
		} else {
			anyPushed = anyPushed || pushed
		}
		if pushed, conflict := p.cumulativeRelaxation(p.yth, p.xth); conflict != nil {
			return anyPushed || pushed, conflict
		} else {
			anyPushed = anyPushed || pushed
		}
	}

	if p.maxPairsPairwise > 0 {
		if pushed, conflict := p.pairwise(); conflict != nil {
			return anyPushed || pushed, conflict
		} else {
			anyPushed = anyPushed || pushed
		}
	}

	if p.useEnergy {
		if conflict := p.energyCheck(); conflict != nil {
			return anyPushed, conflict
		}
	}

	return anyPushed, nil
}

// disjunctiveOnLines implements the "disjunctive-on-line" layer:
// for each horizontal line crossing a mandatory y-part (here: each distinct
// StartMax(y) value, a candidate line), collect the rectangles whose
// mandatory y-part covers it, and run pairwise 1-D disjunctive reasoning on
// their x-intervals. lineTh is the axis the lines are drawn across (y for
// horizontal lines); spanTh is the axis pruned (x). Swapping the two calls
// covers the vertical-line case.
func (p *NoOverlap2D) disjunctiveOnLines(spanTh, lineTh *TaskHelper, xIsSpan bool) (bool, *Conflict) {
	lines := map[int]bool{}
	for _, r := range p.rects {
		lineTask := r.YTask
		if !xIsSpan {
			lineTask = r.XTask
		}
		if !lineTh.IsPresent(lineTask) {
			continue // a mandatory part only exists for a present task
		}
		start, end := lineTh.StartMax(lineTask), lineTh.EndMin(lineTask)
		if end <= start {
			continue // no mandatory part, no fixed line to extract
		}
		lines[start] = true
	}
	if len(lines) == 0 {
		return false, nil
	}

	sortedLines := make([]int, 0, len(lines))
	for t := range lines {
		sortedLines = append(sortedLines, t)
	}
	sort.Ints(sortedLines)

	pushed := false
	for _, line := range sortedLines {
		var covering []*Rectangle
		for _, r := range p.rects {
			lineTask := r.YTask
			if !xIsSpan {
				lineTask = r.XTask
			}
			if !lineTh.IsPresent(lineTask) {
				continue
			}
			start, end := lineTh.StartMax(lineTask), lineTh.EndMin(lineTask)
			if start <= line && line < end {
				covering = append(covering, r)
			}
		}
		if len(covering) < 2 {
			continue // fast path: no intersection possible on this line
		}
		// Rectangles whose mandatory parts share this line must be pairwise
		// disjoint on the span axis; exactly the two-item disjunctive rule.
		for i := 0; i < len(covering); i++ {
			for j := i + 1; j < len(covering); j++ {
				a, b := covering[i], covering[j]
				var spanA, spanB *Task
				if xIsSpan {
					spanA, spanB = a.XTask, b.XTask
				} else {
					spanA, spanB = a.YTask, b.YTask
				}
				if !spanTh.IsPresent(spanA) || !spanTh.IsPresent(spanB) {
					continue
				}
				abImpossible := spanTh.EndMin(spanA) > spanTh.StartMax(spanB)
				baImpossible := spanTh.EndMin(spanB) > spanTh.StartMax(spanA)
				switch {
				case abImpossible && baImpossible:
					spanTh.ResetReason()
					spanTh.AddPresenceReason(spanA)
					spanTh.AddPresenceReason(spanB)
					spanTh.AddEndMinReason(spanA, spanTh.EndMin(spanA))
					spanTh.AddStartMaxReason(spanB, spanTh.StartMax(spanB))
					spanTh.AddEndMinReason(spanB, spanTh.EndMin(spanB))
					spanTh.AddStartMaxReason(spanA, spanTh.StartMax(spanA))
					return pushed, spanTh.ReportConflict("2-D disjunctive-on-line: neither order fits")
				case abImpossible:
					ok, conflict := spanTh.PushTaskOrderWhenPresent(spanB, spanA)
					if conflict != nil {
						return pushed, conflict
					}
					pushed = pushed || ok
				case baImpossible:
					ok, conflict := spanTh.PushTaskOrderWhenPresent(spanA, spanB)
					if conflict != nil {
						return pushed, conflict
					}
					pushed = pushed || ok
				}
			}
		}
	}
	return pushed, nil
}

// cumulativeRelaxation treats the rectangles' spans along one axis as a
// cumulative resource profile against the other axis's span (demand = the
// other axis's minimum size), with virtual capacity bounded by that axis's
// max-min extent. A mandatory-part overload here proves 2-D infeasibility
// even though it never considers actual x/y placement compatibility.
func (p *NoOverlap2D) cumulativeRelaxation(spanTh, demandTh *TaskHelper) (bool, *Conflict) {
	lo, hi := 1<<62, -1<<62
	demandLo, demandHi := 1<<62, -1<<62
	for _, r := range p.rects {
		spanTask := r.XTask
		if spanTh == p.yth {
			spanTask = r.YTask
		}
		demandTask := r.YTask
		if spanTh == p.yth {
			demandTask = r.XTask
		}
		if spanTh.IsAbsent(spanTask) || demandTh.IsAbsent(demandTask) {
			continue
		}
		if m := spanTh.StartMin(spanTask); m < lo {
			lo = m
		}
		if m := spanTh.EndMax(spanTask); m > hi {
			hi = m
		}
		if m := demandTh.StartMin(demandTask); m < demandLo {
			demandLo = m
		}
		if m := demandTh.EndMax(demandTask); m > demandHi {
			demandHi = m
		}
	}
	if hi <= lo || demandHi <= demandLo {
		return false, nil
	}
	capacity := demandHi - demandLo

	var events []profileEvent
	demandOf := map[int]int{}
	for i, r := range p.rects {
		spanTask := r.XTask
		demandTask := r.YTask
		if spanTh == p.yth {
			spanTask, demandTask = r.YTask, r.XTask
		}
		if !spanTh.IsPresent(spanTask) {
			continue
		}
		start, end := spanTh.StartMax(spanTask), spanTh.EndMin(spanTask)
		if end <= start {
			continue
		}
		demand := demandTh.SizeMin(demandTask)
		if demand <= 0 || demandTh.IsAbsent(demandTask) {
			continue
		}
		demandOf[i] = demand
		events = append(events, profileEvent{time: start, delta: demand})
		events = append(events, profileEvent{time: end, delta: -demand})
	}
	if len(events) == 0 {
		return false, nil
	}
	profile := BuildProfile(events, lo-1, hi+1)
	if profile.MaxHeight() > capacity {
		spanTh.ResetReason()
		for i, r := range p.rects {
			if _, ok := demandOf[i]; !ok {
				continue
			}
			spanTask := r.XTask
			if spanTh == p.yth {
				spanTask = r.YTask
			}
			spanTh.AddPresenceReason(spanTask)
			spanTh.AddStartMaxReason(spanTask, spanTh.StartMax(spanTask))
			spanTh.AddEndMinReason(spanTask, spanTh.EndMin(spanTask))
		}
		return false, spanTh.ReportConflict("2-D cumulative relaxation overload")
	}
	return false, nil
}

// pairwise: when the number of box pairs is within budget, test every
// compatible pair for the four basic
// restrictions (one rectangle entirely left of, right of, above, or below
// the other along either axis) and push whichever single restriction
// remains possible.
func (p *NoOverlap2D) pairwise() (bool, *Conflict) {
	n := len(p.rects)
	pairCount := n * (n - 1) / 2
	if pairCount > p.maxPairsPairwise {
		return false, nil
	}
	pushed := false
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := p.rects[i], p.rects[j]
			if !pairCompatible(classify(a, p.xth, p.yth), classify(b, p.xth, p.yth)) {
				continue
			}
			if p.xth.IsAbsent(a.XTask) || p.xth.IsAbsent(b.XTask) ||
				p.yth.IsAbsent(a.YTask) || p.yth.IsAbsent(b.YTask) {
				continue
			}
			ok, conflict := p.pairwiseOne(a, b)
			if conflict != nil {
				return pushed, conflict
			}
			pushed = pushed || ok
		}
	}
	return pushed, nil
}

// pairwiseOne tests the four basic restrictions that can resolve a pair of
// rectangles (a left of b, b left of a, a above b, b above a on the x/y
// axes respectively, the four disjuncts of the classical diffn
// decomposition) and, if exactly one remains geometrically possible given
// current bounds, enforces it via the matching 1-D push.
func (p *NoOverlap2D) pairwiseOne(a, b *Rectangle) (bool, *Conflict) {
	xth, yth := p.xth, p.yth

	type restriction struct {
		possible bool
		apply    func() (bool, *Conflict)
	}
	// possible checks whether the pusher's earliest finish could still land
	// at or before the other task's latest possible start (EndMin(pusher) <=
	// StartMax(other)): comparing against StartMax, not EndMax, matters —
	// EndMax(other) is always >= StartMin(other)+SizeMin(other), so pairing
	// it with the symmetric restriction made both directions provably true
	// on every axis for any two tasks, leaving this layer permanently inert.
	restrictions := [4]restriction{
		{
			possible: xth.EndMin(a.XTask) <= xth.StartMax(b.XTask),
			apply:    func() (bool, *Conflict) { return xth.PushTaskOrderWhenPresent(a.XTask, b.XTask) },
		},
		{
			possible: xth.EndMin(b.XTask) <= xth.StartMax(a.XTask),
			apply:    func() (bool, *Conflict) { return xth.PushTaskOrderWhenPresent(b.XTask, a.XTask) },
		},
		{
			possible: yth.EndMin(a.YTask) <= yth.StartMax(b.YTask),
			apply:    func() (bool, *Conflict) { return yth.PushTaskOrderWhenPresent(a.YTask, b.YTask) },
		},
		{
			possible: yth.EndMin(b.YTask) <= yth.StartMax(a.YTask),
			apply:    func() (bool, *Conflict) { return yth.PushTaskOrderWhenPresent(b.YTask, a.YTask) },
		},
	}

	count := 0
	var only *restriction
	for i := range restrictions {
		if restrictions[i].possible {
			count++
			only = &restrictions[i]
		}
	}
	if count == 0 {
		// No relative placement fits. With both rectangles known present
		// that is a conflict; otherwise one of the undecided rectangles
		// simply cannot be in the schedule alongside the other.
		aPresent := xth.IsPresent(a.XTask) && yth.IsPresent(a.YTask)
		bPresent := xth.IsPresent(b.XTask) && yth.IsPresent(b.YTask)
		if !aPresent || !bPresent {
			undecided := a
			if aPresent {
				undecided = b
			}
			if undecided.XTask.PresenceVar >= 0 {
				return xth.PushTaskAbsence(undecided.XTask)
			}
			if undecided.YTask.PresenceVar >= 0 {
				return yth.PushTaskAbsence(undecided.YTask)
			}
			return false, nil
		}
		xth.ResetReason()
		xth.AddPresenceReason(a.XTask)
		xth.AddPresenceReason(b.XTask)
		xth.AddStartMinReason(a.XTask, xth.StartMin(a.XTask))
		xth.AddStartMinReason(b.XTask, xth.StartMin(b.XTask))
		yth.ResetReason()
		yth.AddPresenceReason(a.YTask)
		yth.AddPresenceReason(b.YTask)
		yth.AddStartMinReason(a.YTask, yth.StartMin(a.YTask))
		yth.AddStartMinReason(b.YTask, yth.StartMin(b.YTask))
		combined := append(append([]IntegerLiteral(nil), xth.Reason()...), yth.Reason()...)
		return false, NewConflict("2-D pairwise: no valid relative placement remains", combined)
	}
	if count == 1 {
		return only.apply()
	}
	return false, nil
}

// energyCheck is the energy/orthogonal-packing layer: build an OPP
// sub-problem from the present rectangles' mandatory-part
// sizes against the tightest-known bin, and run the infeasibility detector;
// on infeasibility, the reason cites every participating rectangle's
// presence and current bounds.
func (p *NoOverlap2D) energyCheck() *Conflict {
	if p.mcSamples > 0 {
		if conflict := p.energyCheckWindowed(); conflict != nil {
			return conflict
		}
	}
	return p.energyCheckFullSet()
}

// energyCheckWindowed is the Monte-Carlo half of the energy layer: sample
// candidate windows, and on the lexicographically-first
// conflicting window, report a conflict scoped to only the rectangles that
// actually intersect it (a strict subset of the full rectangle set, hence a
// tighter reason than energyCheckFullSet's).
func (p *NoOverlap2D) energyCheckWindowed() *Conflict {
	xth, yth := p.xth, p.yth
	windows := sampleEnergyConflictWindows(xth, yth, p.rects, p.mcRNG, p.mcSamples, p.mcPool)
	if len(windows) == 0 {
		return nil
	}
	w := windows[0]
	var involved []int
	for i, r := range p.rects {
		if !xth.IsPresent(r.XTask) || !yth.IsPresent(r.YTask) {
			continue
		}
		if r.MinIntersectionWithWindow(xth, yth, w.xl, w.xr, w.yl, w.yr) > 0 {
			involved = append(involved, i)
		}
	}
	if len(involved) < 2 {
		return nil // window hit was against rectangles no longer mandatory after a concurrent push
	}
	xth.ResetReason()
	yth.ResetReason()
	for _, i := range involved {
		r := p.rects[i]
		xth.AddPresenceReason(r.XTask)
		xth.AddStartMaxReason(r.XTask, xth.StartMax(r.XTask))
		xth.AddEndMinReason(r.XTask, xth.EndMin(r.XTask))
		yth.AddStartMaxReason(r.YTask, yth.StartMax(r.YTask))
		yth.AddEndMinReason(r.YTask, yth.EndMin(r.YTask))
	}
	combined := append(append([]IntegerLiteral(nil), xth.Reason()...), yth.Reason()...)
	return NewConflict("2-D orthogonal-packing overload (sampled window)", combined)
}

func (p *NoOverlap2D) energyCheckFullSet() *Conflict {
	xth, yth := p.xth, p.yth
	xlo, xhi := 1<<62, -1<<62
	ylo, yhi := 1<<62, -1<<62
	var items []OPPItem
	for i, r := range p.rects {
		if !xth.IsPresent(r.XTask) || !yth.IsPresent(r.YTask) {
			continue // an undecided rectangle may yet leave the bin entirely
		}
		sx, sy := xth.SizeMin(r.XTask), yth.SizeMin(r.YTask)
		if sx <= 0 || sy <= 0 {
			continue
		}
		if m := xth.StartMin(r.XTask); m < xlo {
			xlo = m
		}
		if m := xth.EndMax(r.XTask); m > xhi {
			xhi = m
		}
		if m := yth.StartMin(r.YTask); m < ylo {
			ylo = m
		}
		if m := yth.EndMax(r.YTask); m > yhi {
			yhi = m
		}
		items = append(items, OPPItem{Index: i, SizeX: sx, SizeY: sy})
	}
	if len(items) < 2 || xhi <= xlo || yhi <= ylo {
		return nil
	}
	result := OrthogonalPackingCheck(items, xhi-xlo, yhi-ylo, DefaultOPPOptions())
	if result.Status != OPPInfeasible {
		return nil
	}
	xth.ResetReason()
	yth.ResetReason()
	for _, it := range result.Items {
		r := p.rects[it.Index]
		xth.AddPresenceReason(r.XTask)
		xth.AddStartMinReason(r.XTask, xth.StartMin(r.XTask))
		xth.AddEndMaxReason(r.XTask, xth.EndMax(r.XTask))
		yth.AddStartMinReason(r.YTask, yth.StartMin(r.YTask))
		yth.AddEndMaxReason(r.YTask, yth.EndMax(r.YTask))
	}
	combined := append(append([]IntegerLiteral(nil), xth.Reason()...), yth.Reason()...)
	return NewConflict("2-D orthogonal-packing overload", combined)
}
