package scheduling

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/gitrdm/cpsched/internal/parallel"
)

// mcWindow is one axis-aligned candidate window considered by Monte Carlo
// energy-conflict sampling: [xl,xr) x [yl,yr).
type mcWindow struct {
	xl, xr, yl, yr int
}

// less gives mcWindow a total order so sampling results are independent of
// goroutine completion order: every caller sorts by this before acting on a
// sampled conflict, which keeps the detector's output deterministic despite
// running evaluations in parallel.
func (w mcWindow) less(o mcWindow) bool {
	if w.xl != o.xl {
		return w.xl < o.xl
	}
	if w.xr != o.xr {
		return w.xr < o.xr
	}
	if w.yl != o.yl {
		return w.yl < o.yl
	}
	return w.yr < o.yr
}

// windowFromPair builds the bounding window of two rectangles' mandatory
// parts, the candidate region Monte-Carlo energy sampling draws windows
// from.
func windowFromPair(xth, yth *TaskHelper, a, b *Rectangle) (mcWindow, bool) {
	ax0, ax1 := xth.StartMax(a.XTask), xth.EndMin(a.XTask)
	bx0, bx1 := xth.StartMax(b.XTask), xth.EndMin(b.XTask)
	ay0, ay1 := yth.StartMax(a.YTask), yth.EndMin(a.YTask)
	by0, by1 := yth.StartMax(b.YTask), yth.EndMin(b.YTask)
	if ax1 <= ax0 || bx1 <= bx0 || ay1 <= ay0 || by1 <= by0 {
		return mcWindow{}, false // one of the two has no mandatory part on some axis
	}
	w := mcWindow{
		xl: minInt(ax0, bx0), xr: maxInt(ax1, bx1),
		yl: minInt(ay0, by0), yr: maxInt(ay1, by1),
	}
	if w.xr <= w.xl || w.yr <= w.yl {
		return mcWindow{}, false
	}
	return w, true
}

// windowHasEnergyConflict reports whether the sum of every present
// rectangle's minimum intersection with w exceeds w's area — the same
// over-the-area test OrthogonalPackingCheck's DFF layer generalizes, applied
// directly to one window instead of the whole bin.
func windowHasEnergyConflict(xth, yth *TaskHelper, rects []*Rectangle, w mcWindow) bool {
	area := (w.xr - w.xl) * (w.yr - w.yl)
	if area <= 0 {
		return false
	}
	total := 0
	for _, r := range rects {
		if !xth.IsPresent(r.XTask) || !yth.IsPresent(r.YTask) {
			continue
		}
		total += r.MinIntersectionWithWindow(xth, yth, w.xl, w.xr, w.yl, w.yr)
		if total > area {
			return true
		}
	}
	return total > area
}

// sampleEnergyConflictWindows draws numSamples candidate windows from random
// pairs of present rectangles using rng, evaluates each for an energy conflict, and returns every conflicting
// window found, sorted into a deterministic order. When pool is non-nil, the
// (read-only) evaluations run concurrently across its workers; the eventual
// result is identical either way because of the trailing sort, so the
// caller's choice of pool size never affects which conflict is reported.
func sampleEnergyConflictWindows(xth, yth *TaskHelper, rects []*Rectangle, rng *rand.Rand, numSamples int, pool *parallel.StaticWorkerPool) []mcWindow {
	var present []*Rectangle
	for _, r := range rects {
		if !xth.IsPresent(r.XTask) || !yth.IsPresent(r.YTask) {
			continue
		}
		present = append(present, r)
	}
	if len(present) < 2 || numSamples <= 0 {
		return nil
	}

	candidates := make([]mcWindow, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		a := present[rng.Intn(len(present))]
		b := present[rng.Intn(len(present))]
		if a == b {
			continue
		}
		if w, ok := windowFromPair(xth, yth, a, b); ok {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		hits    []mcWindow
		wg      sync.WaitGroup
		ctx     = context.Background()
	)
	evaluate := func(w mcWindow) {
		defer wg.Done()
		if windowHasEnergyConflict(xth, yth, rects, w) {
			mu.Lock()
			hits = append(hits, w)
			mu.Unlock()
		}
	}
	for _, w := range candidates {
		wg.Add(1)
		if pool == nil {
			evaluate(w)
			continue
		}
		w := w
		if err := pool.Submit(ctx, func() { evaluate(w) }); err != nil {
			// Pool refused the task (shut down); fall back to evaluating
			// inline so sampling still completes.
			evaluate(w)
		}
	}
	wg.Wait()

	sort.Slice(hits, func(i, j int) bool { return hits[i].less(hits[j]) })
	deduped := hits[:0]
	for i, w := range hits {
		if i == 0 || w != hits[i-1] {
			deduped = append(deduped, w)
		}
	}
	return deduped
}
