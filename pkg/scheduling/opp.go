package scheduling

import "sort"

// OPPItem is one item in an orthogonal-packing instance: a rectangle of
// size (SizeX, SizeY) that must fit inside a W x H bin. Index ties the item
// back to the caller's own numbering (a task index, a rectangle index) so
// that an infeasibility result can be translated into a reason.
type OPPItem struct {
	Index int
	SizeX int
	SizeY int
}

// OPPStatus is the outcome of OrthogonalPackingCheck.
type OPPStatus int

const (
	// OPPFeasible means no layer proved infeasibility; this is not a proof
	// of feasibility, only that the detector found no contradiction.
	OPPFeasible OPPStatus = iota
	OPPInfeasible
)

// OrthogonalPackingResult is the outcome of the infeasibility detector:
// on OPPInfeasible, Items holds the participating subset, each carrying the
// reduced size actually used by whichever layer found the conflict (slack
// already consumed); TryUseSlackToReduceItemSize relaxes these back down.
type OrthogonalPackingResult struct {
	Status OPPStatus
	Items  []OPPItem
}

// OPPOptions selects which layers OrthogonalPackingCheck runs: pairwise,
// DFF-f0, DFF-f2, plus the brute-force fallback for small instances.
type OPPOptions struct {
	Pairwise              bool
	DFFf0                 bool
	DFFf2                 bool
	BruteForceThreshold    int
	DFF2MaxParametersToTry int
}

// DefaultOPPOptions matches the detector's usual configuration: all layers
// on, brute force only for tiny instances.
func DefaultOPPOptions() OPPOptions {
	return OPPOptions{
		Pairwise:               true,
		DFFf0:                  true,
		DFFf2:                  true,
		BruteForceThreshold:    8,
		DFF2MaxParametersToTry: 5,
	}
}

// OrthogonalPackingCheck returns, given items and a bin, a subset of the
// items that provably cannot fit, trying layers in order of
// increasing cost and stopping at the first that proves infeasibility.
func OrthogonalPackingCheck(items []OPPItem, width, height int, opts OPPOptions) OrthogonalPackingResult {
	if width <= 0 || height <= 0 {
		return OrthogonalPackingResult{Status: OPPFeasible}
	}
	if opts.Pairwise {
		if res, ok := oppPairwise(items, width, height); ok {
			return res
		}
	}
	if opts.DFFf0 {
		if res, ok := oppDFFf0(items, width, height); ok {
			return res
		}
	}
	if opts.DFFf2 {
		n := opts.DFF2MaxParametersToTry
		if n <= 0 {
			n = 1
		}
		if res, ok := oppDFFf2(items, width, height, n); ok {
			return res
		}
	}
	if len(items) <= opts.BruteForceThreshold && opts.BruteForceThreshold > 0 {
		if res, ok := oppBruteForce(items, width, height); ok {
			return res
		}
	}
	return OrthogonalPackingResult{Status: OPPFeasible}
}

// oppPairwise implements layer 1: any two items whose combined width
// exceeds the bin's width AND whose combined height exceeds the bin's
// height cannot both be placed (one must overlap the other on both axes
// wherever it goes).
func oppPairwise(items []OPPItem, width, height int) (OrthogonalPackingResult, bool) {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.SizeX+b.SizeX > width && a.SizeY+b.SizeY > height {
				return OrthogonalPackingResult{Status: OPPInfeasible, Items: []OPPItem{a, b}}, true
			}
		}
	}
	return OrthogonalPackingResult{}, false
}

// oppDFFf0 implements layer 2: the dual-feasible function f0(u, K, C) =
// floor(u*K/C) preserves bin-packing feasibility for any scale K (see
// dffF0's comment for why floor is the conservative rounding); if the
// projected area (under a handful of K values, one axis at a time then
// combined) exceeds the projected bin area, the instance is infeasible.
func oppDFFf0(items []OPPItem, width, height int) (OrthogonalPackingResult, bool) {
	scales := DefaultDFFScales()
	for _, k := range scales {
		lw := dffF0(width, k, width)
		lh := dffF0(height, k, height)
		total := 0
		for _, it := range items {
			px := dffF0(it.SizeX, k, width)
			py := dffF0(it.SizeY, k, height)
			total += px * py
		}
		if total > lw*lh {
			return OrthogonalPackingResult{Status: OPPInfeasible, Items: append([]OPPItem(nil), items...)}, true
		}
	}
	return OrthogonalPackingResult{}, false
}

// dffF2Param holds one (K1, K2) pair used by the two-parameter DFF family:
// f2(u) = K1 * floor(u/K1) if u mod K1 <= K1-K2, else K1*floor(u/K1) + (u mod K1) - (K1-K2).
// This family dominates f0 on instances with many mid-sized items.
type dffF2Param struct{ k1, k2 int }

func dffF2Params(n int) []dffF2Param {
	all := []dffF2Param{{4, 2}, {6, 3}, {8, 3}, {8, 4}, {10, 4}}
	if n >= len(all) {
		return all
	}
	return all[:n]
}

func dffF2(u int, p dffF2Param) int {
	if p.k1 <= 0 {
		return u
	}
	q := u / p.k1
	r := u % p.k1
	if r <= p.k1-p.k2 {
		return p.k1 * q
	}
	return p.k1*q + r - (p.k1 - p.k2)
}

// oppDFFf2 implements layer 3: the two-parameter DFF family, tried for a
// bounded set of (K1,K2) pairs.
func oppDFFf2(items []OPPItem, width, height, maxParams int) (OrthogonalPackingResult, bool) {
	for _, p := range dffF2Params(maxParams) {
		lw := dffF2(width, p)
		lh := dffF2(height, p)
		if lw == 0 || lh == 0 {
			continue
		}
		total := 0
		for _, it := range items {
			total += dffF2(it.SizeX, p) * dffF2(it.SizeY, p)
		}
		if total > lw*lh {
			return OrthogonalPackingResult{Status: OPPInfeasible, Items: append([]OPPItem(nil), items...)}, true
		}
	}
	return OrthogonalPackingResult{}, false
}

// oppBruteForce implements layer 4: an exact placement search for small
// instances. Any feasible packing can be normalized so that every item's
// left edge sits at a subset sum of the item widths and its bottom edge at
// a subset sum of the item heights (push every item left and down until it
// touches the bin or another item), so restricting candidate positions to
// those "normal patterns" keeps the search exhaustive: if no placement is
// found over them, none exists and the whole item set is the conflict.
func oppBruteForce(items []OPPItem, width, height int) (OrthogonalPackingResult, bool) {
	n := len(items)
	if n == 0 {
		return OrthogonalPackingResult{}, false
	}
	totalArea := 0
	widths := make([]int, n)
	heights := make([]int, n)
	for i, it := range items {
		totalArea += it.SizeX * it.SizeY
		widths[i] = it.SizeX
		heights[i] = it.SizeY
	}
	if totalArea > width*height {
		return OrthogonalPackingResult{Status: OPPInfeasible, Items: append([]OPPItem(nil), items...)}, true
	}

	xCands := subsetSumsBelow(widths, width)
	yCands := subsetSumsBelow(heights, height)

	// Largest-area first, so the most constrained items prune early.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].SizeX*items[order[a]].SizeY > items[order[b]].SizeX*items[order[b]].SizeY
	})

	pos := make([][2]int, n)
	var place func(k int) bool
	place = func(k int) bool {
		if k == n {
			return true
		}
		it := items[order[k]]
		for _, x := range xCands {
			if x+it.SizeX > width {
				break // candidates are sorted ascending
			}
			for _, y := range yCands {
				if y+it.SizeY > height {
					break
				}
				overlaps := false
				for j := 0; j < k; j++ {
					pj := items[order[j]]
					px, py := pos[j][0], pos[j][1]
					if x < px+pj.SizeX && px < x+it.SizeX && y < py+pj.SizeY && py < y+it.SizeY {
						overlaps = true
						break
					}
				}
				if overlaps {
					continue
				}
				pos[k] = [2]int{x, y}
				if place(k + 1) {
					return true
				}
			}
		}
		return false
	}
	if place(0) {
		return OrthogonalPackingResult{}, false
	}
	return OrthogonalPackingResult{Status: OPPInfeasible, Items: append([]OPPItem(nil), items...)}, true
}

// subsetSumsBelow returns every subset sum of values that is < limit,
// sorted ascending (0 included).
func subsetSumsBelow(values []int, limit int) []int {
	sums := map[int]bool{0: true}
	for _, v := range values {
		if v <= 0 {
			continue
		}
		next := make(map[int]bool, len(sums)*2)
		for s := range sums {
			next[s] = true
			if s+v < limit {
				next[s+v] = true
			}
		}
		sums = next
	}
	out := make([]int, 0, len(sums))
	for s := range sums {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// TryUseSlackToReduceItemSize relaxes an infeasibility result's reduced
// item sizes back toward their level-zero (original, unreduced) values
// whenever the relaxed size still keeps the same conflict valid, producing
// a smaller, more general reason. original maps an item's Index to its
// level-zero (SizeX, SizeY).
func TryUseSlackToReduceItemSize(result OrthogonalPackingResult, original map[int][2]int) OrthogonalPackingResult {
	if result.Status != OPPInfeasible {
		return result
	}
	relaxed := make([]OPPItem, len(result.Items))
	for i, it := range result.Items {
		relaxed[i] = it
		if lvl0, ok := original[it.Index]; ok {
			relaxed[i].SizeX = lvl0[0]
			relaxed[i].SizeY = lvl0[1]
		}
	}
	return OrthogonalPackingResult{Status: OPPInfeasible, Items: relaxed}
}
