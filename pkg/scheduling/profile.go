package scheduling

import "sort"

// ProfileRect is one piece of a piecewise-constant resource profile: the
// height holds from Start until the next rectangle's Start (or +inf for the
// last one).
type ProfileRect struct {
	Start  int
	Height int
}

// Profile is a sorted list of ProfileRect with sentinels at both ends.
type Profile struct {
	Rects []ProfileRect
}

// profileEvent is a signed delta at a point in time, used to sweep a set of
// mandatory parts (or reservoir events) into a piecewise-constant profile.
type profileEvent struct {
	time  int
	delta int
}

// BuildProfile sweeps a set of signed delta events into a profile. Events at
// the same time are combined. A sentinel of height 0 is placed at negative
// and positive infinity via math.MinInt/MaxInt-ish bounds supplied by the
// caller (negInf/posInf), matching the "sentinel at both ends" contract.
func BuildProfile(events []profileEvent, negInf, posInf int) *Profile {
	sort.Slice(events, func(i, j int) bool { return events[i].time < events[j].time })

	rects := make([]ProfileRect, 0, len(events)+2)
	rects = append(rects, ProfileRect{Start: negInf, Height: 0})

	height := 0
	i := 0
	for i < len(events) {
		t := events[i].time
		for i < len(events) && events[i].time == t {
			height += events[i].delta
			i++
		}
		rects = append(rects, ProfileRect{Start: t, Height: height})
	}
	rects = append(rects, ProfileRect{Start: posInf, Height: 0})
	return &Profile{Rects: rects}
}

// MaxHeight returns the tallest rectangle in the profile.
func (p *Profile) MaxHeight() int {
	max := 0
	for _, r := range p.Rects {
		if r.Height > max {
			max = r.Height
		}
	}
	return max
}

// HeightAt returns the profile's height at time t.
func (p *Profile) HeightAt(t int) int {
	height := 0
	for _, r := range p.Rects {
		if r.Start > t {
			break
		}
		height = r.Height
	}
	return height
}

// FirstRectAtOrAfterExceeding returns the index of the first rectangle whose
// Start >= from and whose Height exceeds threshold, or -1 if none.
func (p *Profile) FirstRectAtOrAfterExceeding(from, threshold int) int {
	for i, r := range p.Rects {
		if r.Start >= from && r.Height > threshold {
			return i
		}
	}
	return -1
}
