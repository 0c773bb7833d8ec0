package scheduling

import "math"

// negInf is the sentinel envelope value for an empty or removed leaf. A
// quarter of MinInt64 leaves headroom for compose to add real energy sums
// to a sentinel without wrapping, while staying far below any envelope a
// propagator can build after its overflow pre-check.
const negInf = math.MinInt64 / 4

// thetaNode is one node of the Theta-Lambda tree: the envelope
// pair plus the energy totals needed to recompute an ancestor's envelope in
// O(1) from its two children.
type thetaNode struct {
	envelope    int
	envelopeOpt int
	sum         int
	maxDelta    int
}

func emptyLeaf() thetaNode {
	return thetaNode{envelope: negInf, envelopeOpt: negInf, sum: 0, maxDelta: negInf}
}

func compose(left, right thetaNode) thetaNode {
	n := thetaNode{}
	n.envelope = maxInt(right.envelope, left.envelope+right.sum)
	n.envelopeOpt = maxInt(right.envelopeOpt, right.sum+maxInt(left.envelopeOpt, left.envelope+right.maxDelta))
	n.sum = left.sum + right.sum
	n.maxDelta = maxInt(left.maxDelta, right.maxDelta)
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ThetaLambdaTree gives O(log n) access to the maximum envelope over a set
// of events, with a lambda ("one out") variant that allows at most one
// event to swap to its max energy. Events map to leaves in input order;
// event-index order is preserved as leaf order.
type ThetaLambdaTree struct {
	numLeaves int
	nodes     []thetaNode // 1-indexed heap layout: root at 1, leaves at [numLeaves, 2*numLeaves)
}

// NewThetaLambdaTree allocates a tree sized for up to numEvents events.
func NewThetaLambdaTree(numEvents int) *ThetaLambdaTree {
	t := &ThetaLambdaTree{}
	t.Reset(numEvents)
	return t
}

// Reset clears all leaves and resizes for numEvents events, choosing
// numLeaves as the smallest power of two that is at least max(2, numEvents),
// so that every leaf sits at the same depth and the left-to-right leaf order
// of the heap layout is the event-index order.
func (t *ThetaLambdaTree) Reset(numEvents int) {
	n := 2
	for n < numEvents {
		n *= 2
	}
	t.numLeaves = n
	t.nodes = make([]thetaNode, 2*n)
	for i := n; i < 2*n; i++ {
		t.nodes[i] = emptyLeaf()
	}
	for i := n - 1; i >= 1; i-- {
		t.nodes[i] = compose(t.nodes[2*i], t.nodes[2*i+1])
	}
}

func (t *ThetaLambdaTree) leafIndex(event int) int {
	return t.numLeaves + event
}

func (t *ThetaLambdaTree) refreshUp(leaf int) {
	i := leaf / 2
	for i >= 1 {
		t.nodes[i] = compose(t.nodes[2*i], t.nodes[2*i+1])
		i /= 2
	}
}

// AddOrUpdateEvent places event in the present ("theta") set.
func (t *ThetaLambdaTree) AddOrUpdateEvent(event, initialEnvelope, energyMin, energyMax int) {
	leaf := t.leafIndex(event)
	t.nodes[leaf] = thetaNode{
		envelope:    initialEnvelope + energyMin,
		envelopeOpt: initialEnvelope + energyMax,
		sum:         energyMin,
		maxDelta:    energyMax - energyMin,
	}
	t.refreshUp(leaf)
}

// AddOrUpdateOptionalEvent places event only in the lambda (optional) set.
func (t *ThetaLambdaTree) AddOrUpdateOptionalEvent(event, initialEnvelopeOpt, energyMax int) {
	leaf := t.leafIndex(event)
	t.nodes[leaf] = thetaNode{
		envelope:    negInf,
		envelopeOpt: initialEnvelopeOpt + energyMax,
		sum:         0,
		maxDelta:    energyMax,
	}
	t.refreshUp(leaf)
}

// RemoveEvent clears an event's leaf entirely.
func (t *ThetaLambdaTree) RemoveEvent(event int) {
	leaf := t.leafIndex(event)
	t.nodes[leaf] = emptyLeaf()
	t.refreshUp(leaf)
}

// GetEnvelope returns the root's theta envelope.
func (t *ThetaLambdaTree) GetEnvelope() int {
	return t.nodes[1].envelope
}

// GetOptionalEnvelope returns the root's lambda (one-out) envelope.
func (t *ThetaLambdaTree) GetOptionalEnvelope() int {
	return t.nodes[1].envelopeOpt
}

// GetEnvelopeOf returns the envelope contributed by a single leaf subtree —
// used by callers that need the theta envelope of a prefix ending at event.
func (t *ThetaLambdaTree) GetEnvelopeOf(event int) int {
	return t.nodes[t.leafIndex(event)].envelope
}

// GetMaxEventWithEnvelopeGreaterThan walks down from the root following the
// child whose envelope still exceeds target, and returns the leaf (event)
// index responsible, or -1 if no such event exists.
func (t *ThetaLambdaTree) GetMaxEventWithEnvelopeGreaterThan(target int) int {
	if t.nodes[1].envelope <= target {
		return -1
	}
	i := 1
	for i < t.numLeaves {
		right := 2*i + 1
		if t.nodes[right].envelope > target {
			i = right
		} else {
			target -= t.nodes[right].sum
			i = 2 * i
		}
	}
	return i - t.numLeaves
}

// GetEventsWithOptionalEnvelopeGreaterThan locates the critical theta event,
// the lambda event responsible for crossing target, and the energy slack
// still available between them.
//
// Two-phase descent: phase one follows the envelope_opt formula
// (envelope_opt = max(right.envelope_opt, right.sum + max(left.envelope_opt,
// left.envelope + right.max_delta))) until it identifies which subtree the
// lambda (gray) event's max_delta contribution comes from; once found, the
// remaining critical (theta) event is pinned down purely through the plain
// envelope formula (phase two, identical in shape to
// GetMaxEventWithEnvelopeGreaterThan) — continuing to re-test envelope_opt
// at deeper levels after the lambda branch is already fixed would let a
// second, spurious "crossing" overwrite the correct lambda leaf.
func (t *ThetaLambdaTree) GetEventsWithOptionalEnvelopeGreaterThan(target int) (criticalEvent, optionalEvent int, availableEnergy int) {
	if t.nodes[1].envelopeOpt <= target {
		return -1, -1, 0
	}
	availableEnergy = t.nodes[1].envelopeOpt - target

	node := 1
	lambdaRoot := -1
	for node < t.numLeaves {
		left, right := 2*node, 2*node+1
		if t.nodes[right].envelopeOpt > target {
			node = right
			continue
		}
		target -= t.nodes[right].sum
		if t.nodes[left].envelopeOpt > target {
			node = left
			continue
		}
		lambdaRoot = right
		node = left
		break
	}

	// Phase two: plain-envelope descent from node (unchanged if phase one
	// never broke out, i.e. the lambda leaf was reached directly).
	for node < t.numLeaves {
		right := 2*node + 1
		if t.nodes[right].envelope > target {
			node = 2*node + 1
		} else {
			target -= t.nodes[right].sum
			node = 2 * node
		}
	}
	criticalEvent = node - t.numLeaves

	if lambdaRoot == -1 {
		// Phase one ran all the way to a leaf without ever finding a
		// crossing subtree: that leaf's own max_delta is the lambda
		// contribution, so fall back to a global scan.
		optionalEvent = t.findMaxDeltaLeaf()
	} else {
		optionalEvent = t.findMaxDeltaLeafIn(lambdaRoot) - t.numLeaves
	}
	return criticalEvent, optionalEvent, availableEnergy
}

func (t *ThetaLambdaTree) findMaxDeltaLeafIn(root int) int {
	i := root
	for i < t.numLeaves {
		left, right := 2*i, 2*i+1
		if t.nodes[right].maxDelta >= t.nodes[left].maxDelta {
			i = right
		} else {
			i = left
		}
	}
	return i
}

func (t *ThetaLambdaTree) findMaxDeltaLeaf() int {
	return t.findMaxDeltaLeafIn(1) - t.numLeaves
}
