package scheduling

import "testing"

// Two tasks, each start_min=0, size=3: their combined envelope (earliest
// both could finish, packed back to back) is 6.
func TestThetaLambdaTreeEnvelopeTwoTasks(t *testing.T) {
	tree := NewThetaLambdaTree(2)
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateEvent(1, 0, 3, 3)
	if got := tree.GetEnvelope(); got != 6 {
		t.Errorf("GetEnvelope() = %d, want 6", got)
	}
}

func TestThetaLambdaTreeEnvelopeRespectsStartMin(t *testing.T) {
	tree := NewThetaLambdaTree(2)
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateEvent(1, 10, 3, 3)
	// The second event starts no earlier than 10 regardless of the first's
	// energy, so the envelope is bounded by 10+3=13, not 0+3+3=6.
	if got := tree.GetEnvelope(); got != 13 {
		t.Errorf("GetEnvelope() = %d, want 13", got)
	}
}

func TestThetaLambdaTreeRemoveEventDropsContribution(t *testing.T) {
	tree := NewThetaLambdaTree(2)
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateEvent(1, 0, 3, 3)
	tree.RemoveEvent(1)
	if got := tree.GetEnvelope(); got != 3 {
		t.Errorf("GetEnvelope() after remove = %d, want 3", got)
	}
}

func TestThetaLambdaTreeOptionalEnvelopeAllowsOneSwap(t *testing.T) {
	tree := NewThetaLambdaTree(2)
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateOptionalEvent(1, 0, 5)
	// The theta-only envelope ignores the optional event entirely.
	if got := tree.GetEnvelope(); got != 3 {
		t.Errorf("GetEnvelope() = %d, want 3", got)
	}
	// The lambda envelope allows the optional event to contribute its max
	// energy on top of the mandatory one.
	if got := tree.GetOptionalEnvelope(); got != 8 {
		t.Errorf("GetOptionalEnvelope() = %d, want 8", got)
	}
}

// TestThetaLambdaTreeGetEventsWithOptionalEnvelopeGreaterThan exercises a
// case where the crossing subtree (containing the lambda event) is found
// high in the tree while the critical theta event lives in an entirely
// different, all-theta subtree — the case the two-phase descent (as
// opposed to a single envelope_opt-only walk all the way down) must get
// right.
func TestThetaLambdaTreeGetEventsWithOptionalEnvelopeGreaterThan(t *testing.T) {
	tree := NewThetaLambdaTree(3)
	// Events 0 and 1: mandatory, start_min 0, size 3 each (theta envelope
	// packs them back-to-back: earliest finish 6). Event 2: optional,
	// start_min 0, energy_max 2 (not a mandatory contributor at all).
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateEvent(1, 0, 3, 3)
	tree.AddOrUpdateOptionalEvent(2, 0, 2)

	if got := tree.GetEnvelope(); got != 6 {
		t.Fatalf("GetEnvelope() = %d, want 6", got)
	}
	if got := tree.GetOptionalEnvelope(); got != 8 {
		t.Fatalf("GetOptionalEnvelope() = %d, want 8", got)
	}

	critical, optional, available := tree.GetEventsWithOptionalEnvelopeGreaterThan(6)
	if optional != 2 {
		t.Errorf("optionalEvent = %d, want 2 (the only optional event)", optional)
	}
	if critical != 0 && critical != 1 {
		t.Errorf("criticalEvent = %d, want 0 or 1 (a theta event)", critical)
	}
	if available != 2 {
		t.Errorf("availableEnergy = %d, want 2", available)
	}
}

func TestThetaLambdaTreeGetMaxEventWithEnvelopeGreaterThan(t *testing.T) {
	tree := NewThetaLambdaTree(2)
	tree.AddOrUpdateEvent(0, 0, 3, 3)
	tree.AddOrUpdateEvent(1, 0, 3, 3)
	if got := tree.GetMaxEventWithEnvelopeGreaterThan(10); got != -1 {
		t.Errorf("GetMaxEventWithEnvelopeGreaterThan(10) = %d, want -1", got)
	}
	if got := tree.GetMaxEventWithEnvelopeGreaterThan(2); got == -1 {
		t.Errorf("GetMaxEventWithEnvelopeGreaterThan(2) = -1, want a real event")
	}
}
