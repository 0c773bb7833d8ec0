package scheduling

import "fmt"

// IntegerLiteral is the core unit of reason: a claim that a variable's bound
// is at least as tight as Bound, in the direction given by IsLowerBound.
type IntegerLiteral struct {
	Var          int
	Bound        int
	IsLowerBound bool
}

func (l IntegerLiteral) String() string {
	if l.IsLowerBound {
		return fmt.Sprintf("v%d >= %d", l.Var, l.Bound)
	}
	return fmt.Sprintf("v%d <= %d", l.Var, l.Bound)
}

// Conflict means the current partial assignment is infeasible. Reason is a
// self-contained set of integer literals that together already imply
// falsity; the caller uses it for conflict analysis. It implements error so
// propagators can return it directly.
type Conflict struct {
	Reason []IntegerLiteral
	Msg    string
}

func (c *Conflict) Error() string {
	if c.Msg != "" {
		return c.Msg
	}
	return "scheduling: conflict"
}

// NewConflict builds a Conflict from a message and the reason literals
// collected so far. The reason slice is copied so callers may keep reusing
// their scratch buffer.
func NewConflict(msg string, reason []IntegerLiteral) *Conflict {
	r := make([]IntegerLiteral, len(reason))
	copy(r, reason)
	return &Conflict{Reason: r, Msg: msg}
}

// ErrOverflow names the case where size_min * demand_max * horizon-style
// products would exceed what the integer type can represent. No propagator
// returns it: an arithmetic pre-check that detects this case bails out as a
// no-op, (false, nil), rather than push a bound derived from wrapped
// arithmetic.
var ErrOverflow = fmt.Errorf("scheduling: integer overflow pre-check failed")

// PushFailure wraps a Conflict as an error. The TaskHelper push methods do
// not use it: they return (bool, *Conflict), and a propagator that gets a
// non-nil Conflict returns it to its own caller.
type PushFailure struct {
	Conflict *Conflict
}

func (p *PushFailure) Error() string {
	return p.Conflict.Error()
}
