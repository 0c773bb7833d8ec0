package scheduling

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gitrdm/cpsched/internal/telemetry"
)

// Solver drives propagation and backtracking search over a Model's
// variables, using a copy-on-write SolverState chain: each domain change is
// an O(1) new state node sharing structure with its parent, pooled to
// minimise GC pressure. Propagation delegates to the Model's Watcher, which
// dispatches propagators in priority order.
type Solver struct {
	model     *Model
	statePool *sync.Pool

	// current is the state every TaskHelper reads and writes through while
	// propagation or search is in progress. Propagators are long-lived
	// objects sharing this one running position; everything else they hold
	// is cache, reconstructed on synchronise.
	current *SolverState
}

// SolverState is a persistent, copy-on-write node: a pointer to its parent
// plus the single domain modified from the parent.
type SolverState struct {
	parent         *SolverState
	modifiedVarID  int
	modifiedDomain Domain
	depth          int
	refCount       atomic.Int64
}

// NewSolver creates a solver for the given model.
func NewSolver(model *Model) *Solver {
	s := &Solver{
		model: model,
		statePool: &sync.Pool{
			New: func() interface{} { return &SolverState{} },
		},
	}
	return s
}

// Current returns the solver's current state pointer.
func (s *Solver) Current() *SolverState { return s.current }

// SetTelemetry wires r into every propagator dispatch this solver's model
// runs, logging which propagator ran, whether it pushed a bound, and any
// conflict reported. Passing nil restores silence.
func (s *Solver) SetTelemetry(r *telemetry.Recorder) {
	s.model.Watcher().SetRecorder(r)
}

// AtLevelZero reports whether the solver has made no search decisions yet
// (no backtrack point has been pushed). Propagators use this to guard
// NotifyLevelZeroPrecedence: the fact "end(a) <= start(b)" is only safe to
// record permanently when it cannot later be invalidated by backtracking.
func (s *Solver) AtLevelZero() bool { return s.current == nil || s.current.depth == 0 }

// GetDomain returns the current domain of a variable, walking the state
// chain for the most recent modification before falling back to the
// model's initial domain.
func (s *Solver) GetDomain(state *SolverState, varID int) Domain {
	for cur := state; cur != nil; cur = cur.parent {
		if cur.modifiedVarID == varID && cur.modifiedDomain != nil {
			return cur.modifiedDomain
		}
	}
	if v := s.model.GetVariable(varID); v != nil {
		return v.Domain()
	}
	return nil
}

// SetDomain creates a new state with domain replacing varID's current
// domain under state, returning the new state and whether anything
// changed.
func (s *Solver) SetDomain(state *SolverState, varID int, domain Domain) (*SolverState, bool) {
	current := s.GetDomain(state, varID)
	if current != nil && current.Equal(domain) {
		return state, false
	}

	newState := s.statePool.Get().(*SolverState)
	newState.parent = state
	newState.modifiedVarID = varID
	newState.modifiedDomain = domain
	if state != nil {
		newState.depth = state.depth + 1
		state.refCount.Add(1)
	} else {
		newState.depth = 1
	}
	newState.refCount.Store(1)
	return newState, true
}

// Push applies domain to varID against the solver's current running state
// and advances s.current. Returns whether the domain actually changed.
func (s *Solver) Push(varID int, domain Domain) bool {
	next, changed := s.SetDomain(s.current, varID, domain)
	if changed {
		s.current = next
	}
	return changed
}

// ReleaseState cascades a refcount decrement up the parent chain, returning
// nodes to the pool once nothing references them anymore.
func (s *Solver) ReleaseState(state *SolverState) {
	for cur := state; cur != nil; {
		if cur.refCount.Add(-1) > 0 {
			return
		}
		parent := cur.parent
		cur.parent = nil
		cur.modifiedDomain = nil
		cur.modifiedVarID = 0
		cur.depth = 0
		cur.refCount.Store(0)
		s.statePool.Put(cur)
		cur = parent
	}
}

// Propagate runs the model's watcher to a fixed point against the solver's
// current state. Returns the Conflict if propagation failed.
func (s *Solver) Propagate() error {
	if err := s.model.Watcher().RunToFixedPoint(); err != nil {
		return err
	}
	return nil
}

// Solve finds up to maxSolutions solutions via backtracking search,
// respecting ctx cancellation. Solutions are returned as one integer per
// model variable, in variable-ID order.
func (s *Solver) Solve(ctx context.Context, maxSolutions int) ([][]int, error) {
	if err := s.model.Validate(); err != nil {
		return nil, fmt.Errorf("scheduling: invalid model: %w", err)
	}

	if err := s.Propagate(); err != nil {
		return [][]int{}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.isComplete() {
		return [][]int{s.extractSolution()}, nil
	}

	solutions := make([][]int, 0)
	s.search(ctx, &solutions, maxSolutions)
	return solutions, ctx.Err()
}

type searchFrame struct {
	savedState *SolverState
	varID      int
	values     []int
	valueIndex int
}

func (s *Solver) search(ctx context.Context, solutions *[][]int, maxSolutions int) {
	varID, values := s.selectVariable()
	if varID == -1 {
		if s.isComplete() {
			*solutions = append(*solutions, s.extractSolution())
		}
		return
	}

	stack := []*searchFrame{{savedState: s.current, varID: varID, values: values}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame := stack[len(stack)-1]
		if frame.valueIndex >= len(frame.values) {
			s.current = frame.savedState
			stack = stack[:len(stack)-1]
			continue
		}

		value := frame.values[frame.valueIndex]
		frame.valueIndex++
		s.current = frame.savedState

		domain := s.GetDomain(s.current, frame.varID)
		pushed := s.Push(frame.varID, NewBitSetDomainFromValues(domain.MaxValue(), []int{value}))
		_ = pushed

		if err := s.Propagate(); err != nil {
			continue
		}

		if s.isComplete() {
			*solutions = append(*solutions, s.extractSolution())
			if maxSolutions > 0 && len(*solutions) >= maxSolutions {
				return
			}
			continue
		}

		nextVar, nextValues := s.selectVariable()
		if nextVar == -1 {
			continue
		}
		stack = append(stack, &searchFrame{savedState: s.current, varID: nextVar, values: nextValues})
	}
}

func (s *Solver) isComplete() bool {
	for i := 0; i < s.model.VariableCount(); i++ {
		if !s.GetDomain(s.current, i).IsSingleton() {
			return false
		}
	}
	return true
}

func (s *Solver) extractSolution() []int {
	out := make([]int, s.model.VariableCount())
	for i := range out {
		d := s.GetDomain(s.current, i)
		if d.IsSingleton() {
			out[i] = d.SingletonValue()
		}
	}
	return out
}

// selectVariable picks the smallest-domain unbound variable (first-fail).
func (s *Solver) selectVariable() (int, []int) {
	best := -1
	bestCount := -1
	var bestValues []int
	for i := 0; i < s.model.VariableCount(); i++ {
		d := s.GetDomain(s.current, i)
		if d.IsSingleton() {
			continue
		}
		if best == -1 || d.Count() < bestCount {
			best = i
			bestCount = d.Count()
			bestValues = bestValues[:0]
			d.IterateValues(func(v int) { bestValues = append(bestValues, v) })
		}
	}
	if best == -1 {
		return -1, nil
	}
	values := make([]int, len(bestValues))
	copy(values, bestValues)
	return best, values
}
