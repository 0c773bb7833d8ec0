package scheduling

import (
	"fmt"
	"sync"
)

// PropagatorConfig enumerates which cumulative/2-D enhancements are
// enabled.
type PropagatorConfig struct {
	UseDisjunctiveInCumulative              bool
	UseOverloadChecker                      bool
	UseTimetableEdgeFinding                 bool
	UseConservativeScaleOverloadChecker     bool
	UsePrecedencesInDisjunctive             bool
	UseCombinedNoOverlap                    bool
	UseTimetablingInNoOverlap2D             bool
	UseEnergeticReasoningInNoOverlap2D      bool
	UseAreaEnergeticReasoningInNoOverlap2D  bool
	UseTryEdgeReasoningInNoOverlap2D        bool
	MaxPairsPairwiseReasoningInNoOverlap2D  int
	MaxNumIntervalsForTimetableEdgeFinding  int
	MaxSizeToCreatePrecedenceLitsDisjunctive int

	// MonteCarloSamplesInNoOverlap2D bounds the number of candidate energy
	// windows the 2-D energy layer's sampler draws per AddNoOverlap2D
	// propagate call (0 disables sampling, falling back straight to the
	// full-rectangle-set check). MonteCarloSeedInNoOverlap2D seeds the
	// sampler's PRNG so results stay reproducible across runs; per the
	// engine's determinism requirement this is never derived from wall
	// clock. MonteCarloWorkersInNoOverlap2D, when positive, runs the
	// sampled windows' evaluations across that many pooled workers instead
	// of sequentially.
	MonteCarloSamplesInNoOverlap2D int
	MonteCarloSeedInNoOverlap2D    int64
	MonteCarloWorkersInNoOverlap2D int
}

// DefaultPropagatorConfig returns the default configuration: every
// enhancement on, with conservative size caps.
func DefaultPropagatorConfig() *PropagatorConfig {
	return &PropagatorConfig{
		UseDisjunctiveInCumulative:               true,
		UseOverloadChecker:                        true,
		UseTimetableEdgeFinding:                    true,
		UseConservativeScaleOverloadChecker:        true,
		UsePrecedencesInDisjunctive:                true,
		UseCombinedNoOverlap:                       true,
		UseTimetablingInNoOverlap2D:                true,
		UseEnergeticReasoningInNoOverlap2D:          true,
		UseAreaEnergeticReasoningInNoOverlap2D:      true,
		UseTryEdgeReasoningInNoOverlap2D:            true,
		MaxPairsPairwiseReasoningInNoOverlap2D:      1000,
		MaxNumIntervalsForTimetableEdgeFinding:      500,
		MaxSizeToCreatePrecedenceLitsDisjunctive:    60,
		MonteCarloSamplesInNoOverlap2D:              64,
		MonteCarloSeedInNoOverlap2D:                 1,
		MonteCarloWorkersInNoOverlap2D:               0,
	}
}

// Model is the immutable (during solving) problem definition: the domain
// variables backing task starts and presence literals, plus the set of
// registered propagators and the watcher that dispatches them.
type Model struct {
	variables     []*FDVariable
	variableIndex map[int]*FDVariable
	propagators   []Propagator
	watcher       *Watcher
	precedences   *PrecedenceGraph
	config        *PropagatorConfig
	mu            sync.RWMutex
}

// NewModel creates an empty model with default propagator configuration.
func NewModel() *Model {
	return &Model{
		variableIndex: make(map[int]*FDVariable),
		watcher:       NewWatcher(),
		precedences:   NewPrecedenceGraph(),
		config:        DefaultPropagatorConfig(),
	}
}

// NewVariable allocates a fresh domain variable and returns its ID.
func (m *Model) NewVariable(domain Domain) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := len(m.variables)
	v := NewFDVariable(id, domain)
	m.variables = append(m.variables, v)
	m.variableIndex[id] = v
	return id
}

// GetVariable returns the variable with the given id, or nil.
func (m *Model) GetVariable(id int) *FDVariable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variableIndex[id]
}

// Variables returns all variables in the model.
func (m *Model) Variables() []*FDVariable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variables
}

// VariableCount returns the number of variables in the model.
func (m *Model) VariableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.variables)
}

// AddPropagator registers p with the model's watcher (via p.RegisterWith)
// and appends it to the propagator list the solver's propagate loop drives.
func (m *Model) AddPropagator(p Propagator) RegistrationID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := p.RegisterWith(m.watcher)
	m.propagators = append(m.propagators, p)
	m.watcher.bind(id, p)
	return id
}

// Propagators returns all registered propagators.
func (m *Model) Propagators() []Propagator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.propagators
}

// Watcher returns the model's priority dispatch watcher.
func (m *Model) Watcher() *Watcher { return m.watcher }

// Precedences returns the model's level-zero precedence graph.
func (m *Model) Precedences() *PrecedenceGraph { return m.precedences }

// Config returns the propagator configuration.
func (m *Model) Config() *PropagatorConfig { return m.config }

// SetConfig replaces the propagator configuration.
func (m *Model) SetConfig(c *PropagatorConfig) { m.config = c }

// Validate checks for empty domains across all variables.
func (m *Model) Validate() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.variables {
		if v.Domain() == nil || v.Domain().Count() == 0 {
			return fmt.Errorf("scheduling: variable %s has empty domain", v.Name())
		}
	}
	return nil
}

func (m *Model) String() string {
	return fmt.Sprintf("Model(vars=%d, propagators=%d)", len(m.variables), len(m.propagators))
}
