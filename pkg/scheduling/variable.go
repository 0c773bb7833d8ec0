package scheduling

import "fmt"

// FDVariable is a finite-domain variable backing a task's start time or a
// presence literal. The Model holds
// each variable's initial domain; during solving, the Solver tracks current
// domains via the SolverState chain keyed by ID, so FDVariable itself never
// mutates once propagation begins.
type FDVariable struct {
	id     int
	domain Domain
	name   string
}

// NewFDVariable creates a variable with the given id and initial domain.
func NewFDVariable(id int, domain Domain) *FDVariable {
	return &FDVariable{id: id, domain: domain, name: fmt.Sprintf("v%d", id)}
}

// NewFDVariableWithName creates a named variable for easier debugging.
func NewFDVariableWithName(id int, domain Domain, name string) *FDVariable {
	return &FDVariable{id: id, domain: domain, name: name}
}

// ID returns the variable's unique identifier.
func (v *FDVariable) ID() int { return v.id }

// Domain returns the variable's initial domain (the model-construction-time
// domain; current solving-time domain is tracked by the SolverState chain).
func (v *FDVariable) Domain() Domain { return v.domain }

// IsBound reports whether the initial domain is already a singleton.
func (v *FDVariable) IsBound() bool { return v.domain.IsSingleton() }

// Value returns the bound value. Panics if not bound.
func (v *FDVariable) Value() int {
	if !v.IsBound() {
		panic(fmt.Sprintf("Variable %s is not bound (domain size: %d)", v.name, v.domain.Count()))
	}
	return v.domain.SingletonValue()
}

// Name returns the variable's name for debugging.
func (v *FDVariable) Name() string { return v.name }

// SetDomain updates the variable's initial domain during model construction.
// Must not be called once solving has started.
func (v *FDVariable) SetDomain(domain Domain) { v.domain = domain }

func (v *FDVariable) String() string {
	if v.IsBound() {
		return fmt.Sprintf("%s=%d", v.name, v.Value())
	}
	return fmt.Sprintf("%s∈%s", v.name, v.domain.String())
}
