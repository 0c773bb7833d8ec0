package scheduling

// DemandHelper associates an affine demand (resource consumption rate) to
// each task of a cumulative constraint, and derives energy bounds from it.
// Exposes demand_min/max and energy_min/max = demand*size, unless a
// decomposed-energy description tightens the latter further.
type DemandHelper struct {
	th      *TaskHelper
	demands []AffineExpression

	// energyMinOverride/energyMaxOverride are optional per-task overrides
	// set by SetDecomposedEnergy; when hasOverride[i] is false the product
	// of the bound intervals is used instead.
	energyMinOverride []int
	energyMaxOverride []int
	hasOverride       []bool
}

// NewDemandHelper builds a demand helper over th's tasks; demands must be
// parallel to th.Tasks().
func NewDemandHelper(th *TaskHelper, demands []AffineExpression) *DemandHelper {
	n := len(demands)
	return &DemandHelper{
		th:                th,
		demands:           demands,
		energyMinOverride: make([]int, n),
		energyMaxOverride: make([]int, n),
		hasOverride:       make([]bool, n),
	}
}

func (d *DemandHelper) varBounds(i int) (int, int) {
	if d.demands[i].IsConstant() {
		return d.demands[i].Constant, d.demands[i].Constant
	}
	dom := d.th.solver.GetDomain(d.th.solver.current, d.demands[i].Var)
	if dom == nil {
		return d.demands[i].Constant, d.demands[i].Constant
	}
	return dom.Min() - 1, dom.Max() - 1
}

// DemandMin returns the lower bound on task i's resource consumption rate.
func (d *DemandHelper) DemandMin(i int) int {
	min, max := d.varBounds(i)
	return d.demands[i].Min(min, max)
}

// DemandMax returns the upper bound on task i's resource consumption rate.
func (d *DemandHelper) DemandMax(i int) int {
	min, max := d.varBounds(i)
	return d.demands[i].Max(min, max)
}

// EnergyMin returns the minimal demand*size energy for task i.
func (d *DemandHelper) EnergyMin(i int) int {
	if d.hasOverride[i] {
		return d.energyMinOverride[i]
	}
	return d.DemandMin(i) * d.th.SizeMin(d.th.Tasks()[i])
}

// EnergyMax returns the maximal demand*size energy for task i.
func (d *DemandHelper) EnergyMax(i int) int {
	if d.hasOverride[i] {
		return d.energyMaxOverride[i]
	}
	t := d.th.Tasks()[i]
	return d.DemandMax(i) * t.SizeMax
}

// SetDecomposedEnergy overrides the product-of-bounds energy for task i with
// a tighter value derived from a decomposed piecewise-linear size/demand
// description supplied by the caller.
func (d *DemandHelper) SetDecomposedEnergy(i, energyMin, energyMax int) {
	d.energyMinOverride[i] = energyMin
	d.energyMaxOverride[i] = energyMax
	d.hasOverride[i] = true
}

// EnergyMinAfter returns the minimum energy task i can possibly contribute
// when its interval is intersected with [time, +inf). No propagator in this
// package calls it.
func (d *DemandHelper) EnergyMinAfter(i, time int) int {
	t := d.th.Tasks()[i]
	end := d.th.EndMin(t)
	start := d.th.StartMax(t)
	if start >= time {
		// whole mandatory part (if any) after 'time' contributes, otherwise
		// the generic size_min*demand_min lower bound still applies.
		return d.EnergyMin(i)
	}
	overlap := end - time
	if overlap <= 0 {
		return 0
	}
	sizeMin := d.th.SizeMin(t)
	if overlap > sizeMin {
		overlap = sizeMin
	}
	return overlap * d.DemandMin(i)
}
