package scheduling

// AffineExpression denotes coeff*value(Var) + Constant. Var is -1 for "no
// variable" (a pure constant). All bounds in this package are queried
// through this indirection so a task's start/end/size can each be a fixed
// constant, a bare variable, or a scaled/offset variable without the
// propagators needing a separate code path.
type AffineExpression struct {
	Var      int
	Coeff    int
	Constant int
}

// Constant builds a fixed affine expression with no underlying variable.
func Constant(value int) AffineExpression {
	return AffineExpression{Var: -1, Coeff: 0, Constant: value}
}

// FromVar builds the identity affine expression for a bare variable.
func FromVar(v int) AffineExpression {
	return AffineExpression{Var: v, Coeff: 1, Constant: 0}
}

// IsConstant reports whether the expression has no underlying variable.
func (a AffineExpression) IsConstant() bool {
	return a.Var < 0 || a.Coeff == 0
}

// ValueAt evaluates the expression given the bound value of its underlying
// variable (ignored when the expression is constant).
func (a AffineExpression) ValueAt(varValue int) int {
	if a.IsConstant() {
		return a.Constant
	}
	return a.Coeff*varValue + a.Constant
}

// Min evaluates the expression's lower bound given the variable's bounds.
// Coeff may be negative, in which case the variable's bounds flip.
func (a AffineExpression) Min(varMin, varMax int) int {
	if a.IsConstant() {
		return a.Constant
	}
	if a.Coeff > 0 {
		return a.Coeff*varMin + a.Constant
	}
	return a.Coeff*varMax + a.Constant
}

// Max evaluates the expression's upper bound given the variable's bounds.
func (a AffineExpression) Max(varMin, varMax int) int {
	if a.IsConstant() {
		return a.Constant
	}
	if a.Coeff > 0 {
		return a.Coeff*varMax + a.Constant
	}
	return a.Coeff*varMin + a.Constant
}

// InverseValueForMin returns the variable value that would make ValueAt
// equal to target, rounding toward feasibility when Coeff does not divide
// evenly — used by push operations that must translate a bound on the
// expression back into a bound on the underlying variable.
func (a AffineExpression) InverseValueForMin(target int) int {
	if a.IsConstant() {
		return 0
	}
	diff := target - a.Constant
	if a.Coeff > 0 {
		// ceil division
		if diff >= 0 {
			return (diff + a.Coeff - 1) / a.Coeff
		}
		return -((-diff) / a.Coeff)
	}
	// negative coeff: target = coeff*v + const, v = diff/coeff, flipped rounding
	if diff <= 0 {
		return (-diff + (-a.Coeff) - 1) / (-a.Coeff)
	}
	return -(diff / (-a.Coeff))
}

// InverseValueForMax is the ceiling-vs-floor dual of InverseValueForMin, used
// when translating an upper-bound target on the expression back to the
// variable.
func (a AffineExpression) InverseValueForMax(target int) int {
	if a.IsConstant() {
		return 0
	}
	diff := target - a.Constant
	if a.Coeff > 0 {
		if diff >= 0 {
			return diff / a.Coeff
		}
		return -((-diff + a.Coeff - 1) / a.Coeff)
	}
	if diff <= 0 {
		return -diff / (-a.Coeff)
	}
	return -((diff + (-a.Coeff) - 1) / (-a.Coeff))
}
