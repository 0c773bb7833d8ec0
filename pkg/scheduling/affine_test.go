package scheduling

import "testing"

func TestAffineExpressionConstant(t *testing.T) {
	e := AffineExpression{Var: -1, Coeff: 0, Constant: 7}
	if !e.IsConstant() {
		t.Fatalf("expected constant expression")
	}
	if got := e.Constant; got != 7 {
		t.Errorf("Constant() = %d, want 7", got)
	}
}

func TestAffineExpressionFromVar(t *testing.T) {
	e := FromVar(3)
	if e.IsConstant() {
		t.Fatalf("FromVar should not be constant")
	}
	if e.Var != 3 || e.Coeff != 1 {
		t.Errorf("FromVar(3) = %+v, want Var=3 Coeff=1", e)
	}
}

func TestAffineExpressionValueAt(t *testing.T) {
	e := AffineExpression{Var: 0, Coeff: 2, Constant: 5}
	if got := e.ValueAt(10); got != 25 {
		t.Errorf("ValueAt(10) = %d, want 25", got)
	}
}

func TestAffineExpressionMinMaxPositiveCoeff(t *testing.T) {
	e := AffineExpression{Var: 0, Coeff: 2, Constant: 1}
	if got := e.Min(3, 9); got != 7 {
		t.Errorf("Min(3,9) = %d, want 7 (2*3+1)", got)
	}
	if got := e.Max(3, 9); got != 19 {
		t.Errorf("Max(3,9) = %d, want 19 (2*9+1)", got)
	}
}

func TestAffineExpressionMinMaxNegativeCoeffFlipsSign(t *testing.T) {
	e := AffineExpression{Var: 0, Coeff: -1, Constant: 10}
	// With a negative coefficient, the variable's own max produces the
	// expression's min, and vice versa.
	if got := e.Min(3, 9); got != 1 {
		t.Errorf("Min(3,9) = %d, want 1 (10-9)", got)
	}
	if got := e.Max(3, 9); got != 7 {
		t.Errorf("Max(3,9) = %d, want 7 (10-3)", got)
	}
}

func TestAffineExpressionInverseValueForMinCeiling(t *testing.T) {
	e := AffineExpression{Var: 0, Coeff: 3, Constant: 1}
	// value = 10 means 3*x+1 >= 10 => x >= 3 (ceil(9/3)=3).
	if got := e.InverseValueForMin(10); got != 3 {
		t.Errorf("InverseValueForMin(10) = %d, want 3", got)
	}
}

func TestAffineExpressionInverseValueForMaxFloor(t *testing.T) {
	e := AffineExpression{Var: 0, Coeff: 3, Constant: 1}
	// value = 10 means 3*x+1 <= 10 => x <= 3 (floor(9/3)=3).
	if got := e.InverseValueForMax(10); got != 3 {
		t.Errorf("InverseValueForMax(10) = %d, want 3", got)
	}
}
