package scheduling

import "testing"

func TestBitSetDomainBasic(t *testing.T) {
	d := NewBitSetDomain(10)
	if d.Count() != 10 {
		t.Fatalf("Count() = %d, want 10", d.Count())
	}
	if d.Min() != 1 || d.Max() != 10 {
		t.Errorf("Min()/Max() = %d/%d, want 1/10", d.Min(), d.Max())
	}
}

func TestBitSetDomainRemoveIsImmutable(t *testing.T) {
	d := NewBitSetDomain(5)
	d2 := d.Remove(3)
	if !d.Has(3) {
		t.Errorf("original domain mutated by Remove")
	}
	if d2.Has(3) {
		t.Errorf("Remove(3) result still has 3")
	}
	if d2.Count() != 4 {
		t.Errorf("Remove(3) Count() = %d, want 4", d2.Count())
	}
}

func TestBitSetDomainRemoveBelowAbove(t *testing.T) {
	d := NewBitSetDomain(10)
	lo := d.RemoveBelow(5)
	if lo.Min() != 5 {
		t.Errorf("RemoveBelow(5).Min() = %d, want 5", lo.Min())
	}
	hi := d.RemoveAbove(5)
	if hi.Max() != 5 {
		t.Errorf("RemoveAbove(5).Max() = %d, want 5", hi.Max())
	}
}

func TestBitSetDomainIntersectUnion(t *testing.T) {
	a := NewBitSetDomainFromValues(10, []int{1, 2, 3, 4})
	b := NewBitSetDomainFromValues(10, []int{3, 4, 5, 6})
	inter := a.Intersect(b)
	if inter.Count() != 2 || !inter.Has(3) || !inter.Has(4) {
		t.Errorf("Intersect() = %v, want {3,4}", inter)
	}
	union := a.Union(b)
	if union.Count() != 6 {
		t.Errorf("Union() Count() = %d, want 6", union.Count())
	}
}

func TestBitSetDomainSingleton(t *testing.T) {
	d := NewBitSetDomainFromValues(10, []int{7})
	if !d.IsSingleton() {
		t.Fatalf("expected singleton")
	}
	if got := d.SingletonValue(); got != 7 {
		t.Errorf("SingletonValue() = %d, want 7", got)
	}
}

func TestBitSetDomainStringCompressesRange(t *testing.T) {
	d := NewBitSetDomain(5)
	if got, want := d.String(), "{1..5}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
