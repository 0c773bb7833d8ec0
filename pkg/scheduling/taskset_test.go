package scheduling

import "testing"

func TestTaskSetComputeEndMinPacksBackToBack(t *testing.T) {
	ts := NewTaskSet(3)
	ts.AddEntry(TaskSetEntry{TaskID: 0, StartMin: 0, SizeMin: 3})
	ts.AddEntry(TaskSetEntry{TaskID: 1, StartMin: 0, SizeMin: 2})
	ts.AddEntry(TaskSetEntry{TaskID: 2, StartMin: 0, SizeMin: 4})

	endMin, critical := ts.ComputeEndMin()
	if endMin != 9 {
		t.Errorf("ComputeEndMin() endMin = %d, want 9", endMin)
	}
	if critical != 0 {
		t.Errorf("ComputeEndMin() critical = %d, want 0", critical)
	}
}

func TestTaskSetComputeEndMinRestartsAfterGap(t *testing.T) {
	ts := NewTaskSet(2)
	ts.AddEntry(TaskSetEntry{TaskID: 0, StartMin: 0, SizeMin: 2})
	ts.AddEntry(TaskSetEntry{TaskID: 1, StartMin: 10, SizeMin: 3})

	endMin, critical := ts.ComputeEndMin()
	if endMin != 13 {
		t.Errorf("ComputeEndMin() endMin = %d, want 13", endMin)
	}
	if critical != 1 {
		t.Errorf("ComputeEndMin() critical = %d, want 1", critical)
	}
}

func TestTaskSetComputeEndMinIgnoring(t *testing.T) {
	ts := NewTaskSet(2)
	ts.AddEntry(TaskSetEntry{TaskID: 0, StartMin: 0, SizeMin: 2})
	ts.AddEntry(TaskSetEntry{TaskID: 1, StartMin: 10, SizeMin: 3})

	endMin, critical := ts.ComputeEndMinIgnoring(0)
	if endMin != 13 {
		t.Errorf("ComputeEndMinIgnoring(0) endMin = %d, want 13", endMin)
	}
	if critical != 1 {
		t.Errorf("ComputeEndMinIgnoring(0) critical = %d, want 1", critical)
	}
}

func TestTaskSetClear(t *testing.T) {
	ts := NewTaskSet(1)
	ts.AddEntry(TaskSetEntry{TaskID: 0, StartMin: 0, SizeMin: 5})
	ts.Clear()
	if ts.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", ts.Len())
	}
	endMin, _ := ts.ComputeEndMin()
	if endMin != 0 {
		t.Errorf("ComputeEndMin() on empty set = %d, want 0", endMin)
	}
}
