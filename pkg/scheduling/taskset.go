package scheduling

import "sort"

// TaskSetEntry is one member of a TaskSet: the task id plus the start_min
// and size_min snapshotted when it was added. Kept sorted by StartMin.
type TaskSetEntry struct {
	TaskID   int
	StartMin int
	SizeMin  int
}

// TaskSet computes the earliest completion time of a set of tasks packed
// left (no overlap) starting no earlier than their start-min, with
// critical-index memoisation (optimizedRestart) so repeated calls after an
// incremental AddEntry amortise.
type TaskSet struct {
	entries         []TaskSetEntry
	optimizedRestart int
	criticalIndex    int
}

// NewTaskSet creates an empty task set with capacity for n entries.
func NewTaskSet(n int) *TaskSet {
	return &TaskSet{entries: make([]TaskSetEntry, 0, n)}
}

// Clear empties the set.
func (ts *TaskSet) Clear() {
	ts.entries = ts.entries[:0]
	ts.optimizedRestart = 0
	ts.criticalIndex = 0
}

// Len returns the number of entries currently in the set.
func (ts *TaskSet) Len() int { return len(ts.entries) }

// AddEntry inserts e keeping entries sorted by StartMin; this is an
// insertion step, O(n) worst case but typically O(1) since entries usually
// arrive in roughly increasing start-min order.
func (ts *TaskSet) AddEntry(e TaskSetEntry) {
	idx := sort.Search(len(ts.entries), func(i int) bool {
		return ts.entries[i].StartMin > e.StartMin
	})
	ts.entries = append(ts.entries, TaskSetEntry{})
	copy(ts.entries[idx+1:], ts.entries[idx:])
	ts.entries[idx] = e
	if idx <= ts.optimizedRestart {
		ts.optimizedRestart = 0
	}
}

// AddShiftedStartMinEntry adds an entry using the task's shifted start-min
// rather than its raw start-min, which reasons about the minimum energy
// footprint even when start-min trails behind end-min - size-min.
func (ts *TaskSet) AddShiftedStartMinEntry(th *TaskHelper, t *Task) {
	ts.AddEntry(TaskSetEntry{TaskID: t.ID, StartMin: th.ShiftedStartMin(t), SizeMin: th.SizeMin(t)})
}

// ComputeEndMin computes the earliest completion time of the whole set,
// returning the value and the critical index: the suffix [criticalIndex, n)
// whose tasks actually determine the answer.
func (ts *TaskSet) ComputeEndMin() (endMin int, criticalIndex int) {
	return ts.computeEndMinIgnoring(-1)
}

// ComputeEndMinIgnoring computes the earliest completion time as if
// ignoreTaskID were not in the set at all.
func (ts *TaskSet) ComputeEndMinIgnoring(ignoreTaskID int) (endMin int, criticalIndex int) {
	return ts.computeEndMinIgnoring(ignoreTaskID)
}

func (ts *TaskSet) computeEndMinIgnoring(ignoreTaskID int) (int, int) {
	start := ts.optimizedRestart
	if start > len(ts.entries) {
		start = 0
	}
	endMin := 0
	critical := 0
	started := false
	for i := start; i < len(ts.entries); i++ {
		e := ts.entries[i]
		if e.TaskID == ignoreTaskID {
			continue
		}
		if !started || e.StartMin >= endMin {
			endMin = e.StartMin + e.SizeMin
			critical = i
			started = true
		} else {
			endMin += e.SizeMin
		}
	}
	if ignoreTaskID < 0 {
		ts.optimizedRestart = critical
		ts.criticalIndex = critical
	}
	return endMin, critical
}

// CriticalIndex returns the critical index memoised by the most recent
// ComputeEndMin call (not the ignoring variant, which never updates it).
func (ts *TaskSet) CriticalIndex() int { return ts.criticalIndex }

// Entries exposes the underlying sorted entries (read-only use expected).
func (ts *TaskSet) Entries() []TaskSetEntry { return ts.entries }
