package scheduling

import (
	"container/heap"
	"fmt"

	"github.com/gitrdm/cpsched/internal/telemetry"
)

// RegistrationID identifies a propagator registered with a Watcher.
type RegistrationID int

// Propagator is the contract every filtering algorithm in this package
// implements: Propagate runs the algorithm to completion once and reports
// whether it pushed any bound, or an error
// (always a *Conflict) if it detected infeasibility; RegisterWith tells the
// watcher which priority bucket it belongs in and returns its id.
type Propagator interface {
	Propagate() (pushed bool, err error)
	RegisterWith(w *Watcher) RegistrationID
}

// pqEntry is one (priority, registration order) pair in the watcher's
// dispatch heap. Lower priority runs first; ties break by registration
// order, giving the "propagators at the same priority run in registration
// order" guarantee.
type pqEntry struct {
	priority int
	regOrder int
	id       RegistrationID
}

type pqHeap []pqEntry

func (h pqHeap) Len() int { return len(h) }
func (h pqHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].regOrder < h[j].regOrder
}
func (h pqHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *pqHeap) Push(x interface{}) { *h = append(*h, x.(pqEntry)) }
func (h *pqHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Watcher maintains a container/heap-ordered priority queue of registered
// propagators and dispatches them when the bounds they watch change.
type Watcher struct {
	propagators      map[RegistrationID]Propagator
	priority         map[RegistrationID]int
	regOrder         map[RegistrationID]int
	mayNotFixedPoint map[RegistrationID]bool
	nextID           RegistrationID
	nextOrder        int
	rec              *telemetry.Recorder
}

// SetRecorder attaches a telemetry recorder; every subsequent
// RunToFixedPoint call logs each propagator's outcome through it. A nil
// recorder (the default) disables logging entirely at no cost, since every
// Recorder method is a documented no-op on nil.
func (w *Watcher) SetRecorder(r *telemetry.Recorder) { w.rec = r }

// NewWatcher creates an empty watcher.
func NewWatcher() *Watcher {
	return &Watcher{
		propagators:      make(map[RegistrationID]Propagator),
		priority:         make(map[RegistrationID]int),
		regOrder:         make(map[RegistrationID]int),
		mayNotFixedPoint: make(map[RegistrationID]bool),
	}
}

// Register allocates a new RegistrationID with the default priority (0).
func (w *Watcher) Register() RegistrationID {
	id := w.nextID
	w.nextID++
	w.priority[id] = 0
	w.regOrder[id] = w.nextOrder
	w.nextOrder++
	return id
}

func (w *Watcher) bind(id RegistrationID, p Propagator) {
	w.propagators[id] = p
}

// WatchLowerBound records that id should be woken when varID's lower bound
// changes. In this single-threaded engine all propagators are re-run every
// round regardless (see RunToFixedPoint), so this call exists to satisfy
// the propagator-registration contract and as a hook for a future
// fine-grained dispatch; it is a documented simplification (see DESIGN.md).
func (w *Watcher) WatchLowerBound(varID int, id RegistrationID) {}

// WatchUpperBound is the upper-bound counterpart of WatchLowerBound.
func (w *Watcher) WatchUpperBound(varID int, id RegistrationID) {}

// WatchLiteral records interest in a presence/Boolean literal.
func (w *Watcher) WatchLiteral(varID int, id RegistrationID) {}

// WatchAllTasks records interest in every task a propagator was built over.
func (w *Watcher) WatchAllTasks(taskIDs []int, id RegistrationID) {}

// SetPriority assigns id's dispatch priority; lower values run first.
func (w *Watcher) SetPriority(id RegistrationID, p int) {
	w.priority[id] = p
}

// NotifyMayNotReachFixedPoint flags a propagator (time-tabling, typically)
// that may need more than one call per round to converge.
func (w *Watcher) NotifyMayNotReachFixedPoint(id RegistrationID) {
	w.mayNotFixedPoint[id] = true
}

// RunToFixedPoint runs every registered propagator, in priority order, in
// rounds, until a round produces no pushes, or a conflict is reported.
func (w *Watcher) RunToFixedPoint() error {
	for {
		pending := &pqHeap{}
		heap.Init(pending)
		for id := range w.propagators {
			heap.Push(pending, pqEntry{priority: w.priority[id], regOrder: w.regOrder[id], id: id})
		}

		anyPushed := false
		ran := 0
		for pending.Len() > 0 {
			entry := heap.Pop(pending).(pqEntry)
			p := w.propagators[entry.id]
			pushed, err := p.Propagate()
			ran++
			w.rec.PropagatorRun(fmt.Sprintf("%T", p), pushed, err)
			if err != nil {
				return err
			}
			if pushed {
				anyPushed = true
			}
		}

		w.rec.FixedPointRound(ran, anyPushed)
		if !anyPushed {
			return nil
		}
	}
}
