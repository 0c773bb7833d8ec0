package scheduling

// Glossary
//
// Task: interval variable with (start, size, end, presence) in a
// scheduling problem.
//
// Mandatory part: the time interval [start_max, end_min) of a present
// task; always occupied no matter how the task is eventually scheduled.
//
// Energy: for a task, demand * size; for a cumulative window, the
// minimum-possible resource-time integral consumed.
//
// Envelope (theta): upper bound on the earliest time a subset of tasks can
// all finish, given their start-mins and sizes.
//
// Lambda: the envelope allowing exactly one optional event to swap to its
// max energy.
//
// Gray task: in edge-finding, a task currently candidate for being pushed
// after the rest of theta.
//
// Subwindow: a maximal time interval such that no task's shifted-start-min
// equals the accumulated end-min-with-one-optional of the prior window;
// propagation is independent across subwindows. This engine does not split
// subwindows (see DESIGN.md); every propagator instead treats its whole
// task set as one window, which is sound but does strictly more work.
//
// Critical block / critical index: the suffix of the sorted-by-start-min
// TaskSet that determines the current end-min; tasks before the critical
// index contribute no reason.
//
// Profile (time-tabling): piecewise-constant function of time giving
// cumulative mandatory-part consumption.
//
// DFF (Dual-Feasible Function): a function f: [0,C] -> [0,L] with f(0)=0,
// f(C)=L, and the property that feasibility of a packing is preserved
// after applying f to every demand; used to strengthen energy-based
// reasoning.
//
// OPP (Orthogonal Packing Problem): decision problem "can a set of
// axis-aligned rectangles fit inside a bin with no overlap and no
// rotation?"; only the infeasibility side is needed here.
