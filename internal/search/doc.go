// Package search runs the time-boxed backtracking search for beacon stems.
//
// One walker per root seed explores its own subtree depth-first and reports
// Depth, Pruned and Solution events to a single coordinator, which validates
// solutions and stops the walkers once enough candidates are accepted or the
// time budget is spent. Walkers never share a Sequence; the only shared state
// is the stop flag and the event channel.
package search
