// internal/search/event.go
package search

import (
	"fealden/internal/scoring"
	"fealden/internal/sensor"
)

// Event is one report from a walker. The set of events is closed: Depth,
// Pruned and Solution.
type Event interface {
	event()
}

// Depth is reported when a walker enters a node.
type Depth struct {
	Worker int
	Depth  int
}

// Pruned is reported when a node is not promising and gets no children.
type Pruned struct {
	Worker int
	Depth  int
}

// Solution carries a scored candidate for every evaluated node.
type Solution struct {
	Worker    int
	Depth     int
	Candidate Candidate
}

func (Depth) event()    {}
func (Pruned) event()   {}
func (Solution) event() {}

// Candidate is a scored sequence.
type Candidate struct {
	Sequence sensor.Sequence
	Scores   scoring.Scores
	Folds    []scoring.Classified
}
