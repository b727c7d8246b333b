// internal/fold/fold.go
package fold

import (
	"fmt"
	"strings"
)

// Nucleotide is one position of a predicted fold. Pair is 0 when the
// position is unpaired, else the 1-based index of its partner.
type Nucleotide struct {
	Base       byte
	Pair       int
	Upstream   int
	Downstream int
}

// Fold is one predicted structure with its free energy.
type Fold struct {
	Energy      float64
	Nucleotides []Nucleotide
}

// Len is the number of positions in the fold.
func (f Fold) Len() int { return len(f.Nucleotides) }

// Bases returns the sequence the fold was predicted for.
func (f Fold) Bases() string {
	b := make([]byte, len(f.Nucleotides))
	for i, nt := range f.Nucleotides {
		b[i] = nt.Base
	}
	return string(b)
}

// Segment returns the bases covered by sp. An inverted or out-of-range span
// yields the overlapping part, possibly empty.
func (f Fold) Segment(sp Span) string {
	start, end := sp.Start, sp.End
	if start < 1 {
		start = 1
	}
	if end > len(f.Nucleotides) {
		end = len(f.Nucleotides)
	}
	if start > end {
		return ""
	}
	var b strings.Builder
	for _, nt := range f.Nucleotides[start-1 : end] {
		b.WriteByte(nt.Base)
	}
	return b.String()
}

// Span is an inclusive 1-based range of positions.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

func (s Span) Contains(pos int) bool { return s.Start <= pos && pos <= s.End }

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Start, s.End) }

// Stem is a run of base pairs; Left is the 5' arm and Right the 3' arm.
type Stem struct {
	Left  Span
	Right Span
}

// Mirror swaps the arms.
func (s Stem) Mirror() Stem { return Stem{Left: s.Right, Right: s.Left} }

func (s Stem) String() string { return s.Left.String() + "/" + s.Right.String() }

// Structure is everything FindStems extracts from a fold.
type Structure struct {
	Stems []Stem
	Loops []Span
	Tails []Span
}
