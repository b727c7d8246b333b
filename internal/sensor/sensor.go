// internal/sensor/sensor.go
package sensor

import "strings"

// Quencher is the fixed base carrying the quencher between the two halves.
const Quencher = "T"

// Sequence is one beacon candidate. It is a value type: copying a Sequence
// gives an independent branch, so Grown never disturbs its receiver.
//
// Layout (5' -> 3'):
//
//	stem1 recognition rc(stem1) quencher stem2 rc(recognition) rc(stem2)
type Sequence struct {
	recognition string
	stem1       string
	stem2       string
}

// New returns a Sequence with empty stems.
func New(recognition string) Sequence {
	return Sequence{recognition: recognition}
}

func (s Sequence) Recognition() string { return s.recognition }
func (s Sequence) Stem1() string       { return s.stem1 }
func (s Sequence) Stem2() string       { return s.stem2 }

// Stem1R and Stem2R are always derived from their stems, never stored.
func (s Sequence) Stem1R() string { return ReverseComplement(s.stem1) }
func (s Sequence) Stem2R() string { return ReverseComplement(s.stem2) }

func (s *Sequence) SetStem1(seq string) { s.stem1 = seq }
func (s *Sequence) SetStem2(seq string) { s.stem2 = seq }

// Grow appends b to the shorter stem; stem1 wins ties.
func (s *Sequence) Grow(b byte) {
	if len(s.stem1) > len(s.stem2) {
		s.stem2 += string(b)
		return
	}
	s.stem1 += string(b)
}

// Grown returns a copy of s grown by b.
func (s Sequence) Grown(b byte) Sequence {
	s.Grow(b)
	return s
}

// Depth is the number of symbols grown so far.
func (s Sequence) Depth() int { return len(s.stem1) + len(s.stem2) }

// QuencherIndex is the 1-based position of the quencher in String().
func (s Sequence) QuencherIndex() int {
	return len(s.stem1) + len(s.recognition) + len(s.stem2) + 1
}

// RecognitionEnergy estimates the free energy of the bound, one-stem form.
func (s Sequence) RecognitionEnergy() float64 {
	return FreeEnergy(s.recognition)
}

// StemEnergy estimates the free energy of the unbound, two-stem form.
func (s Sequence) StemEnergy() float64 {
	return FreeEnergy(s.stem1) + FreeEnergy(s.stem2)
}

// FreeEnergy is the per-symbol heuristic: terminal A/T 0.1, terminal G/C 0.5,
// interior A/T 0.6, interior G/C 1.0, summed and negated.
func FreeEnergy(seq string) float64 {
	var e float64
	last := len(seq) - 1
	for i := 0; i < len(seq); i++ {
		terminal := i == 0 || i == last
		switch seq[i] {
		case 'A', 'T':
			if terminal {
				e += 0.1
			} else {
				e += 0.6
			}
		case 'G', 'C':
			if terminal {
				e += 0.5
			} else {
				e += 1.0
			}
		}
	}
	return -e
}

// String renders the full linear sequence. It is the predictor input and the
// identity of the candidate.
func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(2*len(s.recognition) + 2*len(s.stem1) + 2*len(s.stem2) + 1)
	b.WriteString(s.stem1)
	b.WriteString(s.recognition)
	b.WriteString(s.Stem1R())
	b.WriteString(Quencher)
	b.WriteString(s.stem2)
	b.WriteString(ReverseComplement(s.recognition))
	b.WriteString(s.Stem2R())
	return b.String()
}

// Pretty is String with the segments separated by spaces.
func (s Sequence) Pretty() string {
	return strings.Join([]string{
		s.stem1, s.recognition, s.Stem1R(), Quencher,
		s.stem2, ReverseComplement(s.recognition), s.Stem2R(),
	}, " ")
}
