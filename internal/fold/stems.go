// internal/fold/stems.go
package fold

import "math"

// BulgeFraction bounds the gap, as a fraction of the sequence length, under
// which two neighbouring stems are read as one stem interrupted by a bulge.
const BulgeFraction = 0.2

// FindStems scans f 5'->3' and returns its stems, loops and tails.
//
// A paired position whose partner is one below the previous partner extends
// the open stem; any other paired position starts a new one. Unpaired runs
// between stems are loops, unpaired runs at either end are tails. A stem
// that is still open when the scan ends is the 3' arm of a stem recorded
// earlier and is not emitted again. Mirror images are dropped.
func FindStems(f Fold) Structure {
	var (
		st       Structure
		stems    []Stem
		inStem   bool
		inLoop   bool
		lhS, lhE int
		rhS, rhE int
		loop     Span
		prevPair int
	)

	closeStem := func() {
		stems = append(stems, Stem{Left: Span{lhS, lhE}, Right: Span{rhE, rhS}})
		inStem = false
	}
	openStem := func(n, pair int) {
		lhS, lhE = n, n
		rhS, rhE = pair, pair
		inStem = true
	}

	for i, nt := range f.Nucleotides {
		n := i + 1
		switch {
		case nt.Pair != 0 && !inStem:
			if inLoop {
				if loop.Start == 1 {
					st.Tails = append(st.Tails, loop)
				} else {
					st.Loops = append(st.Loops, loop)
				}
				inLoop = false
			}
			openStem(n, nt.Pair)
		case nt.Pair != 0 && nt.Pair == prevPair-1:
			lhE, rhE = n, nt.Pair
		case nt.Pair != 0:
			closeStem()
			openStem(n, nt.Pair)
		case inStem:
			closeStem()
			loop = Span{n, n}
			inLoop = true
		case inLoop:
			loop.End = n
		default:
			loop = Span{n, n}
			inLoop = true
		}
		prevPair = nt.Pair
	}
	if inLoop {
		st.Tails = append(st.Tails, loop)
	}

	for _, s := range stems {
		dup := false
		for _, seen := range st.Stems {
			if seen == s || seen == s.Mirror() {
				dup = true
				break
			}
		}
		if !dup {
			st.Stems = append(st.Stems, s)
		}
	}
	return st
}

// CombineStems folds right into left, merging each stem of right into the
// last stem of left when the gap between their 5' arms is shorter than
// BulgeFraction of seqLen and appending it otherwise. Both lists must be
// ordered by position. left must not be empty.
func CombineStems(left, right []Stem, seqLen int) []Stem {
	if len(left) == 0 {
		panic("fold: CombineStems called with no left stems")
	}
	maxBulge := float64(seqLen) * BulgeFraction
	out := make([]Stem, len(left), len(left)+len(right))
	copy(out, left)
	for _, r := range right {
		last := &out[len(out)-1]
		if math.Abs(float64(last.Left.End-r.Left.Start)) < maxBulge {
			last.Left.End = r.Left.End
			last.Right.Start = r.Right.Start
			continue
		}
		out = append(out, r)
	}
	return out
}
