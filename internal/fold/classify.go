// internal/fold/classify.go
package fold

const (
	// HalfMatch is the recognition coverage at or below which no stem is
	// considered to carry the recognition site.
	HalfMatch = 0.5
	// OffDistanceLimit is the fluorophore-quencher distance below which a
	// two-stem fold is dark.
	OffDistanceLimit = 4
	// PreMergeWindow bounds both the start of the first stem and its gap to
	// the second when two stems are read as one stack before matching.
	PreMergeWindow = 5
)

// Classify decides the binding category of f for a candidate whose
// recognition site is recognition and whose quencher sits at quencher.
func Classify(f Fold, recognition string, quencher int) Type {
	n := f.Len()
	stems := FindStems(f).Stems

	if len(stems) == 2 && stems[0].Left.Start < PreMergeWindow &&
		abs(stems[0].Left.End-stems[1].Left.Start) < PreMergeWindow {
		stems = CombineStems(stems[:1], stems[1:], n)
	}

	best := 0.0
	for _, s := range stems {
		if m := CheckRecognitionStem(f.Segment(s.Left), f.Segment(s.Right), recognition); m > best {
			best = m
		}
	}

	switch {
	case best <= HalfMatch:
		if len(stems) > 2 {
			stems = CombineStems(stems[:1], stems[1:], n)
		}
		if len(stems) == 2 {
			d := QuencherDistance(stems[0], stems[1], quencher) + FluorophoreDistance(stems[0])
			if d < OffDistanceLimit {
				return NonbindingOff
			}
		}
		return NonbindingUnknown
	case best == 1:
		if len(CombineStems(stems[:1], stems[1:], n)) == 1 {
			return BindingOn
		}
		return BindingUnknown
	default:
		return BindingUnknown
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
