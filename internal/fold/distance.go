// internal/fold/distance.go
package fold

// HairpinSentinel is returned by QuencherDistance when the quencher sits in
// the hairpin loop of stem1.
const HairpinSentinel = 100

// FluorophoreDistance is the number of nucleotides between the 5' end, where
// the fluorophore sits, and the base of stem1.
func FluorophoreDistance(stem1 Stem) int {
	if stem1.Left.Start == 1 {
		return 0
	}
	return stem1.Left.Start - 2
}

// QuencherDistance is the distance from the quencher at position q to the
// base of stem1 in a two-stem fold. Ranges are inclusive and checked in
// order; positions on stem2 add the loop between the stems.
func QuencherDistance(stem1, stem2 Stem, q int) int {
	interStem := stem2.Left.Start - stem1.Right.End
	switch {
	case q < stem1.Left.Start:
		return q - stem1.Left.Start
	case stem1.Left.Contains(q):
		return q - stem1.Left.Start
	case stem1.Right.Contains(q):
		return stem1.Right.End - q
	case stem2.Left.Contains(q):
		return q - stem2.Left.Start + interStem
	case stem2.Right.Contains(q):
		return stem2.Right.End - q + interStem
	case stem1.Right.End < q && q < stem2.Left.Start:
		return q - stem1.Right.End
	default:
		return HairpinSentinel
	}
}

// LinearPath returns the shortest walk from one position to another along
// backbone and base-pair links, endpoints included.
func LinearPath(f Fold, from, to int) ([]int, bool) {
	n := len(f.Nucleotides)
	if from < 1 || from > n || to < 1 || to > n {
		return nil, false
	}
	prev := make([]int, n+1)
	prev[from] = from
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		nt := f.Nucleotides[cur-1]
		for _, next := range [...]int{nt.Pair, nt.Upstream, nt.Downstream} {
			if next < 1 || next > n || prev[next] != 0 {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if prev[to] == 0 {
		return nil, false
	}
	var path []int
	for at := to; ; at = prev[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
