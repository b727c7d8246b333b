// internal/fold/dotbracket.go
package fold

// DotBracket renders the pairings of f: '(' opens a pair, ')' closes it and
// '.' is unpaired.
func DotBracket(f Fold) string {
	b := make([]byte, len(f.Nucleotides))
	for i, nt := range f.Nucleotides {
		switch {
		case nt.Pair == 0:
			b[i] = '.'
		case nt.Pair > i+1:
			b[i] = '('
		default:
			b[i] = ')'
		}
	}
	return string(b)
}
