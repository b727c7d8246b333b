// internal/sensor/complement.go
package sensor

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	complement['A'] = 'T'
	complement['T'] = 'A'
	complement['C'] = 'G'
	complement['G'] = 'C'
}

// Complement maps G<->C and A<->T. Any other byte is passed through unchanged.
func Complement(seq string) string {
	if seq == "" {
		return ""
	}
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = complement[seq[i]]
	}
	return string(out)
}

// ReverseComplement returns the complement of seq read 3'->5'.
func ReverseComplement(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[seq[n-1-i]]
	}
	return string(out)
}

// Reverse returns seq in reverse order without complementing.
func Reverse(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = seq[n-1-i]
	}
	return string(out)
}
