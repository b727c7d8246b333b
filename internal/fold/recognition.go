// internal/fold/recognition.go
package fold

import "strings"

// CheckRecognitionStem returns how much of recognition a stem carries, as the
// fraction of recognition covered by the first window found in either arm,
// forward or reversed. Windows are tried start by start, longest first, so
// the result is the longest match at the earliest start offset.
func CheckRecognitionStem(lh, rh, recognition string) float64 {
	n := len(recognition)
	for start := 0; start < n; start++ {
		for end := n; end > start; end-- {
			w := recognition[start:end]
			rw := reverse(w)
			if strings.Contains(lh, w) || strings.Contains(lh, rw) ||
				strings.Contains(rh, w) || strings.Contains(rh, rw) {
				return float64(end-start) / float64(n)
			}
		}
	}
	return 0
}

func reverse(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[len(s)-1-i] = s[i]
	}
	return string(b)
}
