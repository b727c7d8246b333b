// internal/sensor/validate.go
package sensor

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrInvalidRecognition is returned for empty recognition sites or sites
// containing symbols outside A, C, G, T.
var ErrInvalidRecognition = errors.New("invalid recognition sequence")

// Normalize removes spaces/quotes and uppercases bases.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// ParseRecognition normalizes raw and checks it is plain DNA.
func ParseRecognition(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidRecognition)
	}
	for i, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T':
		default:
			return "", fmt.Errorf("%w: base %q at %d; allowed: A C G T", ErrInvalidRecognition, r, i+1)
		}
	}
	return s, nil
}
