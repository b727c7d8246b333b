// internal/fold/ct.go
package fold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedCT is wrapped by every ParseCT failure.
var ErrMalformedCT = errors.New("malformed .ct data")

// ParseCT reads every fold of a connect (.ct) file as written by UNAFold's
// hybrid-ss-min with --mfold. A fold starts with a header such as
//
//	44	dG = -11.989	name
//
// followed by one line per nucleotide whose first five columns are the
// index, the base, the upstream and downstream neighbours and the partner.
// Empty input yields no folds and no error.
func ParseCT(r io.Reader) ([]Fold, error) {
	var (
		folds  []Fold
		cur    *Fold
		want   int
		lineNo int
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		if len(cur.Nucleotides) != want {
			return fmt.Errorf("%w: fold %d has %d nucleotides, header says %d",
				ErrMalformedCT, len(folds)+1, len(cur.Nucleotides), want)
		}
		folds = append(folds, *cur)
		cur = nil
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if n, energy, ok, err := parseHeader(fields); ok {
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCT, lineNo, err)
			}
			if err := finish(); err != nil {
				return nil, err
			}
			cur = &Fold{Energy: energy, Nucleotides: make([]Nucleotide, 0, n)}
			want = n
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: line %d: nucleotide before header", ErrMalformedCT, lineNo)
		}
		nt, idx, err := parseNucleotide(fields, want)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCT, lineNo, err)
		}
		if idx != len(cur.Nucleotides)+1 {
			return nil, fmt.Errorf("%w: line %d: index %d out of order", ErrMalformedCT, lineNo, idx)
		}
		cur.Nucleotides = append(cur.Nucleotides, nt)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read .ct: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return folds, nil
}

// parseHeader recognises "N dG = E ..." and the older "N ENERGY = E ..." form.
func parseHeader(fields []string) (n int, energy float64, ok bool, err error) {
	if len(fields) < 4 || fields[2] != "=" || (fields[1] != "dG" && fields[1] != "ENERGY") {
		return 0, 0, false, nil
	}
	if n, err = strconv.Atoi(fields[0]); err != nil || n < 0 {
		return 0, 0, true, fmt.Errorf("bad length %q", fields[0])
	}
	if energy, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return 0, 0, true, fmt.Errorf("bad energy %q", fields[3])
	}
	return n, energy, true, nil
}

func parseNucleotide(fields []string, n int) (Nucleotide, int, error) {
	if len(fields) < 5 {
		return Nucleotide{}, 0, fmt.Errorf("want at least 5 columns, got %d", len(fields))
	}
	if len(fields[1]) != 1 {
		return Nucleotide{}, 0, fmt.Errorf("bad base %q", fields[1])
	}
	var ints [4]int
	for i, col := range [...]int{0, 2, 3, 4} {
		v, err := strconv.Atoi(fields[col])
		if err != nil {
			return Nucleotide{}, 0, fmt.Errorf("column %d: %q is not an integer", col+1, fields[col])
		}
		if v < 0 || v > n+1 {
			return Nucleotide{}, 0, fmt.Errorf("column %d: %d out of range", col+1, v)
		}
		ints[i] = v
	}
	if ints[3] > n {
		return Nucleotide{}, 0, fmt.Errorf("partner %d beyond length %d", ints[3], n)
	}
	return Nucleotide{
		Base:       strings.ToUpper(fields[1])[0],
		Upstream:   ints[1],
		Downstream: ints[2],
		Pair:       ints[3],
	}, ints[0], nil
}
