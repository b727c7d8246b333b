package fold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFolds = `8	dG = -1.5	GCGAACGC
1	G	0	2	8	1
2	C	1	3	7	2
3	G	2	4	6	3
4	A	3	5	0	4
5	A	4	6	0	5
6	C	5	7	3	6
7	G	6	8	2	7
8	C	7	0	1	8
8	dG = -0.4	GCGAACGC
1	G	0	2	0	1
2	C	1	3	0	2
3	G	2	4	0	3
4	A	3	5	0	4
5	A	4	6	0	5
6	C	5	7	0	6
7	G	6	8	0	7
8	C	7	0	0	8
`

func TestParseCT(t *testing.T) {
	folds, err := ParseCT(strings.NewReader(twoFolds))
	require.NoError(t, err)
	require.Len(t, folds, 2)

	assert.InDelta(t, -1.5, folds[0].Energy, 1e-9)
	assert.Equal(t, "GCGAACGC", folds[0].Bases())
	assert.Equal(t, "(((..)))", DotBracket(folds[0]))
	assert.Equal(t, Nucleotide{Base: 'G', Pair: 8, Upstream: 0, Downstream: 2}, folds[0].Nucleotides[0])

	assert.InDelta(t, -0.4, folds[1].Energy, 1e-9)
	assert.Equal(t, "........", DotBracket(folds[1]))
}

func TestParseCT_Empty(t *testing.T) {
	folds, err := ParseCT(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, folds)
}

func TestParseCT_Malformed(t *testing.T) {
	cases := map[string]string{
		"no header":    "1\tG\t0\t2\t0\t1\n",
		"short fold":   "3\tdG = -1.0\tx\n1\tG\t0\t2\t0\t1\n",
		"bad energy":   "1\tdG = abc\tx\n1\tG\t0\t0\t0\t1\n",
		"bad partner":  "2\tdG = -1\tx\n1\tG\t0\t2\t9\t1\n2\tC\t1\t0\t0\t2\n",
		"out of order": "2\tdG = -1\tx\n2\tG\t0\t2\t0\t1\n1\tC\t1\t0\t0\t2\n",
	}
	for name, in := range cases {
		_, err := ParseCT(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMalformedCT, name)
	}
}
