package predictor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fealden/internal/fold"
)

// fakeHybrid writes a hybrid-ss-min stand-in that folds nothing: it emits a
// single all-unpaired structure for the sequence file it is given.
const fakeHybrid = `#!/bin/sh
for last; do :; done
seq=$(cat "$last")
n=${#seq}
printf '%d\tdG = -1.25\t%s\n' "$n" "$last" > "$last.ct"
i=1
while [ "$i" -le "$n" ]; do
  b=$(printf '%s' "$seq" | cut -c"$i")
  down=$((i + 1))
  [ "$i" -eq "$n" ] && down=0
  printf '%d\t%s\t%d\t%d\t0\t%d\n' "$i" "$b" $((i - 1)) "$down" "$i" >> "$last.ct"
  i=$((i + 1))
done
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script predictor stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "hybrid-ss-min")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestHybridSSMin_Args(t *testing.T) {
	h := NewHybridSSMin("", "", nil)
	assert.Equal(t, []string{
		"-n", "DNA", "--tmin=25", "--tmax=25",
		"--sodium=0.15", "--magnesium=0.005", "--mfold=50,-1,100", "ACGT",
	}, h.Args("ACGT"))
	assert.Equal(t, DefaultCommand, h.command())
}

func TestHybridSSMin_Predict(t *testing.T) {
	work := t.TempDir()
	h := NewHybridSSMin(writeScript(t, fakeHybrid), work, nil)

	folds, err := h.Predict(context.Background(), "GCGATTA")
	require.NoError(t, err)
	require.Len(t, folds, 1)
	assert.InDelta(t, -1.25, folds[0].Energy, 1e-9)
	assert.Equal(t, "GCGATTA", folds[0].Bases())
	assert.Equal(t, ".......", fold.DotBracket(folds[0]))

	left, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, left, "scratch directories are removed")
}

func TestHybridSSMin_Failures(t *testing.T) {
	cases := map[string]string{
		"exit status": "#!/bin/sh\necho nope >&2\nexit 3\n",
		"no ct file":  "#!/bin/sh\nexit 0\n",
		"garbage ct":  "#!/bin/sh\nfor last; do :; done\necho 'what is this' > \"$last.ct\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewHybridSSMin(writeScript(t, body), t.TempDir(), nil)
			_, err := h.Predict(context.Background(), "ACGT")
			assert.ErrorIs(t, err, ErrPredictor)
		})
	}
}

func TestHybridSSMin_MissingBinary(t *testing.T) {
	h := NewHybridSSMin(filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir(), nil)
	_, err := h.Predict(context.Background(), "ACGT")
	assert.ErrorIs(t, err, ErrPredictor)
}

type countingPredictor struct {
	calls atomic.Int64
	err   error
}

func (c *countingPredictor) Predict(_ context.Context, seq string) ([]fold.Fold, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []fold.Fold{{Energy: -1, Nucleotides: make([]fold.Nucleotide, len(seq))}}, nil
}

func TestCached(t *testing.T) {
	next := &countingPredictor{}
	c := NewCached(next, time.Minute)

	for i := 0; i < 3; i++ {
		folds, err := c.Predict(context.Background(), "ACGT")
		require.NoError(t, err)
		require.Len(t, folds, 1)
	}
	assert.Equal(t, int64(1), next.calls.Load())
	assert.Equal(t, 1, c.Len())

	_, err := c.Predict(context.Background(), "TTTT")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.calls.Load())
}

func TestCached_DoesNotStoreFailures(t *testing.T) {
	boom := errors.New("boom")
	next := &countingPredictor{err: boom}
	c := NewCached(next, time.Minute)

	_, err := c.Predict(context.Background(), "ACGT")
	assert.ErrorIs(t, err, boom)
	_, err = c.Predict(context.Background(), "ACGT")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2), next.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestInstrumented(t *testing.T) {
	next := &countingPredictor{}
	folds, err := Instrumented{Next: next}.Predict(context.Background(), "ACGT")
	require.NoError(t, err)
	assert.Len(t, folds, 1)
	assert.Equal(t, int64(1), next.calls.Load())
}
