package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fealden/internal/fold"
	"fealden/internal/scoring"
	"fealden/internal/search/searchtest"
	"fealden/internal/sensor"
)

func linear(bases string, energy float64, pairs [][2]int) fold.Fold {
	return searchtest.Linear(bases, energy, pairs)
}

func stemLengths(rendered, recog string) (s1, s2 int) {
	return searchtest.StemLengths(rendered, recog)
}

func designed(recog string) PredictorFunc { return searchtest.Designed(recog) }

func unpaired(delay time.Duration, calls *atomic.Int64) PredictorFunc {
	if calls == nil {
		return searchtest.Unpaired(delay, nil)
	}
	return searchtest.Unpaired(delay, calls)
}

func TestPromising(t *testing.T) {
	s := sensor.New("ATTA")
	assert.True(t, Promising(s))
	s.SetStem1("TCCC")
	s.SetStem2("CC")
	assert.False(t, Promising(s))
}

// Stems only ever differ by one base, so a rendered candidate determines
// both stem lengths.
func TestStemLengthsFollowGrow(t *testing.T) {
	s := sensor.New("GATTACA")
	for i, b := range []byte("TCAGGTCA") {
		s.Grow(b)
		s1, s2 := stemLengths(s.String(), "GATTACA")
		assert.Equal(t, len(s.Stem1()), s1, "after %d grows", i+1)
		assert.Equal(t, len(s.Stem2()), s2, "after %d grows", i+1)
	}
}

func TestDesignedPredictorIsAccepted(t *testing.T) {
	s := sensor.New("ATTA")
	s.SetStem1("TCC")
	s.SetStem2("CC")
	folds, err := designed("ATTA").Predict(context.Background(), s.String())
	require.NoError(t, err)
	scores, cl := scoring.Score(s, folds)
	assert.Equal(t, fold.BindingOn, cl[0].Type)
	assert.Equal(t, fold.NonbindingOff, cl[1].Type)
	assert.True(t, scoring.Validate(s, scores, cl, scoring.DefaultThresholds()))
}

func TestSearch_FindsSolution(t *testing.T) {
	got, st, err := Search(context.Background(), "ATTA", Options{MaxTime: 5 * time.Second}, designed("ATTA"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, st.Accepted)
	assert.Less(t, st.Elapsed, 5*time.Second)

	c := got[0]
	assert.Equal(t, "ATTA", c.Sequence.Recognition())
	assert.True(t, strings.HasPrefix(c.Sequence.Stem1(), "T") || strings.HasPrefix(c.Sequence.Stem1(), "G"))
	assert.Len(t, c.Folds, 2)
}

func TestSearch_StopsAtMaxSolutions(t *testing.T) {
	got, st, err := Search(context.Background(), "ATTA",
		Options{MaxTime: 5 * time.Second, MaxSolutions: 3}, designed("ATTA"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.GreaterOrEqual(t, st.Evaluated, 3)

	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c.Sequence.String()], "duplicate candidate %s", c.Sequence)
		seen[c.Sequence.String()] = true
	}
}

func TestSearch_StubEnergyTerminatesWithinBudget(t *testing.T) {
	// One unpaired fold per sequence with the stem energy negated.
	p := PredictorFunc(func(_ context.Context, rendered string) ([]fold.Fold, error) {
		s1, s2 := stemLengths(rendered, "ATTA")
		seq := sensor.New("ATTA")
		seq.SetStem1(rendered[:s1])
		seq.SetStem2(rendered[2*s1+5 : 2*s1+5+s2])
		return []fold.Fold{linear(rendered, -seq.StemEnergy(), nil)}, nil
	})
	start := time.Now()
	got, _, err := Search(context.Background(), "ATTA", Options{MaxTime: 2 * time.Second, MaxSolutions: 1}, p)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 1)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSearch_TimeoutJoinsWorkers(t *testing.T) {
	var calls atomic.Int64
	start := time.Now()
	got, st, err := Search(context.Background(), "GATTACA",
		Options{MaxTime: 50 * time.Millisecond}, unpaired(5*time.Millisecond, &calls))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), time.Second)
	assert.Greater(t, st.Visited, 0)

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no predictor calls after Search returned")
}

func TestSearch_AllWorkersFail(t *testing.T) {
	boom := errors.New("predictor exploded")
	p := PredictorFunc(func(context.Context, string) ([]fold.Fold, error) { return nil, boom })
	got, st, err := Search(context.Background(), "ATTA", Options{MaxTime: time.Second}, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllWorkersFailed)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
	assert.Equal(t, 2, st.WorkerErrors)
}

func TestSearch_OneWorkerFailureIsIsolated(t *testing.T) {
	boom := errors.New("no fold for G")
	base := unpaired(0, nil)
	p := PredictorFunc(func(ctx context.Context, rendered string) ([]fold.Fold, error) {
		if rendered[0] == 'G' {
			return nil, boom
		}
		return base(ctx, rendered)
	})
	got, st, err := Search(context.Background(), "ATTA", Options{MaxTime: 5 * time.Second}, p)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, st.WorkerErrors)
	assert.Greater(t, st.Evaluated, 0)
}

func TestSearch_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, _, err := Search(ctx, "GATTACA", Options{MaxTime: time.Minute}, unpaired(5*time.Millisecond, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_EventOrderPerWorker(t *testing.T) {
	var (
		mu     sync.Mutex
		depths = map[int]map[int]int{}
		firsts = map[int]Event{}
	)
	observe := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		switch e := ev.(type) {
		case Depth:
			if _, ok := firsts[e.Worker]; !ok {
				firsts[e.Worker] = e
			}
			if depths[e.Worker] == nil {
				depths[e.Worker] = map[int]int{}
			}
			depths[e.Worker][e.Depth]++
		case Pruned:
			assert.Positive(t, depths[e.Worker][e.Depth], "pruned before depth")
		case Solution:
			assert.Positive(t, depths[e.Worker][e.Depth], "solution before depth")
		}
	}
	_, st, err := Search(context.Background(), "ATTA",
		Options{MaxTime: 5 * time.Second, Observer: observe}, unpaired(0, nil))
	require.NoError(t, err)
	assert.Equal(t, Depth{Worker: 0, Depth: 0}, firsts[0])
	assert.Equal(t, Depth{Worker: 1, Depth: 0}, firsts[1])
	assert.Equal(t, st.Visited, st.Evaluated, "every visited node is evaluated when nothing stops the walk")
	assert.Greater(t, st.Pruned, 0)
}
