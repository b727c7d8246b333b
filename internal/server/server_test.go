package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fealden/internal/fold"
	"fealden/internal/queue"
	"fealden/internal/scoring"
	"fealden/internal/search"
	"fealden/internal/search/searchtest"
	"fealden/internal/writers"
	"fealden/pkg/api"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	queue *queue.DirectoryQueue
	store writers.SolutionStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	qdir := filepath.Join(root, "queue")
	require.NoError(t, os.Mkdir(qdir, 0o755))
	q, err := queue.New(qdir, 5*time.Millisecond)
	require.NoError(t, err)
	return fixture{queue: q, store: writers.SolutionStore{Root: filepath.Join(root, "solutions")}}
}

func (f fixture) submit(t *testing.T, recog string, budget time.Duration) api.RequestV1 {
	t.Helper()
	dir, err := f.store.Prepare(recog)
	require.NoError(t, err)
	req := api.NewRequest(recog, dir, budget)
	_, err = f.queue.Put(req)
	require.NoError(t, err)
	return req
}

// waitResult polls until recognition has a finished result.
func (f fixture) waitResult(t *testing.T, recog string) api.ResultV1 {
	t.Helper()
	var r api.ResultV1
	require.Eventually(t, func() bool {
		var err error
		r, err = f.store.Lookup(recog)
		return err == nil && r.Status != api.StatusPending
	}, 10*time.Second, 10*time.Millisecond)
	return r
}

func run(t *testing.T, s *Server) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-errc:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
}

func TestServer_WritesSolution(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "ATTA", 5*time.Second)

	s := New(f.queue, search.PredictorFunc(searchtest.Designed("ATTA")), Config{Workers: 2, Gain: true}, nil)
	stop := run(t, s)

	r := f.waitResult(t, "ATTA")
	assert.ErrorIs(t, stop(), context.Canceled)

	assert.Equal(t, api.StatusFound, r.Status)
	assert.Equal(t, req.ID, r.RequestID)
	require.Len(t, r.Solutions, 1)
	assert.Equal(t, "ATTA", r.Solutions[0].Recognition)
	assert.NotEmpty(t, r.Solutions[0].Gain)
	assert.True(t, writers.Solved(f.store.Dir("ATTA")))
}

func TestServer_TimeoutWritesFailure(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "GATTACA", 50*time.Millisecond)

	s := New(f.queue, search.PredictorFunc(searchtest.Unpaired(time.Millisecond, nil)), Config{Workers: 1}, nil)
	stop := run(t, s)
	r := f.waitResult(t, "GATTACA")
	_ = stop()

	assert.Equal(t, api.StatusFailed, r.Status)
	require.NotNil(t, r.Failure)
	assert.Equal(t, ReasonTimedOut, r.Failure.Reason)
	_, err := os.Stat(filepath.Join(f.store.Dir("GATTACA"), writers.FailureFile))
	assert.NoError(t, err)
}

func TestServer_PredictorFailure(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "ACGT", time.Second)

	boom := search.PredictorFunc(func(context.Context, string) ([]fold.Fold, error) {
		return nil, errors.New("hybrid-ss-min missing")
	})
	stop := run(t, New(f.queue, boom, Config{Workers: 1}, nil))
	r := f.waitResult(t, "ACGT")
	_ = stop()

	require.NotNil(t, r.Failure)
	assert.Contains(t, r.Failure.Reason, ReasonPredictor)
	assert.Contains(t, r.Failure.Reason, "hybrid-ss-min missing")
}

func TestServer_InvalidRequestRecorded(t *testing.T) {
	f := newFixture(t)
	dir, err := f.store.Prepare("ACGT")
	require.NoError(t, err)
	req := api.NewRequest("ACGT", dir, time.Second)
	req.NumSolutions = 0
	_, err = f.queue.Put(req)
	require.NoError(t, err)

	stop := run(t, New(f.queue, search.PredictorFunc(searchtest.Designed("ACGT")), Config{}, nil))
	r := f.waitResult(t, "ACGT")
	_ = stop()

	require.NotNil(t, r.Failure)
	assert.Contains(t, r.Failure.Reason, ReasonInvalid)
}

func TestServer_RequeuesOnShutdown(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "GATTACA", time.Minute)

	started := make(chan struct{}, 1)
	slow := search.PredictorFunc(func(ctx context.Context, seq string) ([]fold.Fold, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	stop := run(t, New(f.queue, slow, Config{Workers: 1}, nil))
	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("search never started")
	}
	assert.ErrorIs(t, stop(), context.Canceled)

	got, err := f.queue.TryGet()
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	r, err := f.store.Lookup("GATTACA")
	require.NoError(t, err)
	assert.Equal(t, api.StatusPending, r.Status)
}

func TestRequestOptions(t *testing.T) {
	base := search.Options{MaxTime: time.Minute, MaxSolutions: 1, Thresholds: scoring.DefaultThresholds()}
	req := api.NewRequest("ACGT", "/out", 5*time.Second)
	req.NumSolutions = 3
	req.BindingRatioLo, req.BindingRatioHi = ptr(0.5), ptr(2.0)
	req.MaxUnknown = ptr(0.4)
	req.NumFoldsLo, req.NumFoldsHi = ptr(1), ptr(4)
	req.MaxEnergy = ptr(0.0)

	got := RequestOptions(base, req)
	assert.Equal(t, 5*time.Second, got.MaxTime)
	assert.Equal(t, 3, got.MaxSolutions)
	assert.Equal(t, 0.5, got.Thresholds.RatioLo)
	assert.Equal(t, 2.0, got.Thresholds.RatioHi)
	assert.Equal(t, 0.4, got.Thresholds.MaxUnknown)
	assert.Equal(t, &scoring.Range{Lo: 1, Hi: 4}, got.Thresholds.FoldRange)
	require.NotNil(t, got.Thresholds.MaxEnergy)
	assert.Equal(t, 0.0, *got.Thresholds.MaxEnergy)

	plain := RequestOptions(base, api.NewRequest("ACGT", "/out", 0))
	assert.Equal(t, time.Minute, plain.MaxTime)
	assert.Equal(t, scoring.DefaultThresholds(), plain.Thresholds)
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fealden.pid")
	remove, err := WritePIDFile(path)
	require.NoError(t, err)

	_, err = WritePIDFile(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning, "our own pid is alive")

	require.NoError(t, remove())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("not a pid\n"), 0o644))
	remove, err = WritePIDFile(path)
	require.NoError(t, err, "unreadable pid files are replaced")
	assert.NoError(t, remove())
}

type mail struct{ to, subject, body string }

type recordingSender struct {
	mu   sync.Mutex
	sent []mail
}

func (r *recordingSender) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, mail{to, subject, body})
	return nil
}

func (r *recordingSender) mails() []mail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail(nil), r.sent...)
}

func TestServer_NotifiesRequester(t *testing.T) {
	f := newFixture(t)
	dir, err := f.store.Prepare("ATTA")
	require.NoError(t, err)
	withMail := api.NewRequest("ATTA", dir, 5*time.Second)
	withMail.Email = "lab@example.org"
	_, err = f.queue.Put(withMail)
	require.NoError(t, err)
	f.submit(t, "TAAT", 5*time.Second)

	sender := &recordingSender{}
	// Designed only looks at the recognition length, so it serves both
	s := New(f.queue, search.PredictorFunc(searchtest.Designed("ATTA")), Config{
		Workers: 2, Notifier: sender, BaseURL: "http://fealden.test",
	}, nil)
	stop := run(t, s)
	f.waitResult(t, "ATTA")
	f.waitResult(t, "TAAT")
	_ = stop()

	got := sender.mails()
	require.Len(t, got, 1, "only the request with an address is mailed")
	assert.Equal(t, "lab@example.org", got[0].to)
	assert.Equal(t, "fealden: sensor found for ATTA", got[0].subject)
	assert.Contains(t, got[0].body, "http://fealden.test/api/v1/solutions/ATTA")
}

// brokenQueue fails every read with an error the feeder treats as transient.
type brokenQueue struct {
	gets atomic.Int64
}

func (q *brokenQueue) Get(context.Context) (api.RequestV1, error) {
	q.gets.Add(1)
	return api.RequestV1{}, errors.New("claim fealden_request_1.json: permission denied")
}

func (q *brokenQueue) Put(api.RequestV1) (string, error) { return "", nil }

func TestServer_QueueErrorsAreRetriedWithDelay(t *testing.T) {
	q := &brokenQueue{}
	s := New(q, search.PredictorFunc(searchtest.Unpaired(0, nil)), Config{RetryDelay: 50 * time.Millisecond}, nil)
	stop := run(t, s)
	time.Sleep(300 * time.Millisecond)
	assert.ErrorIs(t, stop(), context.Canceled)

	n := q.gets.Load()
	assert.GreaterOrEqual(t, n, int64(2), "reads are retried")
	assert.LessOrEqual(t, n, int64(10), "reads wait between failures")
}
