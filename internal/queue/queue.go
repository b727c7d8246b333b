// Package queue is a file-backed FIFO of search requests. Any process that
// can write to the directory can submit work; the daemon drains it.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"fealden/internal/metrics"
	"fealden/pkg/api"
)

var (
	// ErrNotDirectory is returned when the queue location is missing or is not a directory.
	ErrNotDirectory = errors.New("queue location is not a directory")
	// ErrEmpty is returned by TryGet when nothing is queued.
	ErrEmpty = errors.New("queue is empty")
)

const (
	Prefix              = "fealden_request_"
	Suffix              = ".json"
	claimedSuffix       = ".claimed"
	DefaultPollInterval = 100 * time.Millisecond
)

// DirectoryQueue stores one JSON request per file. File names sort in
// submission order. Getters claim a file by renaming it, so several
// consumers may share a directory.
type DirectoryQueue struct {
	dir  string
	poll time.Duration
}

// New opens the queue in dir. A poll interval <= 0 selects DefaultPollInterval.
func New(dir string, poll time.Duration) (*DirectoryQueue, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &DirectoryQueue{dir: dir, poll: poll}, nil
}

func (q *DirectoryQueue) Dir() string { return q.dir }

// Put writes req under a temporary name and renames it into place, so a
// getter never sees a partial file.
func (q *DirectoryQueue) Put(req api.RequestV1) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	tmp, err := os.CreateTemp(q.dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("queue put: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("queue put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("queue put: %w", err)
	}
	name := filepath.Join(q.dir, fmt.Sprintf("%s%020d_%s%s", Prefix, nextSeq(), fileID(req.ID), Suffix))
	if err := os.Rename(tmpName, name); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("queue put: %w", err)
	}
	metrics.QueueRequests.WithLabelValues("queued").Inc()
	return name, nil
}

var lastSeq atomic.Int64

// nextSeq is the submission clock: nanoseconds, bumped so no two Puts of
// this process share a value.
func nextSeq() int64 {
	for {
		last := lastSeq.Load()
		next := max(time.Now().UnixNano(), last+1)
		if lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

// fileID makes a request id safe to embed in a file name. The id inside the
// file is untouched.
func fileID(id string) string {
	b := []byte(id)
	if len(b) > 64 {
		b = b[:64]
	}
	for i, c := range b {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			b[i] = '_'
		}
	}
	if len(b) == 0 {
		return "unnamed"
	}
	return string(b)
}

func (q *DirectoryQueue) pending() ([]string, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(n, Prefix) && strings.HasSuffix(n, Suffix) {
			names = append(names, n)
		}
	}
	return names, nil
}

// Len is the number of unclaimed requests.
func (q *DirectoryQueue) Len() int {
	names, err := q.pending()
	if err != nil {
		return 0
	}
	return len(names)
}

// TryGet claims the oldest request without waiting. A file that cannot be
// decoded is removed and reported, so it is not retried forever.
func (q *DirectoryQueue) TryGet() (api.RequestV1, error) {
	names, err := q.pending()
	if err != nil {
		return api.RequestV1{}, err
	}
	for _, n := range names {
		src := filepath.Join(q.dir, n)
		claimed := src + claimedSuffix
		if err := os.Rename(src, claimed); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue // another getter won
			}
			return api.RequestV1{}, fmt.Errorf("claim %s: %w", n, err)
		}
		data, err := os.ReadFile(claimed)
		_ = os.Remove(claimed)
		if err != nil {
			return api.RequestV1{}, fmt.Errorf("read %s: %w", n, err)
		}
		var req api.RequestV1
		if err := json.Unmarshal(data, &req); err != nil {
			return api.RequestV1{}, fmt.Errorf("decode %s: %w", n, err)
		}
		return req, nil
	}
	return api.RequestV1{}, ErrEmpty
}

// Get blocks until a request can be claimed or ctx is done.
func (q *DirectoryQueue) Get(ctx context.Context) (api.RequestV1, error) {
	t := time.NewTicker(q.poll)
	defer t.Stop()
	for {
		req, err := q.TryGet()
		if !errors.Is(err, ErrEmpty) {
			return req, err
		}
		select {
		case <-ctx.Done():
			return api.RequestV1{}, ctx.Err()
		case <-t.C:
		}
	}
}
