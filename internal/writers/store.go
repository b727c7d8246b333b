// internal/writers/store.go
package writers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fealden/pkg/api"
)

// Files left in a request's output directory. Exactly one of them appears
// once the request is finished.
const (
	SolutionFile = "solution.json"
	FailureFile  = "failed.json"
)

// ErrUnknownRecognition is returned by Lookup when nothing was ever
// submitted for a recognition site.
var ErrUnknownRecognition = errors.New("no request for recognition site")

// SolutionStore lays out one output directory per recognition site under Root.
type SolutionStore struct {
	Root string
}

// Dir is the output directory of recognition.
func (s SolutionStore) Dir(recognition string) string {
	return filepath.Join(s.Root, recognition)
}

// Prepare creates the output directory of recognition.
func (s SolutionStore) Prepare(recognition string) (string, error) {
	dir := s.Dir(recognition)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// Lookup reads the result for recognition. A directory without a result
// file is reported as pending.
func (s SolutionStore) Lookup(recognition string) (api.ResultV1, error) {
	dir := s.Dir(recognition)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return api.ResultV1{}, fmt.Errorf("%w: %s", ErrUnknownRecognition, recognition)
	}
	r, err := ReadResult(dir)
	if errors.Is(err, os.ErrNotExist) {
		return api.ResultV1{Status: api.StatusPending, Recognition: recognition}, nil
	}
	return r, err
}

// Solved reports whether dir already holds an accepted solution.
func Solved(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, SolutionFile))
	return err == nil
}

// ClearFailure removes a failure left in dir by an earlier request, so the
// directory reads as pending while a new one runs. A missing file is fine.
func ClearFailure(dir string) error {
	if err := os.Remove(filepath.Join(dir, FailureFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear failure: %w", err)
	}
	return nil
}

// WriteResult stores r in dir as solution.json or failed.json. The file is
// written under a temporary name and renamed, so readers never see it
// half written.
func WriteResult(dir string, r api.ResultV1) error {
	name := SolutionFile
	if r.Status != api.StatusFound {
		name = FailureFile
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// ReadResult loads the result in dir, preferring a solution over a failure.
// It returns an error wrapping os.ErrNotExist when neither file exists.
func ReadResult(dir string) (api.ResultV1, error) {
	for _, name := range [...]string{SolutionFile, FailureFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return api.ResultV1{}, fmt.Errorf("read result: %w", err)
		}
		var r api.ResultV1
		if err := json.Unmarshal(data, &r); err != nil {
			return api.ResultV1{}, fmt.Errorf("decode %s: %w", name, err)
		}
		return r, nil
	}
	return api.ResultV1{}, fmt.Errorf("no result in %s: %w", dir, os.ErrNotExist)
}
