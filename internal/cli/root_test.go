// internal/cli/root_test.go
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"fealden/internal/config"
	"fealden/internal/scoring"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   int
		stderr string
	}{
		{"ok", nil, ExitOK, ""},
		{"cancelled", fmt.Errorf("search: %w", context.Canceled), ExitCancelled, ""},
		{"silent failure", fail(ExitNoSolution, nil), ExitNoSolution, ""},
		{"io", fail(ExitIO, errors.New("disk full")), ExitIO, "error: disk full\n"},
		{"cobra", errors.New(`unknown flag: --x`), ExitUsage, "Run 'fealden --help' for usage."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, c.code, exitCode(c.err, &buf))
			assert.Contains(t, buf.String(), c.stderr)
		})
	}
}

func TestThresholds(t *testing.T) {
	e := 1.5
	th := thresholds(config.Search{RatioLo: 0.8, RatioHi: 1.2, MaxUnknown: 0.1, FoldLo: 2, FoldHi: 9, MaxEnergy: &e})
	assert.Equal(t, &scoring.Range{Lo: 2, Hi: 9}, th.FoldRange)
	if assert.NotNil(t, th.MaxEnergy) {
		assert.Equal(t, 1.5, *th.MaxEnergy)
		assert.NotSame(t, &e, th.MaxEnergy)
	}

	th = thresholds(config.Search{FoldLo: 2})
	assert.Nil(t, th.FoldRange, "a single fold bound is ignored")
	assert.Nil(t, th.MaxEnergy)
}
