// internal/predictor/hybrid.go
package predictor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"fealden/internal/fold"
)

// Folding conditions used by default: 25 C, 150 mM Na+, 5 mM Mg++ and every
// suboptimal fold within 50% of the minimum free energy.
const (
	DefaultCommand      = "hybrid-ss-min"
	DefaultTemperature  = 25.0
	DefaultSodium       = 0.15
	DefaultMagnesium    = 0.005
	DefaultMfoldPercent = 50
)

// HybridSSMin runs UNAFold's hybrid-ss-min in a scratch directory and parses
// the .ct file it leaves behind.
type HybridSSMin struct {
	Command      string  // executable; DefaultCommand when empty
	WorkDir      string  // parent of the scratch directories; os.TempDir when empty
	Temperature  float64 // Celsius
	Sodium       float64 // molar
	Magnesium    float64 // molar
	MfoldPercent int
	Logger       *slog.Logger
}

// NewHybridSSMin returns a predictor with the default folding conditions.
func NewHybridSSMin(command, workDir string, log *slog.Logger) *HybridSSMin {
	return &HybridSSMin{
		Command:      command,
		WorkDir:      workDir,
		Temperature:  DefaultTemperature,
		Sodium:       DefaultSodium,
		Magnesium:    DefaultMagnesium,
		MfoldPercent: DefaultMfoldPercent,
		Logger:       log,
	}
}

// Args is the argument list for folding the sequence stored in seqFile.
func (h *HybridSSMin) Args(seqFile string) []string {
	t := strconv.FormatFloat(h.Temperature, 'f', -1, 64)
	return []string{
		"-n", "DNA",
		"--tmin=" + t, "--tmax=" + t,
		"--sodium=" + strconv.FormatFloat(h.Sodium, 'f', -1, 64),
		"--magnesium=" + strconv.FormatFloat(h.Magnesium, 'f', -1, 64),
		fmt.Sprintf("--mfold=%d,-1,100", h.MfoldPercent),
		seqFile,
	}
}

func (h *HybridSSMin) command() string {
	if h.Command == "" {
		return DefaultCommand
	}
	return h.Command
}

// Predict folds sequence. hybrid-ss-min only reads sequences from a file and
// writes <name>.ct next to it, so every call gets its own directory.
func (h *HybridSSMin) Predict(ctx context.Context, sequence string) ([]fold.Fold, error) {
	dir, err := os.MkdirTemp(h.WorkDir, "fealden-fold-")
	if err != nil {
		return nil, fmt.Errorf("%w: scratch dir: %v", ErrPredictor, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil && h.Logger != nil {
			h.Logger.Warn("could not remove scratch dir", "dir", dir, "err", err)
		}
	}()

	name := sequence
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sequence+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("%w: write sequence file: %v", ErrPredictor, err)
	}

	cmd := exec.CommandContext(ctx, h.command(), h.Args(name)...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrPredictor, h.command(), err, strings.TrimSpace(stderr.String()))
	}

	ct, err := os.Open(filepath.Join(dir, name+".ct"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s left no .ct file: %v", ErrPredictor, h.command(), err)
	}
	defer ct.Close()

	folds, err := fold.ParseCT(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictor, err)
	}
	return folds, nil
}
