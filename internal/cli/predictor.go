// internal/cli/predictor.go
package cli

import (
	"os"

	"fealden/internal/config"
	"fealden/internal/predictor"
	"fealden/internal/scoring"
	"fealden/internal/search"
)

// newPredictor builds hybrid-ss-min with the configured conditions,
// memoised when a cache TTL is set, and instrumented.
func (a *app) newPredictor() search.Predictor {
	pc := a.cfg.Predictor
	workDir := a.cfg.Locations.WorkingDirectory
	if fi, err := os.Stat(workDir); err != nil || !fi.IsDir() {
		workDir = ""
	}
	h := predictor.NewHybridSSMin(pc.Command, workDir, a.log)
	h.Temperature = pc.Temperature
	h.Sodium = pc.Sodium
	h.Magnesium = pc.Magnesium
	h.MfoldPercent = pc.Mfold

	var p predictor.Predictor = h
	if pc.CacheTTL > 0 {
		p = predictor.NewCached(p, pc.CacheTTL)
	}
	return predictor.Instrumented{Next: p}
}

func thresholds(s config.Search) scoring.Thresholds {
	th := scoring.Thresholds{RatioLo: s.RatioLo, RatioHi: s.RatioHi, MaxUnknown: s.MaxUnknown}
	if s.FoldLo > 0 && s.FoldHi > 0 {
		th.FoldRange = &scoring.Range{Lo: s.FoldLo, Hi: s.FoldHi}
	}
	if s.MaxEnergy != nil {
		e := *s.MaxEnergy
		th.MaxEnergy = &e
	}
	return th
}

func (a *app) searchOptions() search.Options {
	s := a.cfg.Search
	return search.Options{
		MaxTime:      s.MaxTime,
		Thresholds:   thresholds(s),
		MaxSolutions: s.MaxSolutions,
		Logger:       a.log,
	}
}
