// internal/server/options.go
package server

import (
	"fealden/internal/scoring"
	"fealden/internal/search"
	"fealden/pkg/api"
)

// RequestOptions layers the criteria carried by req over base. Unset
// request fields keep the daemon's defaults.
func RequestOptions(base search.Options, req api.RequestV1) search.Options {
	opts := base
	th := base.Thresholds
	if b := req.Budget(); b > 0 {
		opts.MaxTime = b
	}
	if req.NumSolutions > 0 {
		opts.MaxSolutions = req.NumSolutions
	}
	if req.BindingRatioLo != nil && req.BindingRatioHi != nil {
		th.RatioLo, th.RatioHi = *req.BindingRatioLo, *req.BindingRatioHi
	}
	if req.MaxUnknown != nil {
		th.MaxUnknown = *req.MaxUnknown
	}
	if req.NumFoldsLo != nil && req.NumFoldsHi != nil {
		th.FoldRange = &scoring.Range{Lo: *req.NumFoldsLo, Hi: *req.NumFoldsHi}
	}
	if req.MaxEnergy != nil {
		e := *req.MaxEnergy
		th.MaxEnergy = &e
	}
	opts.Thresholds = th
	return opts
}
