// internal/server/outcome.go
package server

import (
	"fealden/internal/search"
	"fealden/pkg/api"
)

// Reasons recorded in failed.json.
const (
	ReasonTimedOut  = "Search timed out"
	ReasonPredictor = "Structure prediction failed"
	ReasonInvalid   = "Invalid request"
)

// Outcome is the result of one request: Found or Failed.
type Outcome interface {
	outcome()
	request() api.RequestV1
}

// Found carries the accepted candidates of a request.
type Found struct {
	Request    api.RequestV1
	Candidates []search.Candidate
	Stats      search.Stats
}

// Failed records why a request produced nothing.
type Failed struct {
	Request api.RequestV1
	Reason  string
	Detail  string
}

func (Found) outcome()  {}
func (Failed) outcome() {}

func (f Found) request() api.RequestV1  { return f.Request }
func (f Failed) request() api.RequestV1 { return f.Request }
