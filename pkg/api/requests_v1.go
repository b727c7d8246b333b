// pkg/api/requests_v1.go
package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidRequest is wrapped by every RequestV1 validation failure.
var ErrInvalidRequest = errors.New("invalid search request")

// CommandSearch is the only command the daemon understands.
const CommandSearch = "search"

// RequestV1 is a queued search. Pointer fields are optional criteria; nil
// selects the daemon's defaults.
type RequestV1 struct {
	ID          string    `json:"id" validate:"required,uuid"`
	Command     string    `json:"command" validate:"required,oneof=search"`
	Recognition string    `json:"recognition" validate:"required,dna"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	MaxTime     float64   `json:"max_time" validate:"gt=0"` // seconds
	OutputDir   string    `json:"output_dir" validate:"required"`
	Submitted   time.Time `json:"submitted,omitempty"`

	BindingRatioLo *float64 `json:"binding_ratio_lo,omitempty" validate:"omitempty,gt=0"`
	BindingRatioHi *float64 `json:"binding_ratio_hi,omitempty" validate:"omitempty,gt=0"`
	MaxUnknown     *float64 `json:"max_unknown,omitempty" validate:"omitempty,gte=0,lte=1"`
	NumFoldsLo     *int     `json:"num_folds_lo,omitempty" validate:"omitempty,gte=1"`
	NumFoldsHi     *int     `json:"num_folds_hi,omitempty" validate:"omitempty,gte=1"`
	MaxEnergy      *float64 `json:"max_energy,omitempty"`
	NumSolutions   int      `json:"num_solutions" validate:"gte=1"`
}

// NewRequest returns a search request with a fresh id, one solution and the
// given time budget.
func NewRequest(recognition, outputDir string, maxTime time.Duration) RequestV1 {
	return RequestV1{
		ID:           uuid.NewString(),
		Command:      CommandSearch,
		Recognition:  recognition,
		MaxTime:      maxTime.Seconds(),
		OutputDir:    outputDir,
		Submitted:    time.Now().UTC(),
		NumSolutions: 1,
	}
}

// Budget is MaxTime as a duration.
func (r RequestV1) Budget() time.Duration {
	return time.Duration(r.MaxTime * float64(time.Second))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("dna", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s != "" && strings.Trim(s, "ACGT") == ""
		})
	})
	return validate
}

// Validate checks field constraints and the rules that span fields: both
// ratio bounds or neither with lo < hi, the same for the fold count bounds,
// and an absolute, existing output directory.
func (r RequestV1) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if (r.BindingRatioLo == nil) != (r.BindingRatioHi == nil) {
		return fmt.Errorf("%w: binding ratio needs both bounds or neither", ErrInvalidRequest)
	}
	if r.BindingRatioLo != nil && *r.BindingRatioLo >= *r.BindingRatioHi {
		return fmt.Errorf("%w: binding ratio lo %g must be below hi %g", ErrInvalidRequest, *r.BindingRatioLo, *r.BindingRatioHi)
	}
	if (r.NumFoldsLo == nil) != (r.NumFoldsHi == nil) {
		return fmt.Errorf("%w: fold count needs both bounds or neither", ErrInvalidRequest)
	}
	if r.NumFoldsLo != nil && *r.NumFoldsLo > *r.NumFoldsHi {
		return fmt.Errorf("%w: fold count lo %d above hi %d", ErrInvalidRequest, *r.NumFoldsLo, *r.NumFoldsHi)
	}
	if !filepath.IsAbs(r.OutputDir) {
		return fmt.Errorf("%w: output dir %q is not absolute", ErrInvalidRequest, r.OutputDir)
	}
	if fi, err := os.Stat(r.OutputDir); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: output dir %q does not exist", ErrInvalidRequest, r.OutputDir)
	}
	return nil
}
