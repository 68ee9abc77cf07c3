// Package toroid resolves core identifiers against the core database and
// validates the electrical request that accompanies them. It produces the two
// immutable inputs the winding solver consumes: a CoreSpec and a Request.
package toroid

import (
	"errors"
	"fmt"

	"github.com/coilworks/fpcwind/pkg/fab"
)

// ErrUnknownCore is returned when an identifier resolves to no database entry.
var ErrUnknownCore = errors.New("toroid: unknown core")

// InvalidRequestError names the request field that failed validation.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("toroid: invalid request: %s: %s", e.Field, e.Reason)
}

// CoreSpec holds the physical dimensions of a toroid core in millimeters.
// Resolved once per run and never mutated.
type CoreSpec struct {
	Name     string
	ODMM     float64
	IDMM     float64
	HeightMM float64
}

// Validate checks the dimensional invariants: OD > ID > 0, height > 0.
func (c CoreSpec) Validate() error {
	if c.IDMM <= 0 {
		return fmt.Errorf("toroid: core %s: ID must be positive, got %g", c.Name, c.IDMM)
	}
	if c.ODMM <= c.IDMM {
		return fmt.Errorf("toroid: core %s: OD %g must exceed ID %g", c.Name, c.ODMM, c.IDMM)
	}
	if c.HeightMM <= 0 {
		return fmt.Errorf("toroid: core %s: height must be positive, got %g", c.Name, c.HeightMM)
	}
	return nil
}

// RadialMM is the radial wall thickness (OD-ID)/2.
func (c CoreSpec) RadialMM() float64 {
	return (c.ODMM - c.IDMM) / 2
}

// MeanDiameterMM is the diameter of the mid-wall circle.
func (c CoreSpec) MeanDiameterMM() float64 {
	return (c.ODMM + c.IDMM) / 2
}

// Request is the electrical side of a solve: what the winding must deliver.
// Constructed from validated user input, one per run.
type Request struct {
	Turns       int
	CurrentAmps float64
	CoverageDeg float64
	MaxLayers   int
	Copper      fab.CopperClass
	Taps        []int // interior tap turns, global 1-based indices in [1, Turns]

	// Drill overrides; zero means the fabrication default.
	ViaDrillMM float64
	PadDrillMM float64
}

// Validate checks every request field against its allowed range. The via
// drill, when overridden, must be one the constraint table offers.
func (r Request) Validate(cons fab.Constraints) error {
	if r.Turns < 1 {
		return &InvalidRequestError{Field: "turns", Reason: fmt.Sprintf("must be at least 1, got %d", r.Turns)}
	}
	if r.CurrentAmps <= 0 {
		return &InvalidRequestError{Field: "amps", Reason: fmt.Sprintf("must be positive, got %g", r.CurrentAmps)}
	}
	if r.CoverageDeg <= 0 || r.CoverageDeg > 360 {
		return &InvalidRequestError{Field: "angle", Reason: fmt.Sprintf("must be in (0, 360], got %g", r.CoverageDeg)}
	}
	if r.MaxLayers < 1 {
		return &InvalidRequestError{Field: "max-layers", Reason: fmt.Sprintf("must be at least 1, got %d", r.MaxLayers)}
	}
	if _, err := cons.CopperSpec(r.Copper); err != nil {
		return &InvalidRequestError{Field: "copper", Reason: fmt.Sprintf("unknown class %q", r.Copper)}
	}
	if r.ViaDrillMM != 0 {
		if _, err := cons.ViaOption(r.ViaDrillMM); err != nil {
			return &InvalidRequestError{Field: "via-drill", Reason: err.Error()}
		}
	}
	if r.PadDrillMM < 0 {
		return &InvalidRequestError{Field: "pad-drill", Reason: fmt.Sprintf("must not be negative, got %g", r.PadDrillMM)}
	}
	for _, tap := range r.Taps {
		if tap < 1 || tap > r.Turns {
			return &InvalidRequestError{Field: "taps", Reason: fmt.Sprintf("tap turn %d outside [1, %d]", tap, r.Turns)}
		}
	}
	return nil
}
