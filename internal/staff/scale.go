// Package staff provides the scale and staff-lookup collaborators that the
// validation and repair packages are driven by. A Scale converts thresholds
// stated in interline-relative units into pixels; a Manager answers nearest
// staff queries for stick anchoring.
package staff

import (
	"fmt"
	"math"
)

// Scale embodies the interline-based sizing of one region. All physical
// parameters (lengths as interline fractions, weights as interline-squared
// fractions) are resolved to pixels through it, once, at construction of the
// consuming component.
type Scale struct {
	interline int
}

// NewScale creates a Scale for the given interline pixel size.
func NewScale(interline int) (*Scale, error) {
	if interline <= 0 {
		return nil, fmt.Errorf("staff: interline must be positive, got %d", interline)
	}
	return &Scale{interline: interline}, nil
}

// Interline returns the interline value in pixels.
func (s *Scale) Interline() int {
	return s.interline
}

// Fraction converts an interline fraction to a pixel count.
func (s *Scale) Fraction(f float64) int {
	return int(math.Round(f * float64(s.interline)))
}

// FractionF converts an interline fraction to pixels without rounding.
// Used for distance thresholds compared against floating residuals.
func (s *Scale) FractionF(f float64) float64 {
	return f * float64(s.interline)
}

// AreaFraction converts an interline-squared fraction to a pixel count.
// Used for weight (pixel count) thresholds.
func (s *Scale) AreaFraction(f float64) int {
	il := float64(s.interline)
	return int(math.Round(f * il * il))
}

// PixelsToFrac converts a pixel distance back to an interline fraction.
func (s *Scale) PixelsToFrac(px float64) float64 {
	return px / float64(s.interline)
}

// NormalizedWeight converts a pixel weight to interline-squared units.
func (s *Scale) NormalizedWeight(weight int) float64 {
	il := float64(s.interline)
	return float64(weight) / (il * il)
}
