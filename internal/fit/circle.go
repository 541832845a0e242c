// Package fit provides the least-squares circle fitting primitive used as a
// repair oracle: fit a circle to a weighted point cloud and report the
// root-mean residual of the points to it.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"omr-repair/internal/glyph"
)

// ErrGeometricFit reports a degenerate point set: fewer than three points,
// or points that do not constrain a circle (all collinear in a singular
// configuration). Callers treat it as "invalid fit", never as fatal.
var ErrGeometricFit = errors.New("fit: degenerate point set")

// Circle is the best-fit circle over a point cloud, with the residual
// distance of the input points baked in at fit time. It is an ephemeral
// value: recomputed on demand, never persisted.
type Circle struct {
	CenterX float64
	CenterY float64
	Radius  float64

	distance float64
}

// Distance reports the root-mean-square residual of the fitted points to
// the circle.
func (c Circle) Distance() float64 {
	return c.distance
}

// Valid reports whether the fit residual is within the given threshold.
func (c Circle) Valid(maxDistance float64) bool {
	return c.distance <= maxDistance
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(center=%.1f,%.1f r=%.1f dist=%.4f)", c.CenterX, c.CenterY, c.Radius, c.distance)
}

// Fit computes the least-squares circle through the points.
func Fit(xs, ys []float64) (Circle, error) {
	return FitWeighted(xs, ys, nil)
}

// FitWeighted computes the least-squares circle through a weighted point
// cloud. A nil weight slice means uniform weights.
//
// The algebraic formulation x² + y² + a·x + b·y + c ≈ 0 is linear in
// (a, b, c) and solved by QR, so one solver covers both the circular case
// and the near-straight high-radius limit.
func FitWeighted(xs, ys, ws []float64) (Circle, error) {
	n := len(xs)
	if len(ys) != n {
		return Circle{}, fmt.Errorf("fit: coordinate count mismatch: %d vs %d", n, len(ys))
	}
	if ws != nil && len(ws) != n {
		return Circle{}, fmt.Errorf("fit: weight count mismatch: %d vs %d", n, len(ws))
	}
	if n < 3 {
		return Circle{}, fmt.Errorf("%w: %d points", ErrGeometricFit, n)
	}

	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		w := 1.0
		if ws != nil {
			if ws[i] < 0 {
				return Circle{}, fmt.Errorf("fit: negative weight %v", ws[i])
			}
			w = math.Sqrt(ws[i])
		}
		x, y := xs[i], ys[i]
		a.Set(i, 0, w*x)
		a.Set(i, 1, w*y)
		a.Set(i, 2, w)
		b.SetVec(i, -w*(x*x+y*y))
	}

	var qr mat.QR
	qr.Factorize(a)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return Circle{}, fmt.Errorf("%w: %v", ErrGeometricFit, err)
	}

	pa, pb, pc := params.AtVec(0), params.AtVec(1), params.AtVec(2)
	cx := -pa / 2
	cy := -pb / 2
	r2 := cx*cx + cy*cy - pc
	if math.IsNaN(r2) || math.IsInf(r2, 0) || r2 <= 0 {
		return Circle{}, fmt.Errorf("%w: unsolvable radius", ErrGeometricFit)
	}
	radius := math.Sqrt(r2)

	c := Circle{CenterX: cx, CenterY: cy, Radius: radius}
	c.distance = residual(xs, ys, ws, c)
	if math.IsNaN(c.distance) || math.IsInf(c.distance, 0) {
		return Circle{}, fmt.Errorf("%w: unsolvable residual", ErrGeometricFit)
	}
	return c, nil
}

// FitSections fits a circle over every pixel of the given sections.
// For candidates whose principal axis is vertical the coordinates are
// swapped, so the same solver serves both orientations.
func FitSections(sections []*glyph.Section, vertical bool) (Circle, error) {
	var xs, ys []float64
	for _, s := range sections {
		xs, ys = s.CumulatePoints(xs, ys)
	}
	if vertical {
		xs, ys = ys, xs
	}
	return Fit(xs, ys)
}

// residual computes the weighted RMS distance of the points to the circle.
func residual(xs, ys, ws []float64, c Circle) float64 {
	var sum, wsum float64
	for i := range xs {
		w := 1.0
		if ws != nil {
			w = ws[i]
		}
		dx := xs[i] - c.CenterX
		dy := ys[i] - c.CenterY
		d := math.Sqrt(dx*dx+dy*dy) - c.Radius
		sum += w * d * d
		wsum += w
	}
	if wsum == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(sum / wsum)
}
