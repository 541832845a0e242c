package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omr-repair/internal/glyph"
)

// circlePoints generates n points exactly on a circle.
func circlePoints(cx, cy, r float64, n int) (xs, ys []float64) {
	for i := 0; i < n; i++ {
		a := float64(i) * 2 * math.Pi / float64(n)
		xs = append(xs, cx+r*math.Cos(a))
		ys = append(ys, cy+r*math.Sin(a))
	}
	return xs, ys
}

func TestFit_ExactCircle(t *testing.T) {
	xs, ys := circlePoints(10, -20, 50, 12)

	c, err := Fit(xs, ys)
	require.NoError(t, err)

	assert.InDelta(t, 10, c.CenterX, 1e-9)
	assert.InDelta(t, -20, c.CenterY, 1e-9)
	assert.InDelta(t, 50, c.Radius, 1e-9)
	assert.InDelta(t, 0, c.Distance(), 1e-9)
	assert.True(t, c.Valid(0.01))
}

func TestFit_ResidualNonNegative(t *testing.T) {
	xs, ys := circlePoints(0, 0, 30, 10)
	// Perturb one point off the circle.
	xs[0] += 3

	c, err := Fit(xs, ys)
	require.NoError(t, err)
	assert.Greater(t, c.Distance(), 0.0)
	assert.False(t, c.Valid(1e-6))
}

func TestFit_TooFewPoints(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{3, 4})
	require.ErrorIs(t, err, ErrGeometricFit)

	_, err = Fit(nil, nil)
	require.ErrorIs(t, err, ErrGeometricFit)
}

func TestFit_CollinearPoints(t *testing.T) {
	var xs, ys []float64
	for i := 0; i < 10; i++ {
		xs = append(xs, float64(i))
		ys = append(ys, 2*float64(i)+1)
	}

	// Exactly collinear points do not constrain a circle: the fit must
	// either fail or resolve to the near-straight high-radius limit.
	c, err := Fit(xs, ys)
	if err != nil {
		assert.ErrorIs(t, err, ErrGeometricFit)
		return
	}
	assert.Greater(t, c.Radius, 1e3)
}

func TestFit_MismatchedInputs(t *testing.T) {
	_, err := Fit([]float64{1, 2, 3}, []float64{1, 2})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGeometricFit)
}

func TestFitWeighted_MatchesRepetition(t *testing.T) {
	xs := []float64{0, 10, 5, 5}
	ys := []float64{0, 0, 5, -1}

	// Weighting a point by 3 must equal repeating it three times.
	weighted, err := FitWeighted(xs, ys, []float64{1, 1, 1, 3})
	require.NoError(t, err)

	repXs := append(append([]float64(nil), xs...), 5, 5)
	repYs := append(append([]float64(nil), ys...), -1, -1)
	repeated, err := Fit(repXs, repYs)
	require.NoError(t, err)

	assert.InDelta(t, repeated.CenterX, weighted.CenterX, 1e-9)
	assert.InDelta(t, repeated.CenterY, weighted.CenterY, 1e-9)
	assert.InDelta(t, repeated.Radius, weighted.Radius, 1e-9)
	assert.InDelta(t, repeated.Distance(), weighted.Distance(), 1e-9)
}

func TestFitSections_AxisSwapInvariance(t *testing.T) {
	// A small L of runs; the residual must not depend on the orientation
	// convention, only on the point cloud.
	s := glyph.NewSection(1, []glyph.Run{
		{X: 0, Y: 0, Length: 5},
		{X: 1, Y: 4, Length: 1},
		{X: 2, Y: 4, Length: 1},
		{X: 3, Y: 3, Length: 1},
	})

	horizontal, err := FitSections([]*glyph.Section{s}, false)
	require.NoError(t, err)
	vertical, err := FitSections([]*glyph.Section{s}, true)
	require.NoError(t, err)

	assert.InDelta(t, horizontal.Distance(), vertical.Distance(), 1e-9)
}
