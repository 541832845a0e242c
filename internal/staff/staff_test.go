package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omr-repair/pkg/geometry"
)

func TestNewScale_RejectsBadInterline(t *testing.T) {
	_, err := NewScale(0)
	require.Error(t, err)
	_, err = NewScale(-4)
	require.Error(t, err)
}

func TestScale_Conversions(t *testing.T) {
	sc, err := NewScale(16)
	require.NoError(t, err)

	assert.Equal(t, 16, sc.Interline())
	assert.Equal(t, 8, sc.Fraction(0.5))
	assert.Equal(t, 4, sc.Fraction(0.27)) // 4.32 rounds down
	assert.InDelta(t, 1.6, sc.FractionF(0.1), 1e-12)
	assert.Equal(t, 128, sc.AreaFraction(0.5))
	assert.InDelta(t, 0.25, sc.PixelsToFrac(4), 1e-12)
	assert.InDelta(t, 0.5, sc.NormalizedWeight(128), 1e-12)
}

func TestInfo_LineInterpolation(t *testing.T) {
	// A staff sloping down by 10 pixels over its width.
	st := &Info{
		Left:   0,
		Right:  100,
		Top:    Line{LeftY: 40, RightY: 50},
		Bottom: Line{LeftY: 104, RightY: 114},
	}

	assert.InDelta(t, 40, st.TopYAt(0), 1e-12)
	assert.InDelta(t, 45, st.TopYAt(50), 1e-12)
	assert.InDelta(t, 50, st.TopYAt(100), 1e-12)
	assert.InDelta(t, 109, st.BottomYAt(50), 1e-12)
	assert.InDelta(t, 64, st.Height(), 1e-12)
}

func TestManager_Lookup(t *testing.T) {
	top := &Info{Left: 0, Right: 600, Top: Line{LeftY: 48, RightY: 48}, Bottom: Line{LeftY: 112, RightY: 112}}
	bot := &Info{Left: 0, Right: 600, Top: Line{LeftY: 160, RightY: 160}, Bottom: Line{LeftY: 224, RightY: 224}}
	m := NewManager(top, bot)

	require.Equal(t, 2, m.Count())
	assert.Equal(t, 0, top.Index)
	assert.Equal(t, 1, bot.Index)
	assert.Same(t, top, m.Staff(0))
	assert.Nil(t, m.Staff(2))
	assert.Equal(t, 1, m.IndexOf(bot))
	assert.Equal(t, -1, m.IndexOf(&Info{}))

	// Middles are 80 and 192; 130 is closer to the first staff.
	assert.Same(t, top, m.StaffAt(geometry.Point2D{X: 100, Y: 130}))
	assert.Same(t, bot, m.StaffAt(geometry.Point2D{X: 100, Y: 150}))
	assert.Same(t, bot, m.StaffAt(geometry.Point2D{X: 100, Y: 500}))
}

func TestManager_Empty(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.StaffAt(geometry.Point2D{X: 1, Y: 1}))
}
