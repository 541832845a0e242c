package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2D_Distance(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(3, 4)
	assert.InDelta(t, 5, a.Distance(b), 1e-12)
	assert.InDelta(t, 5, b.Distance(a), 1e-12)
	assert.Zero(t, a.Distance(a))
}

func TestRectInt_EmptyAndArea(t *testing.T) {
	assert.True(t, RectInt{}.Empty())
	assert.True(t, RectInt{X: 1, Y: 1, Width: 0, Height: 5}.Empty())
	assert.Equal(t, 0, RectInt{Width: -3, Height: 4}.Area())
	assert.Equal(t, 12, RectInt{X: 2, Y: 2, Width: 3, Height: 4}.Area())
}

func TestRectInt_Intersects(t *testing.T) {
	r := RectInt{X: 0, Y: 0, Width: 10, Height: 10}

	assert.True(t, r.Intersects(RectInt{X: 9, Y: 9, Width: 5, Height: 5}))
	assert.True(t, r.Intersects(RectInt{X: 2, Y: 2, Width: 3, Height: 3}))
	// Touching edges do not overlap in the half-open convention.
	assert.False(t, r.Intersects(RectInt{X: 10, Y: 0, Width: 5, Height: 10}))
	assert.False(t, r.Intersects(RectInt{X: 0, Y: 10, Width: 10, Height: 5}))
}

func TestRectInt_Union(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 5, Height: 5}
	b := RectInt{X: 10, Y: 2, Width: 2, Height: 10}

	u := a.Union(b)
	assert.Equal(t, RectInt{X: 0, Y: 0, Width: 12, Height: 12}, u)

	// Union with an empty rectangle is the other operand.
	assert.Equal(t, a, a.Union(RectInt{}))
	assert.Equal(t, a, RectInt{}.Union(a))
}

func TestRectInt_Grow(t *testing.T) {
	r := RectInt{X: 10, Y: 20, Width: 4, Height: 6}
	g := r.Grow(3, 1)
	assert.Equal(t, RectInt{X: 7, Y: 19, Width: 10, Height: 8}, g)
}

func TestRectInt_ContainsPointAndCenter(t *testing.T) {
	r := RectInt{X: 0, Y: 0, Width: 4, Height: 2}
	assert.True(t, r.ContainsPoint(0, 0))
	assert.True(t, r.ContainsPoint(3, 1))
	assert.False(t, r.ContainsPoint(4, 1))
	assert.Equal(t, Point2D{X: 2, Y: 1}, r.Center())
}

func TestCentroidAndBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 2, Y: 6}}

	c := Centroid(pts)
	assert.InDelta(t, 2, c.X, 1e-12)
	assert.InDelta(t, 2, c.Y, 1e-12)
	assert.Equal(t, Point2D{}, Centroid(nil))

	bb := BoundingBox(pts)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 4, Height: 6}, bb)
}
