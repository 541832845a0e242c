package glyph

import (
	"fmt"
	"math"
	"sort"

	"omr-repair/internal/check"
	"omr-repair/internal/staff"
	"omr-repair/pkg/geometry"
)

// Glyph is a mutable aggregate of sections hypothesized to represent one
// symbol. The repair core only ever mutates a glyph's shape label, its
// result tag and (through the nest) its section membership.
type Glyph struct {
	id       int
	shape    Shape
	manual   bool
	sections []*Section
	result   *check.Result

	weight int
	box    geometry.RectInt
}

// newGlyph assembles a glyph over the given sections without touching the
// section backlinks. Nest.AddGlyph activates it.
func newGlyph(sections []*Section) *Glyph {
	g := &Glyph{sections: append([]*Section(nil), sections...)}
	g.recompute()
	return g
}

func (g *Glyph) recompute() {
	g.weight = 0
	g.box = geometry.RectInt{}
	for i, s := range g.sections {
		g.weight += s.Weight()
		if i == 0 {
			g.box = s.ContourBox()
		} else {
			g.box = g.box.Union(s.ContourBox())
		}
	}
}

// ID returns the glyph identifier (0 for a transient glyph).
func (g *Glyph) ID() int {
	return g.id
}

// Shape returns the current shape label.
func (g *Glyph) Shape() Shape {
	return g.shape
}

// SetShape updates the shape label. ShapeNone clears the classification.
func (g *Glyph) SetShape(s Shape) {
	g.shape = s
}

// IsManual reports whether the shape was assigned manually; manually fixed
// glyphs are never cannibalized by repair.
func (g *Glyph) IsManual() bool {
	return g.manual
}

// SetManual marks the shape as manually assigned.
func (g *Glyph) SetManual(manual bool) {
	g.manual = manual
}

// Result returns the outcome tag recorded by a checker, or nil.
func (g *Glyph) Result() *check.Result {
	return g.result
}

// SetResult records the outcome tag of the latest check run.
func (g *Glyph) SetResult(r *check.Result) {
	g.result = r
}

// Sections returns a copy of the member section list.
func (g *Glyph) Sections() []*Section {
	return append([]*Section(nil), g.sections...)
}

// Weight returns the total pixel count of the glyph.
func (g *Glyph) Weight() int {
	return g.weight
}

// NormalizedWeight returns the glyph weight in interline-squared units.
func (g *Glyph) NormalizedWeight(sc *staff.Scale) float64 {
	return sc.NormalizedWeight(g.weight)
}

// ContourBox returns the bounding box of all member sections.
func (g *Glyph) ContourBox() geometry.RectInt {
	return g.box
}

// Active reports whether every member section still points back at this
// glyph. A glyph whose sections have been taken over by a merge or a repair
// is inactive and must be skipped by batch loops.
func (g *Glyph) Active() bool {
	if len(g.sections) == 0 {
		return false
	}
	for _, s := range g.sections {
		if s.glyph != g {
			return false
		}
	}
	return true
}

// Stick geometry. Sticks are elongated vertical candidates; the accessors
// below describe them through the contour box, which is adequate for the
// near-vertical candidates the line checker grades.

// StartPoint returns the middle of the stick's top edge.
func (g *Glyph) StartPoint() geometry.Point2D {
	c := g.box.Center()
	return geometry.Point2D{X: c.X, Y: float64(g.box.Y)}
}

// StopPoint returns the middle of the stick's bottom edge.
func (g *Glyph) StopPoint() geometry.Point2D {
	c := g.box.Center()
	return geometry.Point2D{X: c.X, Y: float64(g.box.Y + g.box.Height)}
}

// Length returns the vertical extent of the stick in pixels.
func (g *Glyph) Length() int {
	return g.box.Height
}

// MeanWidth returns the average width of the stick, weight over length.
func (g *Glyph) MeanWidth() float64 {
	if g.box.Height == 0 {
		return 0
	}
	return float64(g.weight) / float64(g.box.Height)
}

// PositionAt returns the stick abscissa at the given ordinate, interpolated
// between the start and stop points.
func (g *Glyph) PositionAt(y float64) float64 {
	start, stop := g.StartPoint(), g.StopPoint()
	if math.Abs(stop.Y-start.Y) < 1e-9 {
		return start.X
	}
	t := (y - start.Y) / (stop.Y - start.Y)
	return start.X + t*(stop.X-start.X)
}

// MidPos returns the abscissa of the glyph center, the natural reading-order
// sort key for candidates.
func (g *Glyph) MidPos() float64 {
	return g.box.Center().X
}

func (g *Glyph) String() string {
	return fmt.Sprintf("glyph#%d[%s w=%d]", g.id, g.shape, g.weight)
}

// SortSectionsByWeight returns a copy of the sections sorted by decreasing
// weight, ties broken by section ID for determinism.
func SortSectionsByWeight(sections []*Section) []*Section {
	sorted := append([]*Section(nil), sections...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight() != sorted[j].Weight() {
			return sorted[i].Weight() > sorted[j].Weight()
		}
		return sorted[i].ID() < sorted[j].ID()
	})
	return sorted
}

// SortByWeight returns a copy of the glyphs sorted by decreasing weight,
// ties broken by glyph ID.
func SortByWeight(glyphs []*Glyph) []*Glyph {
	sorted := append([]*Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight() != sorted[j].Weight() {
			return sorted[i].Weight() > sorted[j].Weight()
		}
		return sorted[i].ID() < sorted[j].ID()
	})
	return sorted
}

// SortByMidPos returns a copy of the glyphs sorted by ascending abscissa.
func SortByMidPos(glyphs []*Glyph) []*Glyph {
	sorted := append([]*Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MidPos() < sorted[j].MidPos()
	})
	return sorted
}
