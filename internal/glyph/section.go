package glyph

import (
	"omr-repair/pkg/geometry"
)

// Run is one vertical run of foreground pixels: the column X, the starting
// row Y, and the run Length going down. Runs are the unit the upstream
// pixel decomposition emits.
type Run struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Length int `json:"length"`
}

// Section is an immutable connected group of runs produced by the upstream
// run-length extraction. Sections are referenced by glyphs, never copied;
// the only mutable state is the backlink to the glyph currently owning the
// section.
type Section struct {
	id     int
	runs   []Run
	weight int
	box    geometry.RectInt

	glyph *Glyph
}

// NewSection creates a section from its runs. Weight and contour box are
// computed once here.
func NewSection(id int, runs []Run) *Section {
	s := &Section{id: id, runs: append([]Run(nil), runs...)}
	for i, r := range s.runs {
		if r.Length <= 0 {
			continue
		}
		s.weight += r.Length
		rb := geometry.RectInt{X: r.X, Y: r.Y, Width: 1, Height: r.Length}
		if i == 0 {
			s.box = rb
		} else {
			s.box = s.box.Union(rb)
		}
	}
	return s
}

// ID returns the section identifier assigned by the upstream builder.
func (s *Section) ID() int {
	return s.id
}

// Weight returns the pixel count of the section.
func (s *Section) Weight() int {
	return s.weight
}

// ContourBox returns the bounding box of the section.
func (s *Section) ContourBox() geometry.RectInt {
	return s.box
}

// Runs returns the section runs. The returned slice must not be modified.
func (s *Section) Runs() []Run {
	return s.runs
}

// Glyph returns the glyph currently owning this section, or nil.
func (s *Section) Glyph() *Glyph {
	return s.glyph
}

// CumulatePoints appends the (x, y) coordinates of every pixel of the
// section to the given slices and returns them. Pixel centers are used.
func (s *Section) CumulatePoints(xs, ys []float64) ([]float64, []float64) {
	for _, r := range s.runs {
		for dy := 0; dy < r.Length; dy++ {
			xs = append(xs, float64(r.X)+0.5)
			ys = append(ys, float64(r.Y+dy)+0.5)
		}
	}
	return xs, ys
}

// PixelsIn returns how many pixels of the section fall inside the box.
func (s *Section) PixelsIn(box geometry.RectInt) int {
	if box.Empty() || !s.box.Intersects(box) {
		return 0
	}
	count := 0
	for _, r := range s.runs {
		if r.X < box.X || r.X >= box.X+box.Width {
			continue
		}
		lo := max(r.Y, box.Y)
		hi := min(r.Y+r.Length, box.Y+box.Height)
		if hi > lo {
			count += hi - lo
		}
	}
	return count
}
