// Package compound provides the generic greedy merge search: extending a
// seed glyph with weight-ordered neighboring glyphs until a pluggable
// validity predicate accepts the merge.
package compound

import (
	"errors"
	"log/slog"

	"omr-repair/internal/glyph"
	"omr-repair/pkg/geometry"
)

// ErrExhausted reports that no neighbor produced a valid merge.
var ErrExhausted = errors.New("compound: no neighbor produced a valid merge")

// Adapter parameterizes a compound search for one target class.
type Adapter interface {
	// Suitable filters pool glyphs allowed to participate in the merge.
	Suitable(g *glyph.Glyph) bool

	// Valid decides whether a tentative merge is an acceptable instance of
	// the target class. It is called on a transient glyph.
	Valid(compound *glyph.Glyph) bool

	// SearchBox bounds the search scope, typically the seed contour box
	// grown by class-specific margins.
	SearchBox() geometry.RectInt

	// ChosenShape is the label recorded on a successful compound.
	ChosenShape() glyph.Shape
}

// Builder runs compound searches against one region's nest. Not safe for
// concurrent use; one builder per region.
type Builder struct {
	nest   *glyph.Nest
	logger *slog.Logger
}

// NewBuilder creates a Builder over the region nest. A nil logger falls
// back to slog.Default().
func NewBuilder(nest *glyph.Nest, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{nest: nest, logger: logger}
}

// Search tries to merge the seed with neighboring glyphs from the pool.
//
// The pool is restricted to active glyphs intersecting the adapter's search
// box and accepted by Suitable, then ordered by decreasing weight: heavier
// neighbors are more likely to be the real missing piece and converge the
// search faster. The first merge accepted by Valid is registered in the
// nest (taking over the member sections, which deactivates the seed and
// the merged glyph), labeled with the adapter's chosen shape, and returned.
// ErrExhausted is returned when no neighbor fits.
func (b *Builder) Search(seed *glyph.Glyph, pool []*glyph.Glyph, a Adapter) (*glyph.Glyph, error) {
	box := a.SearchBox()

	var candidates []*glyph.Glyph
	for _, g := range pool {
		if g == seed || !g.Active() {
			continue
		}
		if !box.Intersects(g.ContourBox()) {
			continue
		}
		if !a.Suitable(g) {
			continue
		}
		candidates = append(candidates, g)
	}
	candidates = glyph.SortByWeight(candidates)

	for _, g := range candidates {
		trial := b.nest.BuildTransient(append(seed.Sections(), g.Sections()...))
		if !a.Valid(trial) {
			continue
		}
		comp := b.nest.AddGlyph(trial)
		comp.SetShape(a.ChosenShape())
		b.logger.Debug("compound built",
			"seed", seed.ID(),
			"merged", g.ID(),
			"compound", comp.ID(),
			"shape", comp.Shape().String())
		return comp, nil
	}

	return nil, ErrExhausted
}
