// Package slur provides curve repair: deciding whether a glyph is an
// acceptable slur through its fitted-circle distance and, if not, repairing
// it by merging with neighbors (small glyphs) or rebuilding it from its
// best-fitting sections (large glyphs).
package slur

import (
	"errors"
	"fmt"
	"log/slog"

	"omr-repair/internal/compound"
	"omr-repair/internal/fit"
	"omr-repair/internal/glyph"
	"omr-repair/internal/staff"
	"omr-repair/pkg/geometry"
)

var (
	// ErrNoSeed reports that no section met the weight and distance
	// criteria for seeding a rebuild.
	ErrNoSeed = errors.New("slur: no suitable seed section")

	// ErrNoValidRepair reports that the best achievable fit over the kept
	// sections still exceeds the acceptance threshold.
	ErrNoValidRepair = errors.New("slur: rebuilt sections do not fit a circle")
)

// Inspector repairs the slur candidates of one region. It is confined to
// that region's nest and is not safe for concurrent use.
type Inspector struct {
	nest    *glyph.Nest
	scale   *staff.Scale
	builder *compound.Builder
	logger  *slog.Logger

	// Pixel-resolved thresholds.
	maxCircleDistance float64
	spuriousWeight    float64 // stays in interline² units
	minChunkWeight    int
	boxDx             int
	boxDy             int
}

// NewInspector creates an inspector for one region.
// A nil logger falls back to slog.Default().
func NewInspector(nest *glyph.Nest, sc *staff.Scale, params Params, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		nest:              nest,
		scale:             sc,
		builder:           compound.NewBuilder(nest, logger),
		logger:            logger,
		maxCircleDistance: sc.FractionF(params.MaxCircleDistance),
		spuriousWeight:    params.SpuriousWeight,
		minChunkWeight:    sc.AreaFraction(params.MinChunkWeight),
		boxDx:             sc.Fraction(params.BoxDx),
		boxDy:             sc.Fraction(params.BoxDy),
	}
}

// ComputeCircle fits the approximating circle over the glyph's sections.
func ComputeCircle(g *glyph.Glyph) (fit.Circle, error) {
	return fit.FitSections(g.Sections(), false)
}

// RunPattern processes every slur glyph of the region: first tries to
// extend still-active slurs by merging with neighbors, then re-validates
// every fit and rebuilds the ones that still fail. Per-candidate failures
// are logged and count as no change; the batch never aborts. The number of
// net modifications is returned.
func (ins *Inspector) RunPattern() int {
	modifs := 0

	var slurs []*glyph.Glyph
	for _, g := range ins.nest.Glyphs() {
		if g.Shape() == glyph.ShapeSlur && !g.IsManual() {
			slurs = append(slurs, g)
		}
	}

	// Extension pass. Merging may deactivate other list entries, so
	// activity is rechecked before each item.
	var next []*glyph.Glyph
	for _, seed := range slurs {
		if !seed.Active() {
			next = append(next, seed)
			continue
		}
		larger, err := ins.extend(seed)
		switch {
		case err == nil:
			next = append(next, larger)
			modifs++
		case errors.Is(err, compound.ErrExhausted):
			next = append(next, seed)
		default:
			ins.logger.Warn("slur extension failed", "glyph", seed.ID(), "err", err)
			next = append(next, seed)
		}
	}
	slurs = next

	// Verification pass over every remaining seed.
	for _, seed := range slurs {
		if !seed.Active() {
			continue
		}
		circle, err := ComputeCircle(seed)
		if err == nil && circle.Valid(ins.maxCircleDistance) {
			ins.logger.Debug("valid slur", "glyph", seed.ID(), "distance", circle.Distance())
			continue
		}
		newSlur, err := ins.FixSpurious(seed)
		if err != nil {
			if errors.Is(err, compound.ErrExhausted) || errors.Is(err, ErrNoSeed) || errors.Is(err, ErrNoValidRepair) {
				ins.logger.Debug("no repair for slur", "glyph", seed.ID(), "err", err)
			} else {
				ins.logger.Warn("slur repair failed", "glyph", seed.ID(), "err", err)
			}
			seed.SetShape(glyph.ShapeNone)
			continue
		}
		ins.logger.Debug("slur repaired", "old", seed.ID(), "new", newSlur.ID())
		modifs++
	}

	return modifs
}

// FixSpurious repairs a glyph whose circle distance is too high: small
// glyphs are extended by merging with a neighbor, large glyphs are rebuilt
// from their sections.
func (ins *Inspector) FixSpurious(g *glyph.Glyph) (*glyph.Glyph, error) {
	if g.NormalizedWeight(ins.scale) <= ins.spuriousWeight {
		return ins.extend(g)
	}
	return ins.FixLarge(g)
}

// extend suspects a slur segmented by another symbol and tries to rebuild
// it as a compound with a neighboring glyph.
func (ins *Inspector) extend(seed *glyph.Glyph) (*glyph.Glyph, error) {
	adapter := &slurAdapter{ins: ins, seed: seed}
	return ins.builder.Search(seed, ins.nest.Glyphs(), adapter)
}

// FixLarge suspects a slur with a stuck object and rebuilds the true slur
// portion from the underlying sections. Every original section ends up in
// exactly one of "kept" (the new slur) or "left" (released to the pool);
// left sections are freed regardless of outcome.
func (ins *Inspector) FixLarge(oldSlur *glyph.Glyph) (result *glyph.Glyph, err error) {
	members := glyph.SortSectionsByWeight(oldSlur.Sections())

	seedSection, seedDist := ins.findSeedSection(members)
	if seedSection == nil {
		oldSlur.SetShape(glyph.ShapeNone)
		return nil, ErrNoSeed
	}
	ins.logger.Debug("slur seed section",
		"glyph", oldSlur.ID(), "section", seedSection.ID(), "distance", seedDist)

	kept, left := ins.findSectionsOnCircle(members, seedSection, seedDist)
	kept, left = ins.removeIsolatedSections(seedSection, kept, left)

	// Cleanup runs on every path: the original glyph is discarded and the
	// left-over sections are freed for re-use by a later pass.
	defer func() {
		oldSlur.SetShape(glyph.ShapeNone)
		ins.nest.RemoveGlyph(oldSlur)
		ins.nest.ReleaseSections(left)
	}()

	newSlur, buildErr := ins.buildFinalSlur(kept)
	if buildErr != nil {
		left = append(left, kept...)
		return nil, buildErr
	}
	return newSlur, nil
}

// findSeedSection picks the section with the best single-section circle fit
// among those whose weight is significant. Members arrive sorted by
// decreasing weight.
func (ins *Inspector) findSeedSection(members []*glyph.Section) (*glyph.Section, float64) {
	var seed *glyph.Section
	seedDist := 0.0

	for _, s := range members {
		if s.Weight() < ins.minChunkWeight {
			continue
		}
		circle, err := fit.FitSections([]*glyph.Section{s}, false)
		if err != nil {
			continue
		}
		d := circle.Distance()
		if d <= ins.maxCircleDistance && (seed == nil || d < seedDist) {
			seed, seedDist = s, d
		}
	}
	return seed, seedDist
}

// findSectionsOnCircle grows the kept set greedily from the seed, in
// decreasing weight order, accepting a section only when the refitted
// circle distance does not exceed the best distance achieved so far. The
// running best is monotonically non-increasing by construction.
func (ins *Inspector) findSectionsOnCircle(members []*glyph.Section, seed *glyph.Section, seedDist float64) (kept, left []*glyph.Section) {
	kept = []*glyph.Section{seed}
	best := seedDist

	for _, s := range members {
		if s == seed {
			continue
		}
		trial := append(append([]*glyph.Section(nil), kept...), s)
		circle, err := fit.FitSections(trial, false)
		if err != nil {
			ins.logger.Debug("section discarded, fit failed", "section", s.ID(), "err", err)
			left = append(left, s)
			continue
		}
		if d := circle.Distance(); d <= best {
			kept = append(kept, s)
			best = d
			ins.logger.Debug("section kept", "section", s.ID(), "distance", d)
		} else {
			left = append(left, s)
			ins.logger.Debug("section discarded", "section", s.ID(), "distance", d)
		}
	}
	return kept, left
}

// removeIsolatedSections keeps only the proximity-connected component
// containing the seed: starting from the seed box, any kept section whose
// margin-grown box intersects the growing box is absorbed, expanding the
// box, until a fixed point. Sections never absorbed move to left.
func (ins *Inspector) removeIsolatedSections(seed *glyph.Section, kept, left []*glyph.Section) ([]*glyph.Section, []*glyph.Section) {
	slurBox := seed.ContourBox()
	toCheck := make([]*glyph.Section, 0, len(kept))
	for _, s := range kept {
		if s != seed {
			toCheck = append(toCheck, s)
		}
	}
	kept = []*glyph.Section{seed}

	for progress := true; progress; {
		progress = false
		remaining := toCheck[:0]
		for _, s := range toCheck {
			grown := s.ContourBox().Grow(ins.boxDx, ins.boxDy)
			if grown.Intersects(slurBox) {
				slurBox = slurBox.Union(grown)
				kept = append(kept, s)
				progress = true
			} else {
				remaining = append(remaining, s)
			}
		}
		toCheck = remaining
	}

	return kept, append(left, toCheck...)
}

// buildFinalSlur refits a circle over the kept sections and, if acceptable,
// registers the new slur glyph built solely from them.
func (ins *Inspector) buildFinalSlur(kept []*glyph.Section) (*glyph.Glyph, error) {
	circle, err := fit.FitSections(kept, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoValidRepair, err)
	}
	if !circle.Valid(ins.maxCircleDistance) {
		return nil, fmt.Errorf("%w: distance %.4f", ErrNoValidRepair, circle.Distance())
	}

	newSlur := ins.nest.BuildGlyph(kept)
	newSlur.SetShape(glyph.ShapeSlur)
	ins.logger.Debug("built slur", "glyph", newSlur.ID(), "distance", circle.Distance(), "sections", len(kept))
	return newSlur, nil
}

// slurAdapter drives the compound search for small spurious slurs.
type slurAdapter struct {
	ins  *Inspector
	seed *glyph.Glyph
}

// Suitable accepts unclassified glyphs, generic clutter, and other slurs
// not manually fixed.
func (a *slurAdapter) Suitable(g *glyph.Glyph) bool {
	if !g.Active() {
		return false
	}
	if !g.Shape().Known() {
		return true
	}
	if g.IsManual() {
		return false
	}
	return g.Shape() == glyph.ShapeSlur || g.Shape() == glyph.ShapeClutter
}

// Valid accepts a merge whose fitted circle is within the slur threshold.
func (a *slurAdapter) Valid(compound *glyph.Glyph) bool {
	circle, err := fit.FitSections(compound.Sections(), false)
	if err != nil {
		return false
	}
	return circle.Valid(a.ins.maxCircleDistance)
}

// SearchBox is the seed contour box grown by the slur margins.
func (a *slurAdapter) SearchBox() geometry.RectInt {
	return a.seed.ContourBox().Grow(a.ins.boxDx, a.ins.boxDy)
}

func (a *slurAdapter) ChosenShape() glyph.Shape {
	return glyph.ShapeSlur
}
