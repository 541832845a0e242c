package slur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omr-repair/internal/compound"
	"omr-repair/internal/fit"
	"omr-repair/internal/glyph"
	"omr-repair/internal/staff"
)

// Lattice offsets (dx, dy) with dx²+dy² = 65², so that pixel centers land
// exactly on a circle of radius 65. The axis points come last.
var circle65 = [][2]int{
	{16, 63}, {16, -63}, {-16, 63}, {-16, -63},
	{63, 16}, {63, -16}, {-63, 16}, {-63, -16},
	{33, 56}, {33, -56}, {-33, 56}, {-33, -56},
	{56, 33}, {56, -33}, {-56, 33}, {-56, -33},
	{25, 60}, {25, -60}, {-25, 60}, {-25, -60},
	{60, 25}, {60, -25}, {-60, 25}, {-60, -25},
	{39, 52}, {39, -52}, {-39, 52}, {-39, -52},
	{52, 39}, {52, -39}, {-52, 39}, {-52, -39},
	{0, 65}, {0, -65}, {65, 0}, {-65, 0},
}

// Lattice offsets on a radius-80 circle, used as off-curve pollution.
var circle80 = [][2]int{
	{0, 80}, {0, -80}, {80, 0}, {-80, 0},
	{48, 64}, {48, -64}, {-48, 64}, {-48, -64},
	{64, 48}, {64, -48}, {-64, 48}, {-64, -48},
}

// latticeSection registers a section of single pixels at the given offsets
// around center (cx+0.5, cy+0.5).
func latticeSection(n *glyph.Nest, id, cx, cy int, offsets [][2]int) *glyph.Section {
	runs := make([]glyph.Run, 0, len(offsets))
	for _, o := range offsets {
		runs = append(runs, glyph.Run{X: cx + o[0], Y: cy + o[1], Length: 1})
	}
	s := glyph.NewSection(id, runs)
	n.RegisterSection(s)
	return s
}

// seedSection is 12 exact circle pixels plus one radially perturbed pair at
// (0, -65), giving a small but clearly nonzero fit distance (about 0.38 px).
func seedSection(n *glyph.Nest, id, cx, cy int) *glyph.Section {
	runs := make([]glyph.Run, 0, 14)
	for _, o := range circle65[:12] {
		runs = append(runs, glyph.Run{X: cx + o[0], Y: cy + o[1], Length: 1})
	}
	runs = append(runs,
		glyph.Run{X: cx, Y: cy - 66, Length: 1},
		glyph.Run{X: cx, Y: cy - 64, Length: 1})
	s := glyph.NewSection(id, runs)
	n.RegisterSection(s)
	return s
}

// blockSection registers a filled 10x20 block, a shape no circle fits.
func blockSection(n *glyph.Nest, id, x, y int) *glyph.Section {
	runs := make([]glyph.Run, 0, 10)
	for col := 0; col < 10; col++ {
		runs = append(runs, glyph.Run{X: x + col, Y: y, Length: 20})
	}
	s := glyph.NewSection(id, runs)
	n.RegisterSection(s)
	return s
}

// newTestInspector builds an inspector at interline 8 (so the acceptance
// distance is 0.8 px) with the seed weight gate lowered to fit the small
// lattice sections.
func newTestInspector(t *testing.T, n *glyph.Nest) *Inspector {
	t.Helper()
	sc, err := staff.NewScale(8)
	require.NoError(t, err)
	p := DefaultParams()
	p.MinChunkWeight = 0.15 // 10 px
	return NewInspector(n, sc, p, nil)
}

func TestFindSeedSection(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	// Only the seed section qualifies: the lattice arc is under the weight
	// gate at 8 px, the block is heavy but fits no circle.
	seed := seedSection(n, 1, 300, 300)
	light := latticeSection(n, 2, 300, 300, circle65[12:20])
	block := blockSection(n, 3, 500, 300)

	members := glyph.SortSectionsByWeight([]*glyph.Section{light, block, seed})
	got, dist := ins.findSeedSection(members)

	require.Same(t, seed, got)
	assert.Greater(t, dist, 0.1)
	assert.LessOrEqual(t, dist, ins.maxCircleDistance)
}

func TestFindSeedSection_NoneQualifies(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	block := blockSection(n, 1, 500, 300)
	light := latticeSection(n, 2, 300, 300, circle65[:8])

	got, _ := ins.findSeedSection([]*glyph.Section{block, light})
	assert.Nil(t, got)
}

func TestFindSectionsOnCircle_MonotonicGrowth(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	seed := seedSection(n, 1, 300, 300)
	good := latticeSection(n, 2, 300, 300, circle65[12:20])
	bad := latticeSection(n, 3, 300, 300, circle80)
	block := blockSection(n, 4, 500, 300)

	seedCircle, err := fit.FitSections([]*glyph.Section{seed}, false)
	require.NoError(t, err)
	seedDist := seedCircle.Distance()

	members := glyph.SortSectionsByWeight([]*glyph.Section{good, bad, block, seed})
	kept, left := ins.findSectionsOnCircle(members, seed, seedDist)

	// Exactly the sections on the seed circle survive; the off-circle ones
	// would degrade the fit and go to left.
	assert.ElementsMatch(t, []*glyph.Section{seed, good}, kept)
	assert.ElementsMatch(t, []*glyph.Section{bad, block}, left)

	// The partition is exact and the final fit never got worse.
	assert.ElementsMatch(t, members, append(append([]*glyph.Section(nil), kept...), left...))
	final, err := fit.FitSections(kept, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, final.Distance(), seedDist+1e-9)
}

func TestRemoveIsolatedSections(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	// Margins at interline 8 are dx=6, dy=3. Strips at x=0, 5, 10 chain
	// together; the strip at x=40 is out of reach.
	seed := latticeStrip(n, 1, 0)
	a := latticeStrip(n, 2, 5)
	b := latticeStrip(n, 3, 10)
	far := latticeStrip(n, 4, 40)

	// Ordering puts the directly-reachable strip last, so absorbing the
	// chain takes several fixed-point iterations.
	kept, left := ins.removeIsolatedSections(seed, []*glyph.Section{seed, far, b, a}, nil)
	assert.ElementsMatch(t, []*glyph.Section{seed, a, b}, kept)
	assert.ElementsMatch(t, []*glyph.Section{far}, left)

	// Pre-existing left entries are preserved.
	prior := latticeStrip(n, 5, 100)
	kept, left = ins.removeIsolatedSections(seed, []*glyph.Section{seed, a}, []*glyph.Section{prior})
	assert.ElementsMatch(t, []*glyph.Section{seed, a}, kept)
	assert.ElementsMatch(t, []*glyph.Section{prior}, left)
}

// latticeStrip registers a 1x10 vertical strip at abscissa x.
func latticeStrip(n *glyph.Nest, id, x int) *glyph.Section {
	s := glyph.NewSection(id, []glyph.Run{{X: x, Y: 0, Length: 10}})
	n.RegisterSection(s)
	return s
}

func TestFixSpurious_LargeGlyphRebuilt(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	seed := seedSection(n, 1, 300, 300)
	good := latticeSection(n, 2, 300, 300, circle65[12:20])
	block := blockSection(n, 3, 400, 300)

	// 222 px is 3.5 interline², well over the spurious split of 1.5, so the
	// glyph takes the rebuild path.
	old := n.BuildGlyph([]*glyph.Section{seed, good, block})
	old.SetShape(glyph.ShapeSlur)

	repaired, err := ins.FixSpurious(old)
	require.NoError(t, err)

	assert.Equal(t, glyph.ShapeSlur, repaired.Shape())
	assert.True(t, repaired.Active())
	assert.ElementsMatch(t, []*glyph.Section{seed, good}, repaired.Sections())

	// The stuck block is released, the original glyph discarded.
	assert.Nil(t, block.Glyph())
	assert.Equal(t, glyph.ShapeNone, old.Shape())
	assert.NotContains(t, n.Glyphs(), old)

	circle, err := ComputeCircle(repaired)
	require.NoError(t, err)
	assert.True(t, circle.Valid(ins.maxCircleDistance))
}

func TestFixLarge_NoSeed(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	old := n.BuildGlyph([]*glyph.Section{blockSection(n, 1, 400, 300)})
	old.SetShape(glyph.ShapeSlur)

	_, err := ins.FixLarge(old)
	require.ErrorIs(t, err, ErrNoSeed)
	assert.Equal(t, glyph.ShapeNone, old.Shape())
}

func TestBuildFinalSlur_RejectsBadFit(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	block := blockSection(n, 1, 400, 300)
	_, err := ins.buildFinalSlur([]*glyph.Section{block})
	require.ErrorIs(t, err, ErrNoValidRepair)
}

func TestFixSpurious_SmallGlyphExtends(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	// 14 px is 0.22 interline², under the spurious split: extension path.
	seed := n.BuildGlyph([]*glyph.Section{seedSection(n, 1, 300, 300)})
	seed.SetShape(glyph.ShapeSlur)

	rest := n.BuildGlyph([]*glyph.Section{latticeSection(n, 2, 300, 300, circle65[12:20])})
	rest.SetShape(glyph.ShapeClutter)

	merged, err := ins.FixSpurious(seed)
	require.NoError(t, err)

	assert.Equal(t, glyph.ShapeSlur, merged.Shape())
	assert.Equal(t, seed.Weight()+rest.Weight(), merged.Weight())
	assert.True(t, merged.Active())
	assert.False(t, seed.Active())
	assert.False(t, rest.Active())
}

func TestFixSpurious_SmallGlyphExhausted(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	seed := n.BuildGlyph([]*glyph.Section{seedSection(n, 1, 300, 300)})
	seed.SetShape(glyph.ShapeSlur)

	// The only neighbor would wreck the fit.
	noise := n.BuildGlyph([]*glyph.Section{blockSection(n, 2, 310, 300)})
	noise.SetShape(glyph.ShapeClutter)

	_, err := ins.FixSpurious(seed)
	require.ErrorIs(t, err, compound.ErrExhausted)
	assert.True(t, seed.Active())
}

func TestRunPattern(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	// A valid slur: exact circle pixels, fit distance near zero.
	valid := n.BuildGlyph([]*glyph.Section{latticeSection(n, 1, 200, 200, circle65[20:])})
	valid.SetShape(glyph.ShapeSlur)

	// A large slur with a stuck block: repairable.
	seed := seedSection(n, 2, 600, 200)
	block := blockSection(n, 3, 700, 200)
	broken := n.BuildGlyph([]*glyph.Section{seed, block})
	broken.SetShape(glyph.ShapeSlur)

	// Pure garbage labeled slur: unrepairable, label must be cleared.
	garbage := n.BuildGlyph([]*glyph.Section{blockSection(n, 4, 1000, 200)})
	garbage.SetShape(glyph.ShapeSlur)

	modifs := ins.RunPattern()
	assert.Equal(t, 1, modifs)

	// The valid slur is untouched.
	assert.Equal(t, glyph.ShapeSlur, valid.Shape())
	assert.True(t, valid.Active())

	// The broken one was rebuilt around its on-circle seed.
	assert.NotContains(t, n.Glyphs(), broken)
	require.NotNil(t, seed.Glyph())
	assert.Equal(t, glyph.ShapeSlur, seed.Glyph().Shape())
	assert.Nil(t, block.Glyph())

	// The garbage lost its label but keeps its sections.
	assert.Equal(t, glyph.ShapeNone, garbage.Shape())
	assert.True(t, garbage.Active())
}

func TestRunPattern_SkipsManual(t *testing.T) {
	n := glyph.NewNest()
	ins := newTestInspector(t, n)

	// A manually labeled glyph is never revisited, even with a bad fit.
	g := n.BuildGlyph([]*glyph.Section{blockSection(n, 1, 400, 300)})
	g.SetShape(glyph.ShapeSlur)
	g.SetManual(true)

	assert.Equal(t, 0, ins.RunPattern())
	assert.Equal(t, glyph.ShapeSlur, g.Shape())
}
