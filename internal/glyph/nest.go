package glyph

import (
	"sort"

	"omr-repair/pkg/geometry"
)

// Nest is the per-region glyph pool. It registers sections, assigns glyph
// identifiers and maintains the one-active-owner invariant: a section
// belongs to at most one active glyph, tracked through its backlink.
//
// A Nest is confined to one region and is not safe for concurrent use;
// distinct regions get distinct nests and may be processed in parallel.
type Nest struct {
	nextID   int
	glyphs   []*Glyph
	sections map[*Section]struct{}
}

// NewNest creates an empty nest.
func NewNest() *Nest {
	return &Nest{
		nextID:   1,
		sections: make(map[*Section]struct{}),
	}
}

// RegisterSection makes the nest aware of a section, so that alien pixel
// queries can see it even while it is unowned.
func (n *Nest) RegisterSection(s *Section) {
	n.sections[s] = struct{}{}
}

// BuildTransient assembles a glyph over the sections without registering it
// and without touching section ownership. Used for tentative merges.
func (n *Nest) BuildTransient(sections []*Section) *Glyph {
	return newGlyph(sections)
}

// AddGlyph registers the glyph in the nest, activating it: every member
// section's backlink is repointed at it, deactivating any previous owner.
// If an already-registered glyph has the exact same membership it is
// returned instead.
func (n *Nest) AddGlyph(g *Glyph) *Glyph {
	if g.id != 0 {
		return g
	}
	if twin := n.findTwin(g); twin != nil {
		return twin
	}
	g.id = n.nextID
	n.nextID++
	n.glyphs = append(n.glyphs, g)
	for _, s := range g.sections {
		n.RegisterSection(s)
		s.glyph = g
	}
	return g
}

// BuildGlyph assembles and registers a glyph over the sections.
func (n *Nest) BuildGlyph(sections []*Section) *Glyph {
	return n.AddGlyph(n.BuildTransient(sections))
}

// RemoveGlyph removes the glyph from the nest. Section ownership is not
// touched; callers release or re-own sections explicitly.
func (n *Nest) RemoveGlyph(g *Glyph) {
	for i, other := range n.glyphs {
		if other == g {
			n.glyphs = append(n.glyphs[:i], n.glyphs[i+1:]...)
			return
		}
	}
}

// ReleaseSections frees the sections back to the pool: any backlink is
// cleared so the sections can be picked up by a later pass.
func (n *Nest) ReleaseSections(sections []*Section) {
	for _, s := range sections {
		s.glyph = nil
	}
}

// Glyphs returns a snapshot of the registered glyphs, ordered by ID.
func (n *Nest) Glyphs() []*Glyph {
	out := append([]*Glyph(nil), n.glyphs...)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// AlienPixelsIn counts the pixels inside box that belong to sections not
// owned by the given glyph. Unowned sections count as alien too.
func (n *Nest) AlienPixelsIn(owner *Glyph, box geometry.RectInt) int {
	count := 0
	for s := range n.sections {
		if s.glyph == owner {
			continue
		}
		count += s.PixelsIn(box)
	}
	return count
}

// findTwin looks for a registered glyph with identical membership.
func (n *Nest) findTwin(g *Glyph) *Glyph {
	sig := membershipKey(g.sections)
	for _, other := range n.glyphs {
		if len(other.sections) == len(g.sections) && membershipKey(other.sections) == sig {
			return other
		}
	}
	return nil
}

func membershipKey(sections []*Section) string {
	ids := make([]int, len(sections))
	for i, s := range sections {
		ids[i] = s.id
	}
	sort.Ints(ids)
	key := make([]byte, 0, len(ids)*4)
	for _, id := range ids {
		key = append(key, byte(id), byte(id>>8), byte(id>>16), ',')
	}
	return string(key)
}
