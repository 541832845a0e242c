// Package glyph provides the section/glyph data model shared by the
// validation and repair packages: immutable run-length Sections, mutable
// Glyph aggregates, and the per-region Nest that tracks membership.
package glyph

// Shape is the classification label carried by a glyph.
type Shape int

const (
	// ShapeNone marks an unclassified glyph.
	ShapeNone Shape = iota
	// ShapeSlur marks a curved symbol fitted by a circle arc.
	ShapeSlur
	// ShapeClutter marks generic noise, still available as merge material.
	ShapeClutter
	// ShapeThinBarline marks a thin vertical barline.
	ShapeThinBarline
	// ShapeThickBarline marks a thick vertical barline.
	ShapeThickBarline
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "None"
	case ShapeSlur:
		return "Slur"
	case ShapeClutter:
		return "Clutter"
	case ShapeThinBarline:
		return "ThinBarline"
	case ShapeThickBarline:
		return "ThickBarline"
	default:
		return "Unknown"
	}
}

// Known reports whether the shape is an actual classification.
func (s Shape) Known() bool {
	return s != ShapeNone
}
