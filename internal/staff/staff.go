package staff

import (
	"math"

	"omr-repair/pkg/geometry"
)

// Line is a (possibly sloped) staff line, described by its ordinates at the
// staff's left and right abscissae.
type Line struct {
	LeftY  float64 `json:"left_y"`
	RightY float64 `json:"right_y"`
}

// YAt returns the line ordinate at abscissa x, interpolating between the
// staff edges and extrapolating beyond them.
func (l Line) yAt(x, left, right float64) float64 {
	if right <= left {
		return l.LeftY
	}
	t := (x - left) / (right - left)
	return l.LeftY + t*(l.RightY-l.LeftY)
}

// Info describes one staff: its horizontal extent and its first (top) and
// last (bottom) lines.
type Info struct {
	Index  int     `json:"index"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    Line    `json:"top"`
	Bottom Line    `json:"bottom"`
}

// TopYAt returns the ordinate of the first staff line at abscissa x.
func (s *Info) TopYAt(x float64) float64 {
	return s.Top.yAt(x, s.Left, s.Right)
}

// BottomYAt returns the ordinate of the last staff line at abscissa x.
func (s *Info) BottomYAt(x float64) float64 {
	return s.Bottom.yAt(x, s.Left, s.Right)
}

// Height returns the staff height (top line to bottom line) measured at the
// staff middle.
func (s *Info) Height() float64 {
	mid := (s.Left + s.Right) / 2
	return s.BottomYAt(mid) - s.TopYAt(mid)
}

// middleY returns the vertical middle of the staff at abscissa x.
func (s *Info) middleY(x float64) float64 {
	return (s.TopYAt(x) + s.BottomYAt(x)) / 2
}

// Manager holds the ordered staves of a region and answers lookup queries.
type Manager struct {
	staves []*Info
}

// NewManager creates a Manager over the given staves, ordered top to bottom.
// Indices are (re)assigned from the ordering.
func NewManager(staves ...*Info) *Manager {
	for i, s := range staves {
		s.Index = i
	}
	return &Manager{staves: staves}
}

// Count returns the number of staves.
func (m *Manager) Count() int {
	return len(m.staves)
}

// Staff returns the staff at the given index, or nil if out of range.
func (m *Manager) Staff(i int) *Info {
	if i < 0 || i >= len(m.staves) {
		return nil
	}
	return m.staves[i]
}

// IndexOf returns the index of the given staff, or -1 if unknown.
func (m *Manager) IndexOf(s *Info) int {
	for i, st := range m.staves {
		if st == s {
			return i
		}
	}
	return -1
}

// StaffAt returns the staff whose vertical middle is nearest to the point.
func (m *Manager) StaffAt(p geometry.Point2D) *Info {
	var best *Info
	bestDist := math.Inf(1)
	for _, s := range m.staves {
		d := math.Abs(p.Y - s.middleY(p.X))
		if d < bestDist {
			bestDist = d
			best = s
		}
	}
	return best
}
