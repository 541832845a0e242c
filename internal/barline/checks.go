package barline

import (
	"fmt"
	"math"

	"omr-repair/internal/check"
)

// buildSuite assembles the ordered barline check suite. Order is
// load-bearing: Top and Bottom record the staff anchors that Anchor reads,
// and the context areas are initialized before any check runs.
func (c *Checker) buildSuite() *check.Suite[*Context] {
	s := check.NewSuite[*Context]("Bar", c.params.MinSuiteGrade, c.logger)

	s.Add(1, c.topCheck())
	s.Add(1, c.bottomCheck())
	s.Add(1, c.leftCheck())
	s.Add(1, c.rightCheck())
	s.Add(1, c.heightDiffCheck())
	s.Add(1, c.anchorCheck())

	if !c.rough {
		s.Add(1, c.chunkCheck("TLChunk",
			"Check there is no big chunk stuck on upper left side of stick",
			true, true, FailureTopLeftChunk))
		s.Add(1, c.chunkCheck("TRChunk",
			"Check there is no big chunk stuck on upper right side of stick",
			true, false, FailureTopRightChunk))
		s.Add(1, c.chunkCheck("BLChunk",
			"Check there is no big chunk stuck on lower left side of stick",
			false, true, FailureBottomLeftChunk))
		s.Add(1, c.chunkCheck("BRChunk",
			"Check there is no big chunk stuck on lower right side of stick",
			false, false, FailureBottomRightChunk))
	}

	return s
}

// dyBounds picks the vertical shift band: rough part-defining sticks get
// the loose rough band, everything else the tight one.
func (c *Checker) dyBounds(ctx *Context) (low, high float64) {
	if c.rough && ctx.PartDefining {
		return c.params.StaffShiftDyLowRough, c.params.StaffShiftDyHighRough
	}
	return c.params.StaffShiftDyLow, c.params.StaffShiftDyHigh
}

// dxBounds picks the horizontal position band for the current regime.
func (c *Checker) dxBounds() (low, high float64) {
	if c.rough {
		return c.params.StaffDxLowRough, c.params.StaffDxHighRough
	}
	return c.params.StaffDxLow, c.params.StaffDxHigh
}

// heightBounds picks the length-difference band for the current regime.
func (c *Checker) heightBounds() (low, high float64) {
	if c.rough {
		return c.params.HeightDiffLowRough, c.params.HeightDiffHighRough
	}
	return c.params.HeightDiffLow, c.params.HeightDiffHigh
}

// topCheck measures how far the stick top is from the top line of its
// nearest staff. A distance within the low band records the top anchor.
func (c *Checker) topCheck() *check.Check[*Context] {
	return &check.Check[*Context]{
		Name:        "Top",
		Description: "Check that top of stick is close to top of staff",
		Low:         c.params.StaffShiftDyLow,
		High:        c.params.StaffShiftDyHigh,
		Covariant:   false,
		Bounds:      c.dyBounds,
		Value: func(ctx *Context) (float64, error) {
			start := ctx.Stick.StartPoint()
			st := c.staves.StaffAt(start)
			if st == nil {
				return 0, fmt.Errorf("no staff near point (%.0f,%.0f)", start.X, start.Y)
			}
			dy := c.scale.PixelsToFrac(math.Abs(st.TopYAt(start.X) - start.Y))
			if low, _ := c.dyBounds(ctx); dy <= low {
				ctx.TopStaff = ctx.TopArea
			}
			return dy, nil
		},
	}
}

// bottomCheck measures how far the stick bottom is from the bottom line of
// its nearest staff. A distance within the low band records the bottom
// anchor.
func (c *Checker) bottomCheck() *check.Check[*Context] {
	return &check.Check[*Context]{
		Name:        "Bottom",
		Description: "Check that bottom of stick is close to bottom of staff",
		Low:         c.params.StaffShiftDyLow,
		High:        c.params.StaffShiftDyHigh,
		Covariant:   false,
		Bounds:      c.dyBounds,
		Value: func(ctx *Context) (float64, error) {
			stop := ctx.Stick.StopPoint()
			st := c.staves.StaffAt(stop)
			if st == nil {
				return 0, fmt.Errorf("no staff near point (%.0f,%.0f)", stop.X, stop.Y)
			}
			dy := c.scale.PixelsToFrac(math.Abs(st.BottomYAt(stop.X) - stop.Y))
			if low, _ := c.dyBounds(ctx); dy <= low {
				ctx.BotStaff = ctx.BottomArea
			}
			return dy, nil
		},
	}
}

// leftCheck verifies the stick lies right of the staff left edge, for every
// staff in the stick's vertical range.
func (c *Checker) leftCheck() *check.Check[*Context] {
	low, high := c.dxBounds()
	return &check.Check[*Context]{
		Name:        "Left",
		Description: "Check that stick is on the right of staff beginning bar",
		Low:         low,
		High:        high,
		Covariant:   true,
		FailureTag:  FailureOutsideStaffWidth,
		Value: func(ctx *Context) (float64, error) {
			dist := math.Inf(1)
			for i := ctx.TopArea; i <= ctx.BottomArea; i++ {
				st := c.staves.Staff(i)
				if st == nil {
					return 0, fmt.Errorf("no staff at index %d", i)
				}
				y := (st.TopYAt(st.Left) + st.BottomYAt(st.Left)) / 2
				x := ctx.Stick.PositionAt(y)
				dist = math.Min(dist, x-st.Left)
			}
			if math.IsInf(dist, 1) {
				return 0, fmt.Errorf("stick spans no staff")
			}
			return c.scale.PixelsToFrac(dist), nil
		},
	}
}

// rightCheck verifies the stick lies left of the staff right edge, for
// every staff in the stick's vertical range.
func (c *Checker) rightCheck() *check.Check[*Context] {
	low, high := c.dxBounds()
	return &check.Check[*Context]{
		Name:        "Right",
		Description: "Check that stick is on the left of staff ending bar",
		Low:         low,
		High:        high,
		Covariant:   true,
		FailureTag:  FailureOutsideStaffWidth,
		Value: func(ctx *Context) (float64, error) {
			dist := math.Inf(1)
			for i := ctx.TopArea; i <= ctx.BottomArea; i++ {
				st := c.staves.Staff(i)
				if st == nil {
					return 0, fmt.Errorf("no staff at index %d", i)
				}
				y := (st.TopYAt(st.Right) + st.BottomYAt(st.Right)) / 2
				x := ctx.Stick.PositionAt(y)
				dist = math.Min(dist, st.Right-x)
			}
			if math.IsInf(dist, 1) {
				return 0, fmt.Errorf("stick spans no staff")
			}
			return c.scale.PixelsToFrac(dist), nil
		},
	}
}

// heightDiffCheck verifies the stick is about as long as the smallest staff
// in its range.
func (c *Checker) heightDiffCheck() *check.Check[*Context] {
	low, high := c.heightBounds()
	return &check.Check[*Context]{
		Name:        "HeightDiff",
		Description: "Check that stick is as long as minimum staff height",
		Low:         low,
		High:        high,
		Covariant:   false,
		FailureTag:  FailureTooShort,
		Value: func(ctx *Context) (float64, error) {
			height := math.Inf(1)
			for i := ctx.TopArea; i <= ctx.BottomArea; i++ {
				st := c.staves.Staff(i)
				if st == nil {
					return 0, fmt.Errorf("no staff at index %d", i)
				}
				height = math.Min(height, st.Height())
			}
			if math.IsInf(height, 1) {
				return 0, fmt.Errorf("stick spans no staff")
			}
			return c.scale.PixelsToFrac(height - float64(ctx.Stick.Length())), nil
		},
	}
}

// anchorCheck combines the staff matches recorded by the Top and Bottom
// checks. In the precise regime thick sticks must anchor both ends while
// thin ones need only one; in the rough regime a part-spanning stick
// passes outright.
func (c *Checker) anchorCheck() *check.Check[*Context] {
	return &check.Check[*Context]{
		Name:        "Anchor",
		Description: "Check top and bottom alignment of bars (thick/thin) with staff",
		Low:         0.5,
		High:        0.5,
		Covariant:   true,
		FailureTag:  FailureNotStaffAnchored,
		Value: func(ctx *Context) (float64, error) {
			topAnchored := ctx.TopStaff != -1
			botAnchored := ctx.BotStaff != -1

			if c.rough {
				if ctx.PartDefining || (topAnchored && botAnchored) {
					return 1, nil
				}
				return 0, nil
			}
			if ctx.Thick {
				if topAnchored && botAnchored {
					return 1, nil
				}
				return 0, nil
			}
			if topAnchored || botAnchored {
				return 1, nil
			}
			return 0, nil
		},
	}
}

// chunkCheck rejects sticks with excess alien pixels clustered at one
// corner; such chunks betray a symbol stuck to the bar.
func (c *Checker) chunkCheck(name, description string, top, left bool, tag *check.Result) *check.Check[*Context] {
	return &check.Check[*Context]{
		Name:        name,
		Description: description,
		Low:         c.params.ChunkRatioLow,
		High:        c.params.ChunkRatioHigh,
		Covariant:   false,
		FailureTag:  tag,
		Value: func(ctx *Context) (float64, error) {
			box := c.chunkBox(ctx.Stick, top, left)
			area := box.Area()
			length := ctx.Stick.Length()
			if area == 0 || length == 0 {
				return 0, nil
			}
			aliens := c.nest.AlienPixelsIn(ctx.Stick, box)
			// Normalize the ratio with stick length.
			return (1000 * float64(aliens)) / (float64(area) * float64(length)), nil
		},
	}
}
