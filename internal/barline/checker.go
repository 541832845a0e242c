// Package barline provides line repair: grading elongated vertical
// candidates ("sticks") against staff geometry through an ordered check
// suite, in a rough regime for coarse structural discovery or a precise
// regime for fine validation.
package barline

import (
	"fmt"
	"log/slog"
	"math"

	"omr-repair/internal/check"
	"omr-repair/internal/glyph"
	"omr-repair/internal/staff"
	"omr-repair/pkg/geometry"
)

// Outcome tags recorded on graded sticks.
var (
	// ResultPartDefining marks a bar whose two ends anchor to two
	// different staves, spanning a structural group.
	ResultPartDefining = &check.Result{Name: "Bar-PartDefining"}

	// ResultNotPartDefining marks a bar embracing only part of a part.
	ResultNotPartDefining = &check.Result{Name: "Bar-NotPartDefining"}

	// FailureTooShort marks a bar shorter than the staff height.
	FailureTooShort = &check.Result{Name: "Bar-TooShort", Failure: true}

	// FailureOutsideStaffWidth marks a bar outside the staff area.
	FailureOutsideStaffWidth = &check.Result{Name: "Bar-OutsideStaffWidth", Failure: true}

	// FailureNotStaffAnchored marks a bar with no end aligned with a staff.
	FailureNotStaffAnchored = &check.Result{Name: "Bar-NotStaffAnchored", Failure: true}

	// Chunk failures, one per corner of the stick.
	FailureTopLeftChunk     = &check.Result{Name: "Bar-TopLeftChunk", Failure: true}
	FailureTopRightChunk    = &check.Result{Name: "Bar-TopRightChunk", Failure: true}
	FailureBottomLeftChunk  = &check.Result{Name: "Bar-BottomLeftChunk", Failure: true}
	FailureBottomRightChunk = &check.Result{Name: "Bar-BottomRightChunk", Failure: true}
)

// Context is the transient working state of one stick under grading.
// Earlier checks record staff matches here that later checks read, so the
// fields are plain and explicit rather than hidden side channels.
type Context struct {
	Stick *glyph.Glyph

	// TopArea and BottomArea are the nearest staves to the stick ends,
	// set before any check runs.
	TopArea    int
	BottomArea int

	// PartDefining reports a stick embracing more than one staff area.
	PartDefining bool

	// Thick reports a stick wider than the thin barline limit.
	Thick bool

	// TopStaff and BotStaff are the staves the stick ends anchor to,
	// recorded by the Top and Bottom checks on a tight match; -1 if none.
	TopStaff int
	BotStaff int
}

func (c *Context) String() string {
	return fmt.Sprintf("stick#%d", c.Stick.ID())
}

// Checker grades barline candidates of one region. It is confined to that
// region and not safe for concurrent use.
type Checker struct {
	nest   *glyph.Nest
	scale  *staff.Scale
	staves *staff.Manager
	rough  bool
	params Params
	logger *slog.Logger

	suite    *check.Suite[*Context]
	contexts map[int]*Context

	// Pixel-resolved values.
	maxThinWidth int
	chunkWidth   int
	chunkHeight  int
}

// NewChecker prepares a barline checker over one region.
// rough selects the coarse threshold regime used during structural
// discovery; the precise regime adds the corner chunk checks.
// A nil logger falls back to slog.Default().
func NewChecker(nest *glyph.Nest, sc *staff.Scale, staves *staff.Manager, rough bool, params Params, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checker{
		nest:         nest,
		scale:        sc,
		staves:       staves,
		rough:        rough,
		params:       params,
		logger:       logger,
		contexts:     make(map[int]*Context),
		maxThinWidth: sc.Fraction(params.MaxThinWidth),
		chunkWidth:   sc.Fraction(params.ChunkWidth),
		chunkHeight:  sc.Fraction(params.ChunkHalfHeight),
	}
	c.suite = c.buildSuite()
	return c
}

// Suite exposes the configured check suite, mainly for diagnostics.
func (c *Checker) Suite() *check.Suite[*Context] {
	return c.suite
}

// RetrieveCandidates grades the candidate sticks in ascending-abscissa
// order. A stick whose grade meets the suite minimum is labeled thick or
// thin and tagged part-defining when both ends anchor to distinct staves.
// Per-stick errors are logged and skipped; the count of accepted sticks is
// returned.
func (c *Checker) RetrieveCandidates(sticks []*glyph.Glyph) int {
	accepted := 0

	for _, stick := range glyph.SortByMidPos(sticks) {
		ctx := c.newContext(stick)

		grade, failure, err := c.suite.Pass(ctx)
		if err != nil {
			c.logger.Warn("stick grading failed", "stick", stick.ID(), "err", err)
			continue
		}
		if failure != nil {
			c.logger.Debug("stick rejected", "stick", stick.ID(), "failure", failure.Name)
			stick.SetResult(failure)
			continue
		}
		c.logger.Debug("stick graded", "stick", stick.ID(), "grade", grade)
		if !c.suite.Passed(grade) {
			continue
		}

		c.contexts[stick.ID()] = ctx
		if ctx.Thick {
			stick.SetShape(glyph.ShapeThickBarline)
		} else {
			stick.SetShape(glyph.ShapeThinBarline)
		}

		if ctx.TopStaff != -1 && ctx.BotStaff != -1 && ctx.TopStaff != ctx.BotStaff {
			stick.SetResult(ResultPartDefining)
			c.logger.Debug("part-defining barline",
				"stick", stick.ID(), "topStaff", ctx.TopStaff, "botStaff", ctx.BotStaff)
		} else {
			stick.SetResult(ResultNotPartDefining)
		}
		accepted++
	}

	return accepted
}

// StaffAnchors reports the staves the stick's top and bottom anchor to,
// running the suite on demand for sticks not graded yet. -1 means no
// anchor on that end.
func (c *Checker) StaffAnchors(stick *glyph.Glyph) (top, bot int) {
	ctx, ok := c.contexts[stick.ID()]
	if !ok {
		ctx = c.newContext(stick)
		if _, _, err := c.suite.Pass(ctx); err != nil {
			c.logger.Warn("stick grading failed", "stick", stick.ID(), "err", err)
		}
		c.contexts[stick.ID()] = ctx
	}
	return ctx.TopStaff, ctx.BotStaff
}

// newContext allocates and initializes the working state of one stick
// before any check runs.
func (c *Checker) newContext(stick *glyph.Glyph) *Context {
	ctx := &Context{Stick: stick, TopStaff: -1, BotStaff: -1, TopArea: -1, BottomArea: -1}
	if start := c.staves.StaffAt(stick.StartPoint()); start != nil {
		ctx.TopArea = start.Index
	}
	if stop := c.staves.StaffAt(stick.StopPoint()); stop != nil {
		ctx.BottomArea = stop.Index
	}
	ctx.PartDefining = ctx.TopArea != ctx.BottomArea
	ctx.Thick = c.isThickBar(stick)
	return ctx
}

// isThickBar reports whether the stick's mean width exceeds the widest
// acceptable thin barline.
func (c *Checker) isThickBar(stick *glyph.Glyph) bool {
	meanWidth := int(math.Round(stick.MeanWidth()))
	return meanWidth > c.maxThinWidth
}

// chunkBox returns one of the four corner windows probed for alien pixels.
func (c *Checker) chunkBox(stick *glyph.Glyph, top, left bool) geometry.RectInt {
	var anchor geometry.Point2D
	var y int
	if top {
		anchor = stick.StartPoint()
		y = int(anchor.Y) - c.chunkHeight/2
	} else {
		anchor = stick.StopPoint()
		y = int(anchor.Y) - (3*c.chunkHeight)/2
	}
	x := int(anchor.X)
	if left {
		x -= c.chunkWidth
	}
	return geometry.RectInt{X: x, Y: y, Width: c.chunkWidth, Height: 2 * c.chunkHeight}
}
