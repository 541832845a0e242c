// Command barlinetest grades synthetic barline candidates and outputs results.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"omr-repair/internal/barline"
	"omr-repair/internal/glyph"
	"omr-repair/internal/staff"
)

func main() {
	interline := flag.Int("interline", 16, "Interline size in pixels")
	rough := flag.Bool("rough", false, "Use the rough threshold regime")
	verbose := flag.Bool("v", false, "Verbose per-check logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sc, err := staff.NewScale(*interline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad interline: %v\n", err)
		os.Exit(1)
	}

	// Two parallel staves of four interlines each.
	il := float64(*interline)
	staves := staff.NewManager(
		&staff.Info{Left: 0, Right: 600, Top: staff.Line{LeftY: 3 * il, RightY: 3 * il}, Bottom: staff.Line{LeftY: 7 * il, RightY: 7 * il}},
		&staff.Info{Left: 0, Right: 600, Top: staff.Line{LeftY: 10 * il, RightY: 10 * il}, Bottom: staff.Line{LeftY: 14 * il, RightY: 14 * il}},
	)

	nest := glyph.NewNest()
	sticks := []*glyph.Glyph{
		// A thin system barline spanning both staves.
		makeStick(nest, 100, int(3*il), int(11*il), 2),
		// A thick barline on the first staff only.
		makeStick(nest, 180, int(3*il), int(4*il), 8),
		// Too short to be a barline.
		makeStick(nest, 260, int(4*il), int(2*il), 2),
		// Anchored nowhere.
		makeStick(nest, 340, int(4.5*il), int(4*il), 2),
	}

	checker := barline.NewChecker(nest, sc, staves, *rough, barline.DefaultParams(), logger)

	fmt.Printf("Regime: ")
	if *rough {
		fmt.Printf("rough\n")
	} else {
		fmt.Printf("precise\n")
	}
	fmt.Printf("\n%s\n", checker.Suite().Dump())

	accepted := checker.RetrieveCandidates(sticks)
	fmt.Printf("Accepted: %d of %d\n\n", accepted, len(sticks))

	for _, s := range sticks {
		result := "-"
		if s.Result() != nil {
			result = s.Result().Name
		}
		top, bot := checker.StaffAnchors(s)
		fmt.Printf("  %s result=%s anchors=(%d,%d)\n", s, result, top, bot)
	}
}

// makeStick builds a vertical stick of the given width at abscissa x,
// spanning [y, y+length).
func makeStick(nest *glyph.Nest, x, y, length, width int) *glyph.Glyph {
	runs := make([]glyph.Run, 0, width)
	for col := 0; col < width; col++ {
		runs = append(runs, glyph.Run{X: x + col, Y: y, Length: length})
	}
	s := glyph.NewSection(x, runs)
	nest.RegisterSection(s)
	return nest.BuildGlyph([]*glyph.Section{s})
}
