// Command slurtest runs curve repair on a synthetic slur and outputs results.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"omr-repair/internal/fit"
	"omr-repair/internal/glyph"
	"omr-repair/internal/slur"
	"omr-repair/internal/staff"
)

func main() {
	interline := flag.Int("interline", 8, "Interline size in pixels")
	radius := flag.Float64("radius", 120, "Radius of the synthetic slur arc")
	span := flag.Int("span", 160, "Horizontal extent of the arc in pixels")
	chunk := flag.Int("chunk", 40, "Columns per synthetic section")
	stuck := flag.Bool("stuck", true, "Attach a stuck clutter block to the arc")
	verbose := flag.Bool("v", false, "Verbose per-section logging")
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

	params := slur.DefaultParams()
	fmt.Printf("Curve repair parameters:\n")
	fmt.Printf("  Max circle distance: %.2f interline (%.1f px)\n",
		params.MaxCircleDistance, sc.FractionF(params.MaxCircleDistance))
	fmt.Printf("  Spurious weight split: %.2f interline²\n", params.SpuriousWeight)
	fmt.Printf("  Min chunk weight: %.2f interline² (%d px)\n",
		params.MinChunkWeight, sc.AreaFraction(params.MinChunkWeight))
	fmt.Printf("  Box margins: %.2f x %.2f interline\n", params.BoxDx, params.BoxDy)

	nest := glyph.NewNest()
	sections := arcSections(nest, 400.5, 400.5, *radius, *span, *chunk)
	if *stuck {
		sections = append(sections, stuckBlock(nest, 400.5, 400.5, *radius, *span))
	}

	g := nest.BuildGlyph(sections)
	g.SetShape(glyph.ShapeSlur)

	circle, err := fit.FitSections(g.Sections(), false)
	if err != nil {
		fmt.Printf("\nInitial fit: failed (%v)\n", err)
	} else {
		fmt.Printf("\nInitial fit: %s\n", circle)
	}

	fmt.Printf("\nRunning repair on %s (%d sections)...\n", g, len(sections))
	ins := slur.NewInspector(nest, sc, params, logger)
	modifs := ins.RunPattern()
	fmt.Printf("Modifications: %d\n\n", modifs)

	for _, res := range nest.Glyphs() {
		if !res.Active() {
			continue
		}
		line := fmt.Sprintf("  %s", res)
		if c, err := fit.FitSections(res.Sections(), false); err == nil {
			line += fmt.Sprintf(" distance=%.4f", c.Distance())
		}
		fmt.Println(line)
	}
}

// arcSections rasterizes the upper arc of a circle into single-pixel-thick
// sections of the given column width.
func arcSections(nest *glyph.Nest, cx, cy, r float64, span, chunk int) []*glyph.Section {
	x0 := int(cx) - span/2
	x1 := int(cx) + span/2

	var sections []*glyph.Section
	var runs []glyph.Run
	id := 1
	for x := x0; x < x1; x++ {
		dx := float64(x) + 0.5 - cx
		dy := math.Sqrt(r*r - dx*dx)
		y := int(math.Round(cy - dy - 0.5))
		runs = append(runs, glyph.Run{X: x, Y: y, Length: 1})
		if len(runs) == chunk {
			s := glyph.NewSection(id, runs)
			nest.RegisterSection(s)
			sections = append(sections, s)
			runs = nil
			id++
		}
	}
	if len(runs) > 0 {
		s := glyph.NewSection(id, runs)
		nest.RegisterSection(s)
		sections = append(sections, s)
	}
	return sections
}

// stuckBlock builds a filled block touching the right end of the arc,
// simulating a foreign symbol stuck to the slur.
func stuckBlock(nest *glyph.Nest, cx, cy, r float64, span int) *glyph.Section {
	x := int(cx) + span/2
	dx := float64(x) - cx
	dy := math.Sqrt(math.Max(0, r*r-dx*dx))
	y := int(cy - dy)

	var runs []glyph.Run
	for col := 0; col < 10; col++ {
		runs = append(runs, glyph.Run{X: x + col, Y: y, Length: 20})
	}
	s := glyph.NewSection(999, runs)
	nest.RegisterSection(s)
	return s
}
