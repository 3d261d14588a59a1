package implicit

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// curveSteps is the number of line segments per Bézier segment.
const curveSteps = 8

// Text lays out text on a single line starting at the origin with the
// baseline on v = 0, then aligns the ink bounds of the whole string.
func (k *Kernel) Text(text string, fontSize float64, align kernel.Align2) (kernel.Sketch, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("%w: font size %g", kernel.ErrDegenerate, fontSize)
	}
	f, err := k.loadFont()
	if err != nil {
		return nil, err
	}

	var (
		buf     sfnt.Buffer
		ppem    = fixed.Int26_6(math.Round(fontSize * 64))
		pen     float64
		prev    sfnt.GlyphIndex
		hasPrev bool
		glyphs  []polygon
	)
	for _, r := range text {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph index for %q: %w", r, err)
		}
		if idx == 0 {
			return nil, fmt.Errorf("%w: font has no glyph for %q", kernel.ErrDegenerate, r)
		}
		if hasPrev {
			// Fonts without a kern table report ErrNotFound.
			if kern, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += fromFixed(kern)
			}
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("load glyph %q: %w", r, err)
		}
		if contours := flattenSegments(segs, pen); len(contours) > 0 {
			glyphs = append(glyphs, newPolygon(contours))
		}
		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph advance %q: %w", r, err)
		}
		pen += fromFixed(adv)
		prev, hasPrev = idx, true
	}
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("%w: text %q has no ink", kernel.ErrDegenerate, text)
	}

	var ink geom.Rect
	for _, g := range glyphs {
		ink = ink.Union(g.bounds)
	}
	shift := geom.V2(align.U.Offset(ink.Min.X, ink.Max.X), align.V.Offset(ink.Min.Y, ink.Max.Y))
	for i := range glyphs {
		glyphs[i] = glyphs[i].translate(shift)
	}
	return &textSketch{glyphs: glyphs, bounds: ink.Translate(shift)}, nil
}

// flattenSegments converts glyph segments (Y down, 26.6 fixed point) into
// closed polygon contours in millimetres with Y up, shifted right by dx.
func flattenSegments(segs sfnt.Segments, dx float64) [][]geom.Vec2 {
	pt := func(p fixed.Point26_6) geom.Vec2 {
		return geom.Vec2{X: fromFixed(p.X) + dx, Y: -fromFixed(p.Y)}
	}

	var contours [][]geom.Vec2
	var cur []geom.Vec2
	closeContour := func() {
		if len(cur) > 2 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, seg := range segs {
		if seg.Op == sfnt.SegmentOpMoveTo {
			closeContour()
			cur = []geom.Vec2{pt(seg.Args[0])}
			continue
		}
		if len(cur) == 0 {
			continue
		}
		p0 := cur[len(cur)-1]
		switch seg.Op {
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p1, p2 := pt(seg.Args[0]), pt(seg.Args[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, p0.Scale(u*u).Add(p1.Scale(2*u*t)).Add(p2.Scale(t*t)))
			}
		case sfnt.SegmentOpCubeTo:
			p1, p2, p3 := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, p0.Scale(u*u*u).
					Add(p1.Scale(3*u*u*t)).
					Add(p2.Scale(3*u*t*t)).
					Add(p3.Scale(t*t*t)))
			}
		}
	}
	closeContour()
	return contours
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

func (k *Kernel) loadFont() (*sfnt.Font, error) {
	k.fontOnce.Do(func() {
		k.font, k.fontErr = sfnt.Parse(k.fontData)
		if k.fontErr != nil {
			k.fontErr = fmt.Errorf("parse font: %w", k.fontErr)
		}
	})
	return k.font, k.fontErr
}
