package implicit

import (
	"github.com/matzehuels/slanttower/pkg/geom"
)

type rectSketch struct {
	r geom.Rect
}

func (s *rectSketch) Contains(p geom.Vec2) bool { return s.r.Contains(p) }
func (s *rectSketch) Bounds() geom.Rect         { return s.r }

type circleSketch struct {
	radius float64
}

func (s *circleSketch) Contains(p geom.Vec2) bool { return p.Dot(p) <= s.radius*s.radius }

func (s *circleSketch) Bounds() geom.Rect {
	r := s.radius
	return geom.Rect{Min: geom.V2(-r, -r), Max: geom.V2(r, r)}
}

// polygon is a set of closed contours filled with the nonzero winding rule.
type polygon struct {
	bounds   geom.Rect
	contours [][]geom.Vec2
}

func newPolygon(contours [][]geom.Vec2) polygon {
	var b geom.Rect
	first := true
	for _, c := range contours {
		for _, p := range c {
			if first {
				b = geom.Rect{Min: p, Max: p}
				first = false
				continue
			}
			b.Min = geom.V2(min(b.Min.X, p.X), min(b.Min.Y, p.Y))
			b.Max = geom.V2(max(b.Max.X, p.X), max(b.Max.Y, p.Y))
		}
	}
	return polygon{bounds: b, contours: contours}
}

func (g polygon) translate(d geom.Vec2) polygon {
	out := polygon{bounds: g.bounds.Translate(d), contours: make([][]geom.Vec2, len(g.contours))}
	for i, c := range g.contours {
		moved := make([]geom.Vec2, len(c))
		for j, p := range c {
			moved[j] = p.Add(d)
		}
		out.contours[i] = moved
	}
	return out
}

func (g polygon) contains(p geom.Vec2) bool {
	return g.bounds.Contains(p) && winding(g.contours, p) != 0
}

// winding returns the winding number of the contours around p.
func winding(contours [][]geom.Vec2, p geom.Vec2) int {
	wn := 0
	for _, c := range contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a, b := c[i], c[(i+1)%n]
			if a.Y <= p.Y {
				if b.Y > p.Y && side(a, b, p) > 0 {
					wn++
				}
			} else if b.Y <= p.Y && side(a, b, p) < 0 {
				wn--
			}
		}
	}
	return wn
}

// side is positive when p is left of the directed line a→b.
func side(a, b, p geom.Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

// textSketch is a run of glyph outlines.
type textSketch struct {
	glyphs []polygon
	bounds geom.Rect
}

func (s *textSketch) Bounds() geom.Rect { return s.bounds }

func (s *textSketch) Contains(p geom.Vec2) bool {
	if !s.bounds.Contains(p) {
		return false
	}
	for _, g := range s.glyphs {
		if g.contains(p) {
			return true
		}
	}
	return false
}
