package implicit

import (
	"math"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// volumer is implemented by solids whose volume is known without sampling.
type volumer interface {
	volume(k *Kernel) float64
}

// box is an axis-aligned box in its local frame.
type box struct {
	b geom.Box
}

func (s *box) Contains(p geom.Vec3) bool { return s.b.Contains(p) }
func (s *box) Bounds() geom.Box          { return s.b }
func (s *box) volume(*Kernel) float64    { return s.b.Volume() }

func (s *box) Edges() []kernel.Edge {
	size := s.b.Size()
	c := s.b.Center()
	h := size.Scale(0.5)
	var out []kernel.Edge
	// Four edges parallel to each axis.
	for axis := 0; axis < 3; axis++ {
		for _, sa := range []float64{-1, 1} {
			for _, sb := range []float64{-1, 1} {
				mid := c
				var dir geom.Vec3
				switch axis {
				case 0:
					dir = geom.XAxis
					mid.Y += sa * h.Y
					mid.Z += sb * h.Z
				case 1:
					dir = geom.YAxis
					mid.X += sa * h.X
					mid.Z += sb * h.Z
				default:
					dir = geom.ZAxis
					mid.X += sa * h.X
					mid.Y += sb * h.Y
				}
				out = append(out, kernel.Edge{
					Kind:   kernel.EdgeLine,
					Center: mid,
					Axis:   dir,
					Length: size.Comp(axis),
				})
			}
		}
	}
	return out
}

// cylinder runs along local Z from z0 to z1.
type cylinder struct {
	radius float64
	z0, z1 float64
	edges  []kernel.Edge
}

func (s *cylinder) Contains(p geom.Vec3) bool {
	return p.Z >= s.z0 && p.Z <= s.z1 && p.X*p.X+p.Y*p.Y <= s.radius*s.radius
}

func (s *cylinder) Bounds() geom.Box {
	return geom.Box{
		Min: geom.V3(-s.radius, -s.radius, s.z0),
		Max: geom.V3(s.radius, s.radius, s.z1),
	}
}

func (s *cylinder) Edges() []kernel.Edge { return append([]kernel.Edge(nil), s.edges...) }

func (s *cylinder) volume(*Kernel) float64 {
	return math.Pi * s.radius * s.radius * (s.z1 - s.z0)
}

type sphere struct {
	radius float64
}

func (s *sphere) Contains(p geom.Vec3) bool { return p.Dot(p) <= s.radius*s.radius }
func (s *sphere) Edges() []kernel.Edge      { return nil }
func (s *sphere) volume(*Kernel) float64    { return 4.0 / 3.0 * math.Pi * s.radius * s.radius * s.radius }

func (s *sphere) Bounds() geom.Box {
	r := s.radius
	return geom.Box{Min: geom.V3(-r, -r, -r), Max: geom.V3(r, r, r)}
}

// extrusion sweeps a sketch along local Z between z0 and z1. Extrusions do
// not track edges.
type extrusion struct {
	sketch kernel.Sketch
	z0, z1 float64
}

func (s *extrusion) Contains(p geom.Vec3) bool {
	if p.Z < s.z0 || p.Z > s.z1 {
		return false
	}
	return s.sketch.Contains(geom.Vec2{X: p.X, Y: p.Y})
}

func (s *extrusion) Bounds() geom.Box {
	r := s.sketch.Bounds()
	return geom.Box{
		Min: geom.V3(r.Min.X, r.Min.Y, s.z0),
		Max: geom.V3(r.Max.X, r.Max.Y, s.z1),
	}
}

func (s *extrusion) Edges() []kernel.Edge { return nil }

func (s *extrusion) volume(k *Kernel) float64 {
	return k.area(s.sketch) * (s.z1 - s.z0)
}

// placed is a solid moved into a placement.
type placed struct {
	inner  kernel.Solid
	at     geom.Placement
	bounds geom.Box
}

func newPlaced(inner kernel.Solid, at geom.Placement) *placed {
	if p, ok := inner.(*placed); ok {
		inner, at = p.inner, at.Compose(p.at)
	}
	return &placed{inner: inner, at: at, bounds: at.BoxToWorld(inner.Bounds())}
}

func (s *placed) Contains(p geom.Vec3) bool { return s.inner.Contains(s.at.ToLocal(p)) }
func (s *placed) Bounds() geom.Box          { return s.bounds }
func (s *placed) volume(k *Kernel) float64  { return k.Volume(s.inner) }

func (s *placed) Edges() []kernel.Edge {
	inner := s.inner.Edges()
	out := make([]kernel.Edge, len(inner))
	for i, e := range inner {
		out[i] = e.Transformed(s.at)
	}
	return out
}

// union is the boolean union of its children.
type union struct {
	children []kernel.Solid
	bounds   geom.Box
}

func newUnion(children []kernel.Solid) *union {
	b := geom.EmptyBox()
	for _, c := range children {
		b = b.Union(c.Bounds())
	}
	return &union{children: children, bounds: b}
}

func (s *union) Contains(p geom.Vec3) bool {
	if !s.bounds.Contains(p) {
		return false
	}
	for _, c := range s.children {
		if c.Bounds().Contains(p) && c.Contains(p) {
			return true
		}
	}
	return false
}

func (s *union) Bounds() geom.Box { return s.bounds }

func (s *union) Edges() []kernel.Edge {
	var out []kernel.Edge
	for _, c := range s.children {
		out = append(out, c.Edges()...)
	}
	return out
}

// volume folds the children: each child adds its own volume minus the part
// already covered by the children before it.
func (s *union) volume(k *Kernel) float64 {
	total := 0.0
	for i, c := range s.children {
		total += k.Volume(c)
		if i > 0 {
			total -= k.overlap(c, s.children[:i])
		}
	}
	return total
}

// difference is a minus b.
type difference struct {
	a, b kernel.Solid
}

func (s *difference) Contains(p geom.Vec3) bool {
	if !s.a.Contains(p) {
		return false
	}
	return !(s.b.Bounds().Contains(p) && s.b.Contains(p))
}

func (s *difference) Bounds() geom.Box { return s.a.Bounds() }

func (s *difference) Edges() []kernel.Edge {
	return append(s.a.Edges(), s.b.Edges()...)
}

func (s *difference) volume(k *Kernel) float64 {
	return k.Volume(s.a) - k.overlap(s.a, []kernel.Solid{s.b})
}
