package implicit

import (
	"fmt"
	"math"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// edgeTol is the tolerance used to match requested edges against the edges
// a solid exposes.
const edgeTol = 1e-6

// filletCentroid is the distance from the corner to the centroid of the
// region between a square corner of side r and the quarter circle of radius
// r centered on the opposite corner, as a fraction of r.
var filletCentroid = (10 - 3*math.Pi) / (12 - 3*math.Pi)

type treatment int

const (
	treatFillet treatment = iota
	treatChamfer
)

func (t treatment) String() string {
	if t == treatChamfer {
		return "chamfer"
	}
	return "fillet"
}

// Fillet rounds circular edges of s. Opening edges widen the solid (the
// stock's rim is rounded), material edges trim it.
func (k *Kernel) Fillet(s kernel.Solid, edges []kernel.Edge, radius float64) (kernel.Solid, error) {
	return k.treat(s, edges, radius, treatFillet)
}

// Chamfer bevels circular edges of s by length, with the same sidedness
// rules as Fillet.
func (k *Kernel) Chamfer(s kernel.Solid, edges []kernel.Edge, length float64) (kernel.Solid, error) {
	return k.treat(s, edges, length, treatChamfer)
}

func (k *Kernel) treat(s kernel.Solid, edges []kernel.Edge, size float64, kind treatment) (kernel.Solid, error) {
	if err := checkOperand(s); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: %s of no edges", kernel.ErrDegenerate, kind)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %s size %g", kernel.ErrDegenerate, kind, size)
	}

	remaining := s.Edges()
	rings := make([]ring, 0, len(edges))
	added := make([]kernel.Edge, 0, 2*len(edges))
	for _, e := range edges {
		if e.Kind != kernel.EdgeCircle {
			return nil, fmt.Errorf("%w: %s on %s", kernel.ErrUnsupportedEdge, kind, e)
		}
		idx := indexOfEdge(remaining, e)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", kernel.ErrEdgeNotFound, e)
		}
		if size > e.Length+edgeTol {
			return nil, fmt.Errorf("%w: %s %g exceeds face length %g of %s", kernel.ErrDegenerate, kind, size, e.Length, e)
		}
		if e.Side == kernel.SideMaterial && size > e.Radius+edgeTol {
			return nil, fmt.Errorf("%w: %s %g exceeds radius of %s", kernel.ErrDegenerate, kind, size, e)
		}
		remaining = append(remaining[:idx:idx], remaining[idx+1:]...)

		r := newRing(e, size, kind)
		rings = append(rings, r)
		added = append(added, r.leftover()...)
	}

	return &treated{
		base:  s,
		rings: rings,
		edges: append(remaining, added...),
	}, nil
}

func indexOfEdge(edges []kernel.Edge, e kernel.Edge) int {
	for i, o := range edges {
		if o.Same(e, edgeTol) {
			return i
		}
	}
	return -1
}

// ring is the toroidal region an edge treatment adds to or removes from a
// solid, expressed in the treated edge's coordinates: a is the distance
// along Axis from the rim, rho the distance from the axis.
type ring struct {
	edge   kernel.Edge
	axis   geom.Vec3
	size   float64
	kind   treatment
	grow   bool
	bounds geom.Box
}

func newRing(e kernel.Edge, size float64, kind treatment) ring {
	r := ring{
		edge: e,
		axis: e.Axis.Unit(),
		size: size,
		kind: kind,
		grow: e.Side == kernel.SideOpening,
	}
	rhoMax := e.Radius
	if r.grow {
		rhoMax += size
	}
	end := e.Center.Add(r.axis.Scale(size))
	var ext geom.Vec3
	for i := 0; i < 3; i++ {
		c := r.axis.Comp(i)
		v := rhoMax * math.Sqrt(math.Max(0, 1-c*c))
		switch i {
		case 0:
			ext.X = v
		case 1:
			ext.Y = v
		default:
			ext.Z = v
		}
	}
	lo, hi := e.Center.Min(end), e.Center.Max(end)
	r.bounds = geom.Box{Min: lo.Sub(ext), Max: hi.Add(ext)}
	return r
}

// coords returns the edge coordinates of p.
func (r ring) coords(p geom.Vec3) (a, rho float64) {
	d := p.Sub(r.edge.Center)
	a = d.Dot(r.axis)
	return a, d.Sub(r.axis.Scale(a)).Len()
}

func (r ring) contains(p geom.Vec3) bool {
	if !r.bounds.Contains(p) {
		return false
	}
	a, rho := r.coords(p)
	if a < 0 || a > r.size {
		return false
	}
	// d is the distance from the rim, positive away from the solid.
	R := r.edge.Radius
	d := R - rho
	if r.grow {
		d = rho - R
	}
	if d < 0 || d > r.size {
		return false
	}
	if r.kind == treatChamfer {
		return d+a < r.size
	}
	dd, da := d-r.size, a-r.size
	return dd*dd+da*da > r.size*r.size
}

// volume uses Pappus' theorem on the ring's profile.
func (r ring) volume() float64 {
	var area, off float64
	switch r.kind {
	case treatChamfer:
		area = r.size * r.size / 2
		off = r.size / 3
	default:
		area = r.size * r.size * (1 - math.Pi/4)
		off = r.size * filletCentroid
	}
	rho := r.edge.Radius - off
	if r.grow {
		rho = r.edge.Radius + off
	}
	return 2 * math.Pi * rho * area
}

// leftover returns the two edges a treatment leaves behind: one on the
// adjoining flat face and one on the bore.
func (r ring) leftover() []kernel.Edge {
	e := r.edge
	smooth := r.kind == treatFillet

	face := e
	face.Length = r.size
	face.Smooth = smooth
	if r.grow {
		face.Radius = e.Radius + r.size
	} else {
		face.Radius = e.Radius - r.size
	}

	bore := e
	bore.Center = e.Center.Add(r.axis.Scale(r.size))
	bore.Length = e.Length - r.size
	bore.Smooth = smooth
	if e.Side == kernel.SideOpening {
		bore.Side = kernel.SideMaterial
	} else {
		bore.Side = kernel.SideOpening
	}

	if face.Radius <= edgeTol {
		return []kernel.Edge{bore}
	}
	return []kernel.Edge{face, bore}
}

// disjoint reports whether two rings provably do not overlap.
func (r ring) disjoint(o ring) bool {
	if !r.bounds.Overlaps(o.bounds) {
		return true
	}
	if math.Abs(math.Abs(r.axis.Dot(o.axis))-1) > edgeTol {
		return false
	}
	d := o.edge.Center.Sub(r.edge.Center)
	along := d.Dot(r.axis)
	if d.Sub(r.axis.Scale(along)).Len() > edgeTol {
		return false
	}
	a0, a1 := along, along+o.size*o.axis.Dot(r.axis)
	if a0 > a1 {
		a0, a1 = a1, a0
	}
	if a1 <= edgeTol || a0 >= r.size-edgeTol {
		return true
	}
	rlo, rhi := r.rhoSpan()
	olo, ohi := o.rhoSpan()
	return ohi <= rlo+edgeTol || olo >= rhi-edgeTol
}

func (r ring) rhoSpan() (lo, hi float64) {
	if r.grow {
		return r.edge.Radius, r.edge.Radius + r.size
	}
	return r.edge.Radius - r.size, r.edge.Radius
}

// treated is a solid with edge treatments applied.
type treated struct {
	base  kernel.Solid
	rings []ring
	edges []kernel.Edge
}

func (s *treated) Contains(p geom.Vec3) bool {
	for _, r := range s.rings {
		if r.grow && r.contains(p) {
			return true
		}
	}
	if !s.base.Bounds().Contains(p) || !s.base.Contains(p) {
		return false
	}
	for _, r := range s.rings {
		if !r.grow && r.contains(p) {
			return false
		}
	}
	return true
}

func (s *treated) Bounds() geom.Box {
	b := s.base.Bounds()
	for _, r := range s.rings {
		if r.grow {
			b = b.Union(r.bounds)
		}
	}
	return b
}

func (s *treated) Edges() []kernel.Edge { return append([]kernel.Edge(nil), s.edges...) }

// volume is exact when the rings are pairwise disjoint. Otherwise the
// change against the base is sampled over the rings' bounds.
func (s *treated) volume(k *Kernel) float64 {
	base := k.Volume(s.base)
	if s.ringsDisjoint() {
		v := base
		for _, r := range s.rings {
			if r.grow {
				v += r.volume()
			} else {
				v -= r.volume()
			}
		}
		return v
	}
	region := geom.EmptyBox()
	for _, r := range s.rings {
		region = region.Union(r.bounds)
	}
	gained := k.sample(region, func(p geom.Vec3) bool { return s.Contains(p) && !s.base.Contains(p) })
	lost := k.sample(region, func(p geom.Vec3) bool { return s.base.Contains(p) && !s.Contains(p) })
	return base + gained - lost
}

func (s *treated) ringsDisjoint() bool {
	for i := range s.rings {
		for j := i + 1; j < len(s.rings); j++ {
			if !s.rings[i].disjoint(s.rings[j]) {
				return false
			}
		}
	}
	return true
}
