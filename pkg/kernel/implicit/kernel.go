// Package implicit is a point-membership CSG kernel.
//
// Solids answer "is this point inside?" and carry a conservative bounding
// box plus the edges a treatment may need. Booleans compose membership
// tests, so union and difference never fail on coincident faces or
// overlapping operands. Volumes are exact for primitives and sampled on a
// regular grid (see [WithResolution]) over the regions where boolean
// operands overlap.
//
// Glyph outlines come from a TrueType font (Go Regular by default), parsed
// with golang.org/x/image/font/sfnt and flattened to polygons.
//
// A Kernel is safe for concurrent use.
package implicit

import (
	"fmt"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// DefaultResolution is the default sampling cell size in millimetres.
const DefaultResolution = 0.1

// Kernel implements [kernel.Kernel].
type Kernel struct {
	cell     float64
	fontData []byte

	fontOnce sync.Once
	font     *sfnt.Font
	fontErr  error
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithResolution sets the sampling cell size used for volume integration.
// Non-positive values are ignored.
func WithResolution(cell float64) Option {
	return func(k *Kernel) {
		if cell > 0 {
			k.cell = cell
		}
	}
}

// WithFont sets the TrueType/OpenType font used by Text.
func WithFont(ttf []byte) Option {
	return func(k *Kernel) {
		if len(ttf) > 0 {
			k.fontData = ttf
		}
	}
}

// New creates a kernel.
func New(opts ...Option) *Kernel {
	k := &Kernel{cell: DefaultResolution, fontData: goregular.TTF}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Resolution returns the sampling cell size.
func (k *Kernel) Resolution() float64 { return k.cell }

// Box returns a box of the given size aligned about the local origin.
func (k *Kernel) Box(size geom.Vec3, align kernel.Align3) (kernel.Solid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("%w: box size %v", kernel.ErrDegenerate, size)
	}
	lo := geom.V3(
		align.X.Offset(0, size.X),
		align.Y.Offset(0, size.Y),
		align.Z.Offset(0, size.Z),
	)
	return &box{b: geom.Box{Min: lo, Max: lo.Add(size)}}, nil
}

// Cylinder returns a cylinder along local Z, centered on the origin. Both
// rims are tracked as ordinary (material) circular edges.
func (k *Kernel) Cylinder(radius, height float64) (kernel.Solid, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cylinder r=%g h=%g", kernel.ErrDegenerate, radius, height)
	}
	h := height / 2
	return &cylinder{
		radius: radius,
		z0:     -h,
		z1:     h,
		edges: []kernel.Edge{
			{Kind: kernel.EdgeCircle, Center: geom.V3(0, 0, h), Axis: geom.ZAxis.Neg(), Radius: radius, Length: height},
			{Kind: kernel.EdgeCircle, Center: geom.V3(0, 0, -h), Axis: geom.ZAxis, Radius: radius, Length: height},
		},
	}, nil
}

// Sphere returns a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere r=%g", kernel.ErrDegenerate, radius)
	}
	return &sphere{radius: radius}, nil
}

// Hole returns a blind-hole cutter from z=0 down to z=-depth. The mouth rim
// is an opening edge; the floor rim is a material edge.
func (k *Kernel) Hole(radius, depth float64) (kernel.Solid, error) {
	if radius <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: hole r=%g depth=%g", kernel.ErrDegenerate, radius, depth)
	}
	return &cylinder{
		radius: radius,
		z0:     -depth,
		z1:     0,
		edges: []kernel.Edge{
			{Kind: kernel.EdgeCircle, Center: geom.V3(0, 0, 0), Axis: geom.ZAxis.Neg(), Radius: radius, Length: depth, Side: kernel.SideOpening},
			{Kind: kernel.EdgeCircle, Center: geom.V3(0, 0, -depth), Axis: geom.ZAxis, Radius: radius, Length: depth, Side: kernel.SideMaterial},
		},
	}, nil
}

// Rect returns a rectangle sketch.
func (k *Kernel) Rect(width, height float64, align kernel.Align2) (kernel.Sketch, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: rect %gx%g", kernel.ErrDegenerate, width, height)
	}
	lo := geom.V2(align.U.Offset(0, width), align.V.Offset(0, height))
	return &rectSketch{r: geom.Rect{Min: lo, Max: lo.Add(geom.V2(width, height))}}, nil
}

// Circle returns a circle sketch centered on the origin.
func (k *Kernel) Circle(radius float64) (kernel.Sketch, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle r=%g", kernel.ErrDegenerate, radius)
	}
	return &circleSketch{radius: radius}, nil
}

// Extrude sweeps a sketch from z=0 to z=amount.
func (k *Kernel) Extrude(s kernel.Sketch, amount float64) (kernel.Solid, error) {
	if s == nil || s.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty sketch", kernel.ErrDegenerate)
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: zero extrusion", kernel.ErrDegenerate)
	}
	return &extrusion{sketch: s, z0: min(0, amount), z1: max(0, amount)}, nil
}

// Place moves a solid into a placement.
func (k *Kernel) Place(s kernel.Solid, at geom.Placement) kernel.Solid {
	return newPlaced(s, at)
}

// Union returns the union of one or more solids.
func (k *Kernel) Union(solids ...kernel.Solid) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, fmt.Errorf("%w: union of nothing", kernel.ErrDegenerate)
	}
	for i, s := range solids {
		if err := checkOperand(s); err != nil {
			return nil, fmt.Errorf("union operand %d: %w", i, err)
		}
	}
	if len(solids) == 1 {
		return solids[0], nil
	}
	return newUnion(append([]kernel.Solid(nil), solids...)), nil
}

// Difference returns a minus b.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	if err := checkOperand(a); err != nil {
		return nil, fmt.Errorf("difference base: %w", err)
	}
	if err := checkOperand(b); err != nil {
		return nil, fmt.Errorf("difference tool: %w", err)
	}
	return &difference{a: a, b: b}, nil
}

// GridLocations returns countX*countY positions centered on the origin,
// row by row from the lowest v, left to right within a row.
func (k *Kernel) GridLocations(pitchX, pitchY float64, countX, countY int) []geom.Vec2 {
	if countX < 1 || countY < 1 {
		return nil
	}
	x0 := -pitchX * float64(countX-1) / 2
	y0 := -pitchY * float64(countY-1) / 2
	out := make([]geom.Vec2, 0, countX*countY)
	for j := 0; j < countY; j++ {
		for i := 0; i < countX; i++ {
			out = append(out, geom.V2(x0+float64(i)*pitchX, y0+float64(j)*pitchY))
		}
	}
	return out
}

func checkOperand(s kernel.Solid) error {
	if s == nil {
		return fmt.Errorf("%w: nil solid", kernel.ErrDegenerate)
	}
	if s.Bounds().Empty() {
		return fmt.Errorf("%w: solid has empty bounds", kernel.ErrDegenerate)
	}
	return nil
}

var _ kernel.Kernel = (*Kernel)(nil)
