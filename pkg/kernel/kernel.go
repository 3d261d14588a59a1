// Package kernel defines the contract between the tower feature engine and a
// solid-modelling kernel.
//
// The engine never looks inside a [Solid]: it builds primitives, places them
// with face frames, combines them with boolean union and difference, and asks
// for edge subsets when an edge treatment (fillet or chamfer) is needed. Any
// implementation that honours the documented contracts can be plugged in;
// the repository ships an implicit-surface kernel in package implicit.
//
// # Conventions
//
// Lengths are in millimetres. Primitives are created in a local frame and
// moved into place with [Kernel.Place]. Extrusion depth is signed along the
// local +Z axis, which face frames align with the outward normal: a positive
// amount builds outward, a negative amount cuts inward.
package kernel

import (
	"errors"

	"github.com/matzehuels/slanttower/pkg/geom"
)

// Sentinel errors reported by kernels. Implementations wrap them with context.
var (
	// ErrDegenerate is returned when an operation would produce an empty or
	// invalid solid (zero-size primitive, empty boolean input, a treatment
	// larger than the geometry it rounds).
	ErrDegenerate = errors.New("degenerate geometry")

	// ErrEdgeNotFound is returned when a treatment names an edge the solid
	// does not expose.
	ErrEdgeNotFound = errors.New("edge not found on solid")

	// ErrUnsupportedEdge is returned when a treatment is asked for an edge
	// kind the kernel cannot process.
	ErrUnsupportedEdge = errors.New("unsupported edge kind")
)

// Solid is an opaque closed 3D shape.
type Solid interface {
	// Contains reports whether p (world coordinates) lies inside the solid.
	Contains(p geom.Vec3) bool

	// Bounds returns a box enclosing the solid. It may be conservative.
	Bounds() geom.Box

	// Edges returns the solid's tracked edges in world coordinates.
	Edges() []Edge
}

// Sketch is a closed 2D region authored in a local (u, v) frame.
type Sketch interface {
	Contains(p geom.Vec2) bool
	Bounds() geom.Rect
}

// Align positions a shape relative to its local origin along one axis.
type Align int

const (
	// AlignMin puts the shape's minimum at the origin.
	AlignMin Align = iota
	// AlignCenter centers the shape on the origin.
	AlignCenter
	// AlignMax puts the shape's maximum at the origin.
	AlignMax
)

// String returns the lowercase name of the alignment.
func (a Align) String() string {
	switch a {
	case AlignMin:
		return "min"
	case AlignCenter:
		return "center"
	case AlignMax:
		return "max"
	default:
		return "unknown"
	}
}

// Offset returns the translation that aligns the span [lo, hi] to the origin.
func (a Align) Offset(lo, hi float64) float64 {
	switch a {
	case AlignMin:
		return -lo
	case AlignMax:
		return -hi
	default:
		return -(lo + hi) / 2
	}
}

// Align2 aligns a sketch in its (u, v) plane.
type Align2 struct {
	U, V Align
}

// Align3 aligns a solid along the three local axes.
type Align3 struct {
	X, Y, Z Align
}

// Centered is the default alignment for sketches.
var Centered = Align2{AlignCenter, AlignCenter}

// Kernel builds and combines solids.
//
// Implementations must be deterministic: identical call sequences produce
// solids with identical volume and bounds.
type Kernel interface {
	// Box returns a box of the given size aligned about the local origin.
	Box(size geom.Vec3, align Align3) (Solid, error)

	// Cylinder returns a cylinder along local Z, centered on the origin.
	Cylinder(radius, height float64) (Solid, error)

	// Sphere returns a sphere centered on the origin.
	Sphere(radius float64) (Solid, error)

	// Hole returns a blind-hole cutter running from the local XY plane down
	// to -depth. Its two circular edges describe the rims the cut leaves in
	// the stock: the mouth on the XY plane (an opening) and the floor.
	Hole(radius, depth float64) (Solid, error)

	// Rect returns a rectangle sketch.
	Rect(width, height float64, align Align2) (Sketch, error)

	// Circle returns a circle sketch centered on the origin.
	Circle(radius float64) (Sketch, error)

	// Text converts a glyph string into a sketch. fontSize is the em size.
	// Alignment applies to the ink bounds of the whole string.
	Text(text string, fontSize float64, align Align2) (Sketch, error)

	// Extrude sweeps a sketch along local Z by a signed amount.
	Extrude(s Sketch, amount float64) (Solid, error)

	// Place moves a solid from its local frame into the given placement.
	Place(s Solid, at geom.Placement) Solid

	// Union returns the boolean union of one or more solids.
	Union(solids ...Solid) (Solid, error)

	// Difference returns a minus b.
	Difference(a, b Solid) (Solid, error)

	// Fillet rounds the given edges of s with radius.
	Fillet(s Solid, edges []Edge, radius float64) (Solid, error)

	// Chamfer bevels the given edges of s by length.
	Chamfer(s Solid, edges []Edge, length float64) (Solid, error)

	// GridLocations returns countX*countY positions with the given pitch,
	// centered on the origin, ordered row by row from the lowest v.
	GridLocations(pitchX, pitchY float64, countX, countY int) []geom.Vec2

	// Volume returns the volume of s.
	Volume(s Solid) float64
}
