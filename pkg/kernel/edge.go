package kernel

import (
	"fmt"
	"math"

	"github.com/matzehuels/slanttower/pkg/geom"
)

// EdgeKind classifies an edge by its curve type.
type EdgeKind int

const (
	EdgeLine EdgeKind = iota
	EdgeCircle
)

// String returns the lowercase name of the kind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeLine:
		return "line"
	case EdgeCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// EdgeSide says which way a treatment moves the solid's boundary.
type EdgeSide int

const (
	// SideMaterial is an ordinary convex edge of the solid: treating it
	// trims the solid.
	SideMaterial EdgeSide = iota

	// SideOpening is the rim a cutter opens onto the stock: treating it
	// rounds or bevels the stock's convex edge, which widens the cutter.
	SideOpening
)

func (s EdgeSide) String() string {
	if s == SideOpening {
		return "opening"
	}
	return "material"
}

// Edge is a tracked edge of a solid.
//
// For circular edges Center is the circle center, Axis is the unit vector
// from the rim along the adjoining bore into the solid, Radius is the circle
// radius, and Length is the axial extent of the adjoining cylindrical face.
// For line edges Center is the midpoint, Axis the direction, and Length the
// edge length.
type Edge struct {
	Kind   EdgeKind
	Center geom.Vec3
	Axis   geom.Vec3
	Radius float64
	Length float64
	Side   EdgeSide

	// Smooth marks tangent-continuous edges left behind by a fillet.
	Smooth bool
}

func (e Edge) String() string {
	if e.Kind == EdgeCircle {
		return fmt.Sprintf("circle(r=%.3g at %.3g,%.3g,%.3g %s)", e.Radius, e.Center.X, e.Center.Y, e.Center.Z, e.Side)
	}
	return fmt.Sprintf("line(len=%.3g at %.3g,%.3g,%.3g)", e.Length, e.Center.X, e.Center.Y, e.Center.Z)
}

// Same reports whether e and o describe the same edge within tol.
func (e Edge) Same(o Edge, tol float64) bool {
	return e.Kind == o.Kind &&
		e.Side == o.Side &&
		e.Smooth == o.Smooth &&
		math.Abs(e.Radius-o.Radius) <= tol &&
		math.Abs(e.Length-o.Length) <= tol &&
		e.Center.Near(o.Center, tol) &&
		e.Axis.Near(o.Axis, tol)
}

// Transformed returns e moved into the given placement.
func (e Edge) Transformed(p geom.Placement) Edge {
	e.Center = p.ToWorld(e.Center)
	e.Axis = p.Dir(e.Axis)
	return e
}

// FilterEdges returns the edges of the given kind.
func FilterEdges(edges []Edge, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// SharpEdges returns the edges that are not tangent-continuous.
func SharpEdges(edges []Edge) []Edge {
	var out []Edge
	for _, e := range edges {
		if !e.Smooth {
			out = append(out, e)
		}
	}
	return out
}

// OnPlane returns the edges whose center lies on the plane through origin
// with the given normal, and whose axis is parallel to that normal.
func OnPlane(edges []Edge, origin, normal geom.Vec3, tol float64) []Edge {
	n := normal.Unit()
	var out []Edge
	for _, e := range edges {
		if math.Abs(e.Center.Sub(origin).Dot(n)) > tol {
			continue
		}
		if e.Kind == EdgeCircle && math.Abs(math.Abs(e.Axis.Dot(n))-1) > tol {
			continue
		}
		out = append(out, e)
	}
	return out
}
