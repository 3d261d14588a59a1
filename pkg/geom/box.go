package geom

import "math"

// Rect is an axis-aligned rectangle in a face-local 2D frame.
type Rect struct {
	Min, Max Vec2
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Size returns the width and height of r.
func (r Rect) Size() Vec2 { return r.Max.Sub(r.Min) }

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 { return r.Min.Add(r.Max).Scale(0.5) }

// Contains reports whether p lies inside r (boundary inclusive).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Union returns the smallest rectangle enclosing r and o. An empty receiver
// is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Min: Vec2{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Vec2{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Translate returns r moved by d.
func (r Rect) Translate(d Vec2) Rect { return Rect{r.Min.Add(d), r.Max.Add(d)} }

// Box is an axis-aligned bounding box in 3D.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box that acts as the identity for Union.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// Empty reports whether b encloses no volume.
func (b Box) Empty() bool {
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y || b.Max.Z <= b.Min.Z
}

// Size returns the extent of b along each axis.
func (b Box) Size() Vec3 { return b.Max.Sub(b.Min) }

// Center returns the midpoint of b.
func (b Box) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Volume returns the volume of b, or zero when b is empty.
func (b Box) Volume() float64 {
	if b.Empty() {
		return 0
	}
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Contains reports whether p lies inside b (boundary inclusive).
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union returns the smallest box enclosing b and o.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersect returns the overlap of b and o. The result may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
}

// Overlaps reports whether b and o share any volume.
func (b Box) Overlaps(o Box) bool { return !b.Intersect(o).Empty() }

// Expand grows b by d on every side.
func (b Box) Expand(d float64) Box {
	v := Vec3{d, d, d}
	return Box{Min: b.Min.Sub(v), Max: b.Max.Add(v)}
}

// Corners returns the eight corners of b.
func (b Box) Corners() [8]Vec3 {
	var out [8]Vec3
	for i := range out {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out[i] = c
	}
	return out
}
