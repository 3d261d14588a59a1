package geom

// Placement is a rigid frame: an origin and three orthonormal axes. Local
// coordinates (u, v, w) map to Origin + u*U + v*V + w*N.
//
// For face frames U is "rightward when viewed from outside", V is up along
// the face, and N is the outward normal.
type Placement struct {
	Origin  Vec3
	U, V, N Vec3
}

// Identity is the world frame.
var Identity = Placement{U: XAxis, V: YAxis, N: ZAxis}

// ToWorld maps a local point into world space.
func (p Placement) ToWorld(l Vec3) Vec3 {
	return p.Origin.Add(p.U.Scale(l.X)).Add(p.V.Scale(l.Y)).Add(p.N.Scale(l.Z))
}

// ToLocal maps a world point into local coordinates.
func (p Placement) ToLocal(w Vec3) Vec3 {
	d := w.Sub(p.Origin)
	return Vec3{d.Dot(p.U), d.Dot(p.V), d.Dot(p.N)}
}

// Dir maps a local direction into world space (no translation).
func (p Placement) Dir(l Vec3) Vec3 {
	return p.U.Scale(l.X).Add(p.V.Scale(l.Y)).Add(p.N.Scale(l.Z))
}

// At returns the world point for in-plane coordinates (u, v) on the frame's
// plane (w = 0).
func (p Placement) At(u, v float64) Vec3 { return p.ToWorld(Vec3{u, v, 0}) }

// Offset returns a copy moved by d along N.
func (p Placement) Offset(d float64) Placement {
	p.Origin = p.Origin.Add(p.N.Scale(d))
	return p
}

// Moved returns a copy whose origin is shifted to local (u, v, w).
func (p Placement) Moved(l Vec3) Placement {
	p.Origin = p.ToWorld(l)
	return p
}

// Compose returns the placement of a frame given in p's local coordinates.
func (p Placement) Compose(inner Placement) Placement {
	return Placement{
		Origin: p.ToWorld(inner.Origin),
		U:      p.Dir(inner.U),
		V:      p.Dir(inner.V),
		N:      p.Dir(inner.N),
	}
}

// HalfTurnZ returns p with its axes rotated 180 degrees about the world Z
// axis. The origin is left in place. The rotation is exact, so axis-aligned
// frames stay axis-aligned.
func (p Placement) HalfTurnZ() Placement {
	turn := func(v Vec3) Vec3 { return Vec3{-v.X, -v.Y, v.Z} }
	p.U, p.V, p.N = turn(p.U), turn(p.V), turn(p.N)
	return p
}

// BoxToWorld returns the world AABB of a local box.
func (p Placement) BoxToWorld(b Box) Box {
	out := EmptyBox()
	for _, c := range b.Corners() {
		w := p.ToWorld(c)
		out = Box{Min: out.Min.Min(w), Max: out.Max.Max(w)}
	}
	return out
}

// RightHanded reports whether U × V == N within tolerance.
func (p Placement) RightHanded() bool {
	return p.U.Cross(p.V).Near(p.N, 1e-9)
}
