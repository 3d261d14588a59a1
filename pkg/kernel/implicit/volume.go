package implicit

import (
	"math"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// Volume returns the volume of s. Primitives are exact; booleans are
// decomposed so that only the overlap regions between operands are sampled,
// on a midpoint grid with the kernel's cell size.
func (k *Kernel) Volume(s kernel.Solid) float64 {
	if v, ok := s.(volumer); ok {
		return v.volume(k)
	}
	return k.sample(s.Bounds(), s.Contains)
}

// overlap returns the volume of a ∩ (parts[0] ∪ parts[1] ∪ ...). Each part
// is sampled only over its own bounds, excluding points already counted for
// an earlier part.
func (k *Kernel) overlap(a kernel.Solid, parts []kernel.Solid) float64 {
	parts = flatten(parts)
	ab := a.Bounds()
	total := 0.0
	for j, c := range parts {
		region := ab.Intersect(c.Bounds())
		if region.Empty() {
			continue
		}
		prev := parts[:j]
		total += k.sample(region, func(p geom.Vec3) bool {
			if !c.Contains(p) || !a.Contains(p) {
				return false
			}
			for _, q := range prev {
				if q.Bounds().Contains(p) && q.Contains(p) {
					return false
				}
			}
			return true
		})
	}
	return total
}

// flatten expands nested unions so each leaf is sampled over its own bounds.
func flatten(parts []kernel.Solid) []kernel.Solid {
	nested := false
	for _, p := range parts {
		if _, ok := p.(*union); ok {
			nested = true
			break
		}
	}
	if !nested {
		return parts
	}
	var out []kernel.Solid
	for _, p := range parts {
		if u, ok := p.(*union); ok {
			out = append(out, flatten(u.children)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// sample integrates the indicator in over region with the midpoint rule.
func (k *Kernel) sample(region geom.Box, in func(geom.Vec3) bool) float64 {
	if region.Empty() {
		return 0
	}
	size := region.Size()
	nx, ny, nz := k.steps(size.X), k.steps(size.Y), k.steps(size.Z)
	dx, dy, dz := size.X/float64(nx), size.Y/float64(ny), size.Z/float64(nz)

	count := 0
	var p geom.Vec3
	for i := 0; i < nx; i++ {
		p.X = region.Min.X + (float64(i)+0.5)*dx
		for j := 0; j < ny; j++ {
			p.Y = region.Min.Y + (float64(j)+0.5)*dy
			for l := 0; l < nz; l++ {
				p.Z = region.Min.Z + (float64(l)+0.5)*dz
				if in(p) {
					count++
				}
			}
		}
	}
	return float64(count) * dx * dy * dz
}

// area integrates a sketch's indicator over its bounds. Rectangles and
// circles are exact.
func (k *Kernel) area(s kernel.Sketch) float64 {
	switch sk := s.(type) {
	case *rectSketch:
		size := sk.r.Size()
		return size.X * size.Y
	case *circleSketch:
		return math.Pi * sk.radius * sk.radius
	}
	r := s.Bounds()
	if r.Empty() {
		return 0
	}
	cell := k.cell / 4
	size := r.Size()
	nx, ny := stepsFor(size.X, cell), stepsFor(size.Y, cell)
	dx, dy := size.X/float64(nx), size.Y/float64(ny)
	count := 0
	for i := 0; i < nx; i++ {
		x := r.Min.X + (float64(i)+0.5)*dx
		for j := 0; j < ny; j++ {
			if s.Contains(geom.Vec2{X: x, Y: r.Min.Y + (float64(j)+0.5)*dy}) {
				count++
			}
		}
	}
	return float64(count) * dx * dy
}

func (k *Kernel) steps(extent float64) int { return stepsFor(extent, k.cell) }

func stepsFor(extent, cell float64) int {
	n := int(math.Ceil(extent/cell - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}
