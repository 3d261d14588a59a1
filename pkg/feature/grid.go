package feature

import (
	"fmt"

	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// Grid is a rectangular array of positions centered on a face point.
type Grid struct {
	PitchX, PitchY float64
	CountX, CountY int
	Center         Position
}

func (g Grid) validate(what string) error {
	if g.CountX < 1 || g.CountY < 1 {
		return errs.New(errs.ErrCodeInvalidFeature, "%s needs at least one row and column, got %dx%d", what, g.CountX, g.CountY)
	}
	if !(g.PitchX > 0) || !(g.PitchY > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "%s pitch must be positive, got %gx%g", what, g.PitchX, g.PitchY)
	}
	return nil
}

func (g Grid) locations(ctx Context) []geom.Vec2 {
	c := g.Center.Resolve(ctx.Extent)
	locs := ctx.Kernel.GridLocations(g.PitchX, g.PitchY, g.CountX, g.CountY)
	for i := range locs {
		locs[i] = locs[i].Add(c)
	}
	return locs
}

func (g Grid) bounds(ctx Context, half float64) geom.Rect {
	return gridBounds(g.Center.Resolve(ctx.Extent), g.PitchX, g.PitchY, g.CountX, g.CountY, half)
}

func (g Grid) label() string {
	return fmt.Sprintf("%dx%d @ %gx%g", g.CountX, g.CountY, g.PitchX, g.PitchY)
}

// GridCutoutSpec is a grid of square apertures cut to a shallow depth.
type GridCutoutSpec struct {
	Grid
	Size  float64
	Depth float64
}

// DefaultGridCutout returns the canonical 3 x 3 grid of 2 mm squares,
// pitch 4, depth 1, centered at c.
func DefaultGridCutout(c Position) *GridCutoutSpec {
	return &GridCutoutSpec{
		Grid:  Grid{PitchX: 4, PitchY: 4, CountX: 3, CountY: 3, Center: c},
		Size:  2,
		Depth: 1,
	}
}

func (s *GridCutoutSpec) Kind() string { return "grid" }

func (s *GridCutoutSpec) Validate() error {
	if err := s.Grid.validate("grid cutout"); err != nil {
		return err
	}
	if !(s.Size > 0) || !(s.Depth > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "grid cutout size and depth must be positive, got %g and %g", s.Size, s.Depth)
	}
	return nil
}

func (s *GridCutoutSpec) Marks(ctx Context) ([]Mark, error) {
	return []Mark{{
		Feature: s.Kind(),
		Role:    Subtract,
		Shape:   ShapeRect,
		Bounds:  s.bounds(ctx, s.Size/2),
		Label:   s.label(),
	}}, nil
}

// Build cuts one square per grid location and returns them as one solid.
func (s *GridCutoutSpec) Build(ctx Context) (Bundle, error) {
	k := ctx.Kernel
	square, err := k.Rect(s.Size, s.Size, kernel.Centered)
	if err != nil {
		return Bundle{}, kernelErr(err, "grid aperture")
	}
	locs := s.locations(ctx)
	cells := make([]kernel.Solid, 0, len(locs))
	for _, p := range locs {
		cell, err := k.Extrude(square, -s.Depth)
		if err != nil {
			return Bundle{}, kernelErr(err, "grid aperture")
		}
		cells = append(cells, k.Place(cell, ctx.At(p)))
	}
	grid, err := k.Union(cells...)
	if err != nil {
		return Bundle{}, kernelErr(err, "grid cutout")
	}
	var b Bundle
	b.Put(Subtract, grid)
	return b, nil
}

// BumpGridSpec is a grid of spheres centered on the face plane. Intent
// decides whether the bumps are added to or cut from the tower.
type BumpGridSpec struct {
	Grid
	Radius float64
	Intent Role
}

// DefaultBumpGrid returns the canonical 3 x 3 grid of 1 mm bumps, pitch 4,
// centered at c.
func DefaultBumpGrid(c Position, intent Role) *BumpGridSpec {
	return &BumpGridSpec{
		Grid:   Grid{PitchX: 4, PitchY: 4, CountX: 3, CountY: 3, Center: c},
		Radius: 1,
		Intent: intent,
	}
}

func (s *BumpGridSpec) Kind() string { return "bumps" }

func (s *BumpGridSpec) Validate() error {
	if err := s.Grid.validate("bump grid"); err != nil {
		return err
	}
	if !(s.Radius > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "bump radius must be positive, got %g", s.Radius)
	}
	if _, err := ParseRole(string(s.intent())); err != nil {
		return err
	}
	return nil
}

func (s *BumpGridSpec) intent() Role {
	if s.Intent == "" {
		return Add
	}
	return s.Intent
}

func (s *BumpGridSpec) Marks(ctx Context) ([]Mark, error) {
	return []Mark{{
		Feature: s.Kind(),
		Role:    s.intent(),
		Shape:   ShapeRect,
		Bounds:  s.bounds(ctx, s.Radius),
		Label:   s.label(),
	}}, nil
}

func (s *BumpGridSpec) Build(ctx Context) (Bundle, error) {
	k := ctx.Kernel
	locs := s.locations(ctx)
	bumps := make([]kernel.Solid, 0, len(locs))
	for _, p := range locs {
		ball, err := k.Sphere(s.Radius)
		if err != nil {
			return Bundle{}, kernelErr(err, "bump")
		}
		bumps = append(bumps, k.Place(ball, ctx.At(p)))
	}
	grid, err := k.Union(bumps...)
	if err != nil {
		return Bundle{}, kernelErr(err, "bump grid")
	}
	var b Bundle
	b.Put(s.intent(), grid)
	return b, nil
}
