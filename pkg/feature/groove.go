package feature

import (
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// GrooveSpec is a horizontal band cut across the full width of a side face.
type GrooveSpec struct {
	Height float64 // center of the band above the base
	Width  float64 // band height along v
	Depth  float64
}

// DefaultGrooves returns the two grooves at one and two thirds of the tower
// height: 1 mm wide, 2 mm deep.
func DefaultGrooves(height float64) []*GrooveSpec {
	return []*GrooveSpec{
		{Height: height / 3, Width: 1, Depth: 2},
		{Height: 2 * height / 3, Width: 1, Depth: 2},
	}
}

func (s *GrooveSpec) Kind() string { return "groove" }

func (s *GrooveSpec) Validate() error {
	if !(s.Width > 0) || !(s.Depth > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "groove width and depth must be positive, got %g and %g", s.Width, s.Depth)
	}
	return nil
}

func (s *GrooveSpec) band(ctx Context) geom.Rect {
	half := s.Width / 2
	return geom.Rect{
		Min: geom.V2(ctx.Extent.Min.X, s.Height-half),
		Max: geom.V2(ctx.Extent.Max.X, s.Height+half),
	}
}

func (s *GrooveSpec) Marks(ctx Context) ([]Mark, error) {
	if !ctx.Face.Side() {
		return nil, errs.New(errs.ErrCodeInvalidFeature, "grooves run around side faces, not %s", ctx.Face)
	}
	return []Mark{{
		Feature: s.Kind(),
		Role:    Subtract,
		Shape:   ShapeRect,
		Bounds:  s.band(ctx),
	}}, nil
}

func (s *GrooveSpec) Build(ctx Context) (Bundle, error) {
	if !ctx.Face.Side() {
		return Bundle{}, errs.New(errs.ErrCodeInvalidFeature, "grooves run around side faces, not %s", ctx.Face)
	}
	band := s.band(ctx)
	size := band.Size()
	sk, err := ctx.Kernel.Rect(size.X, size.Y, kernel.Centered)
	if err != nil {
		return Bundle{}, kernelErr(err, "groove profile")
	}
	cut, err := ctx.Kernel.Extrude(sk, -s.Depth)
	if err != nil {
		return Bundle{}, kernelErr(err, "groove")
	}
	var b Bundle
	b.Put(Subtract, ctx.Kernel.Place(cut, ctx.At(band.Center())))
	return b, nil
}
