package feature

import (
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// Treatment is the edge treatment applied to a hole's rims.
type Treatment string

const (
	TreatNone    Treatment = "none"
	TreatFillet  Treatment = "fillet"
	TreatChamfer Treatment = "chamfer"
)

// ParseTreatment parses "none", "fillet" or "chamfer". The empty string is
// "none".
func ParseTreatment(s string) (Treatment, error) {
	switch Treatment(s) {
	case "", TreatNone:
		return TreatNone, nil
	case TreatFillet, TreatChamfer:
		return Treatment(s), nil
	}
	return "", errs.New(errs.ErrCodeInvalidFeature, "unknown edge treatment %q", s)
}

// holeEdges is the number of circular edges a blind hole cutter exposes.
const holeEdges = 2

// edgeTol is the distance within which an edge counts as lying on the face
// plane.
const edgeTol = 1e-6

// HoleSpec is a blind hole cut into a face, optionally with its rims
// treated.
//
// A fillet rounds every circular edge of the hole. A chamfer bevels only the
// mouth, the rim that lies on the face plane.
type HoleSpec struct {
	Radius    float64
	Depth     float64 // zero means the tower's wall thickness
	Center    Position
	Treatment Treatment
	Size      float64 // fillet radius or chamfer length; zero picks the treatment's default
}

// DefaultFilletRadius is the fillet radius used when a hole names none.
const DefaultFilletRadius = 2

// DefaultHole returns the canonical hole: radius 8, 20 below the top,
// depth equal to the wall thickness.
func DefaultHole(t Treatment) *HoleSpec {
	return &HoleSpec{
		Radius:    8,
		Center:    Position{V: 20, FromTop: true},
		Treatment: t,
	}
}

func (s *HoleSpec) Kind() string { return "hole" }

func (s *HoleSpec) Validate() error {
	if !(s.Radius > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "hole radius must be positive, got %g", s.Radius)
	}
	if s.Depth < 0 {
		return errs.New(errs.ErrCodeInvalidFeature, "hole depth must not be negative, got %g", s.Depth)
	}
	if _, err := ParseTreatment(string(s.Treatment)); err != nil {
		return err
	}
	if s.Size < 0 {
		return errs.New(errs.ErrCodeInvalidFeature, "%s size must not be negative, got %g", s.Treatment, s.Size)
	}
	return nil
}

func (s *HoleSpec) depth(ctx Context) float64 {
	if s.Depth > 0 {
		return s.Depth
	}
	return ctx.Dims.Thickness()
}

// size is the treatment size: the declared one, else a fillet radius of
// DefaultFilletRadius or a chamfer as long as the wall is thick.
func (s *HoleSpec) size(ctx Context) float64 {
	if s.Size > 0 {
		return s.Size
	}
	switch s.Treatment {
	case TreatFillet:
		return DefaultFilletRadius
	case TreatChamfer:
		return ctx.Dims.Thickness()
	}
	return 0
}

// Marks reports the hole's outline on the face, widened by the mouth
// treatment.
func (s *HoleSpec) Marks(ctx Context) ([]Mark, error) {
	r := s.Radius
	if s.Treatment == TreatFillet || s.Treatment == TreatChamfer {
		r += s.size(ctx)
	}
	c := s.Center.Resolve(ctx.Extent)
	return []Mark{{
		Feature: s.Kind(),
		Role:    Subtract,
		Shape:   ShapeCircle,
		Bounds:  circleBounds(c, r),
		Label:   string(s.normalized()),
	}}, nil
}

func (s *HoleSpec) normalized() Treatment {
	if s.Treatment == "" {
		return TreatNone
	}
	return s.Treatment
}

// Build cuts the hole from the face plane inward, then treats its rims.
func (s *HoleSpec) Build(ctx Context) (Bundle, error) {
	k := ctx.Kernel
	cutter, err := k.Hole(s.Radius, s.depth(ctx))
	if err != nil {
		return Bundle{}, kernelErr(err, "hole r=%g", s.Radius)
	}
	at := ctx.At(s.Center.Resolve(ctx.Extent))
	placed := k.Place(cutter, at)

	circles := kernel.FilterEdges(placed.Edges(), kernel.EdgeCircle)
	if len(circles) != holeEdges {
		return Bundle{}, errs.New(errs.ErrCodeEdgeSelectionMismatch,
			"hole exposes %d circular edges, want %d", len(circles), holeEdges)
	}

	var treated kernel.Solid
	switch s.normalized() {
	case TreatNone:
		treated = placed
	case TreatFillet:
		treated, err = k.Fillet(placed, circles, s.size(ctx))
		if err != nil {
			return Bundle{}, kernelErr(err, "fillet hole rims r=%g", s.size(ctx))
		}
	case TreatChamfer:
		mouth, err := MouthEdge(circles, at)
		if err != nil {
			return Bundle{}, err
		}
		treated, err = k.Chamfer(placed, []kernel.Edge{mouth}, s.size(ctx))
		if err != nil {
			return Bundle{}, kernelErr(err, "chamfer hole mouth %g", s.size(ctx))
		}
	}

	var b Bundle
	b.Put(Subtract, treated)
	return b, nil
}

// MouthEdge returns the single circular edge lying on the face plane of at
// with its axis along the face normal.
func MouthEdge(edges []kernel.Edge, at geom.Placement) (kernel.Edge, error) {
	on := kernel.OnPlane(kernel.FilterEdges(edges, kernel.EdgeCircle), at.Origin, at.N, edgeTol)
	if len(on) != 1 {
		return kernel.Edge{}, errs.New(errs.ErrCodeEdgeSelectionMismatch,
			"%d circular edges on the face plane, want exactly 1", len(on))
	}
	return on[0], nil
}
