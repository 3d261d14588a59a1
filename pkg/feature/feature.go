// Package feature builds the per-face features of a tower.
//
// A [Feature] turns the tower's [dims.Dimensions] and a face's local frame
// into solids tagged additive or subtractive, collected in a [Bundle]. A
// [FaceBuilder] groups the features declared for one face. Builders are pure:
// they read the dimensions and the frame and return fresh solids every call.
//
// # Sign convention
//
// Every face frame's N axis points out of the tower. Extrusions are signed
// along N: a raised relief extrudes +depth and is additive, an engraved
// relief extrudes -depth and is subtractive. Features declare the relief (or
// intent) and a positive magnitude; the sign and the bundle role follow from
// that one declaration.
package feature

import (
	"fmt"
	"math"

	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// Role says which half of a bundle a solid belongs to.
type Role = errs.Role

const (
	Add      = errs.RoleAdd
	Subtract = errs.RoleSubtract
)

// ParseRole parses "add" or "subtract".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case Add, Subtract:
		return Role(s), nil
	}
	return "", errs.New(errs.ErrCodeInvalidFeature, "unknown intent %q (want add or subtract)", s)
}

// Relief says whether a sketch stands out of the face or is cut into it.
type Relief string

const (
	Raised   Relief = "raised"
	Engraved Relief = "engraved"
)

// ParseRelief parses "raised" or "engraved".
func ParseRelief(s string) (Relief, error) {
	switch Relief(s) {
	case Raised, Engraved:
		return Relief(s), nil
	}
	return "", errs.New(errs.ErrCodeInvalidFeature, "unknown relief %q (want raised or engraved)", s)
}

// Role returns the bundle role of the relief.
func (r Relief) Role() Role {
	if r == Engraved {
		return Subtract
	}
	return Add
}

// Signed returns depth signed along the face normal.
func (r Relief) Signed(depth float64) float64 {
	if r == Engraved {
		return -math.Abs(depth)
	}
	return math.Abs(depth)
}

// Position is a point in a face's local (u, v) frame. With FromTop set, V
// is measured down from the top edge of the face instead of up from its
// bottom edge.
type Position struct {
	U       float64 `toml:"u" json:"u"`
	V       float64 `toml:"v" json:"v"`
	FromTop bool    `toml:"from_top" json:"from_top"`
}

// Resolve returns the local coordinates of p on a face with the given
// extent.
func (p Position) Resolve(extent geom.Rect) geom.Vec2 {
	if p.FromTop {
		return geom.V2(p.U, extent.Max.Y-p.V)
	}
	return geom.V2(p.U, p.V)
}

// Context is what a feature sees while building.
type Context struct {
	Kernel kernel.Kernel
	Dims   dims.Dimensions
	Face   frame.Face
	Frame  geom.Placement
	Extent geom.Rect
}

// NewContext resolves the frame and extent of face.
func NewContext(k kernel.Kernel, d dims.Dimensions, face frame.Face) (Context, error) {
	at, err := frame.ForFace(d, face)
	if err != nil {
		return Context{}, err
	}
	ext, err := frame.Extent(d, face)
	if err != nil {
		return Context{}, err
	}
	return Context{Kernel: k, Dims: d, Face: face, Frame: at, Extent: ext}, nil
}

// At returns the frame moved to local (u, v) on the face plane.
func (c Context) At(p geom.Vec2) geom.Placement {
	return c.Frame.Moved(geom.V3(p.X, p.Y, 0))
}

// Shape is the outline kind of a mark.
type Shape string

const (
	ShapeRect   Shape = "rect"
	ShapeCircle Shape = "circle"
	ShapeText   Shape = "text"
)

// Mark is a feature's footprint on its face, in local (u, v) coordinates.
// Circles are described by their bounding square.
type Mark struct {
	Feature string
	Role    Role
	Shape   Shape
	Bounds  geom.Rect
	Label   string
}

// Feature is one declared feature on a face.
type Feature interface {
	// Kind names the feature type ("text", "hole", ...).
	Kind() string

	// Validate checks the feature's own parameters.
	Validate() error

	// Marks returns the feature's footprint on the face.
	Marks(ctx Context) ([]Mark, error)

	// Build returns the feature's solids.
	Build(ctx Context) (Bundle, error)
}

// Builder produces the bundle of one face.
type Builder interface {
	Face() frame.Face
	Build(k kernel.Kernel, d dims.Dimensions) (Bundle, error)
}

// Marker is implemented by builders that can report their footprints
// without building geometry.
type Marker interface {
	Marks(k kernel.Kernel, d dims.Dimensions) ([]Mark, error)
}

// FaceBuilder builds the features declared for one face, in order.
type FaceBuilder struct {
	face     frame.Face
	features []Feature
}

// NewFaceBuilder returns a builder for face.
func NewFaceBuilder(face frame.Face, features ...Feature) *FaceBuilder {
	return &FaceBuilder{face: face, features: append([]Feature(nil), features...)}
}

// Face returns the face the builder targets.
func (b *FaceBuilder) Face() frame.Face { return b.face }

// Features returns the declared features.
func (b *FaceBuilder) Features() []Feature { return append([]Feature(nil), b.features...) }

// Build validates each feature, checks that its footprint stays on the face,
// and merges the feature bundles. A builder without features returns the
// empty bundle.
func (b *FaceBuilder) Build(k kernel.Kernel, d dims.Dimensions) (Bundle, error) {
	var out Bundle
	if len(b.features) == 0 {
		return out, nil
	}
	ctx, err := NewContext(k, d, b.face)
	if err != nil {
		return Bundle{}, err
	}
	for i, f := range b.features {
		if err := f.Validate(); err != nil {
			return Bundle{}, attribute(err, b.face, fmt.Sprintf("%s #%d", f.Kind(), i+1))
		}
		marks, err := f.Marks(ctx)
		if err != nil {
			return Bundle{}, attribute(err, b.face, fmt.Sprintf("%s #%d", f.Kind(), i+1))
		}
		for _, m := range marks {
			if !within(ctx.Extent, m.Bounds) {
				return Bundle{}, errs.New(errs.ErrCodeInvalidFeature,
					"%s #%d footprint %v..%v leaves the %s face", f.Kind(), i+1, m.Bounds.Min, m.Bounds.Max, b.face).
					At(b.face.String(), m.Role)
			}
		}
		fb, err := f.Build(ctx)
		if err != nil {
			return Bundle{}, attribute(err, b.face, fmt.Sprintf("%s #%d", f.Kind(), i+1))
		}
		out.Merge(fb)
	}
	return out, nil
}

// Marks returns the footprints of all features on the face.
func (b *FaceBuilder) Marks(k kernel.Kernel, d dims.Dimensions) ([]Mark, error) {
	ctx, err := NewContext(k, d, b.face)
	if err != nil {
		return nil, err
	}
	var out []Mark
	for _, f := range b.features {
		if err := f.Validate(); err != nil {
			return nil, attribute(err, b.face, f.Kind())
		}
		m, err := f.Marks(ctx)
		if err != nil {
			return nil, attribute(err, b.face, f.Kind())
		}
		out = append(out, m...)
	}
	return out, nil
}

// footprintTol absorbs rounding in glyph outlines and grid positions.
const footprintTol = 1e-6

func within(extent, r geom.Rect) bool {
	return r.Min.X >= extent.Min.X-footprintTol && r.Max.X <= extent.Max.X+footprintTol &&
		r.Min.Y >= extent.Min.Y-footprintTol && r.Max.Y <= extent.Max.Y+footprintTol
}

// attribute stamps err with the face unless it already carries one. Kernel
// errors become degenerate-geometry errors.
func attribute(err error, face frame.Face, what string) error {
	if _, _, ok := errs.Attribution(err); ok {
		return err
	}
	var e *errs.Error
	if code := errs.GetCode(err); code != "" {
		e = errs.Wrap(code, err, "%s", what)
	} else {
		e = errs.Wrap(errs.ErrCodeDegenerateGeometry, err, "%s", what)
	}
	return e.At(face.String(), "")
}

// kernelErr wraps a kernel failure while building a feature.
func kernelErr(err error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeDegenerateGeometry, err, format, args...)
}

// circleBounds returns the bounding square of a circle.
func circleBounds(c geom.Vec2, r float64) geom.Rect {
	return geom.Rect{Min: geom.V2(c.X-r, c.Y-r), Max: geom.V2(c.X+r, c.Y+r)}
}

// gridBounds returns the bounding rectangle of a grid of squares or circles
// of half-size h centered at c.
func gridBounds(c geom.Vec2, pitchX, pitchY float64, countX, countY int, h float64) geom.Rect {
	w := pitchX*float64(countX-1)/2 + h
	v := pitchY*float64(countY-1)/2 + h
	return geom.Rect{Min: geom.V2(c.X-w, c.Y-v), Max: geom.V2(c.X+w, c.Y+v)}
}

var (
	_ Builder = (*FaceBuilder)(nil)
	_ Marker  = (*FaceBuilder)(nil)
)
