// Package frame resolves tower faces to 3D placements.
//
// Every resolved placement has its N axis pointing out of the tower. On the
// four side faces V is the tower's vertical axis (+Z) and U is "rightward"
// for a viewer standing outside the face. Features are authored in (u, v)
// and extruded along N: positive amounts build outward, negative amounts cut
// inward.
//
//	face   U    V    N    origin
//	front  +X   +Z   -Y   (0, -offset, 0)
//	back   -X   +Z   +Y   (0, -offset, 0)
//	right  +Y   +Z   +X   (offset, 0, 0)
//	left   -Y   +Z   -X   (offset, 0, 0)
//	top    +X   +Y   +Z   (0, 0, offset)
//
// Front and back share the XZ reference plane; back is that plane turned
// 180 degrees about Z, so a feature authored with the same (u, v) on both
// faces reads correctly from outside each. Left and right are built the
// same way on the YZ reference plane.
package frame

import (
	"fmt"
	"strings"

	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
)

// Face identifies one side of the tower.
type Face int

const (
	Front Face = iota
	Back
	Left
	Right
	Top
)

// Order is the fixed order in which faces are built and combined.
var Order = []Face{Front, Back, Left, Right, Top}

var faceNames = [...]string{"front", "back", "left", "right", "top"}

// String returns the lowercase face name.
func (f Face) String() string {
	if f < 0 || int(f) >= len(faceNames) {
		return fmt.Sprintf("face(%d)", int(f))
	}
	return faceNames[f]
}

// Valid reports whether f is one of the five faces.
func (f Face) Valid() bool { return f >= Front && f <= Top }

// Side reports whether f is one of the four vertical faces.
func (f Face) Side() bool { return f >= Front && f <= Right }

// ParseFace parses a face name, case-insensitively.
func ParseFace(s string) (Face, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range faceNames {
		if n == name {
			return Face(i), nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidFace, "unknown face %q (want one of %s)", s, strings.Join(faceNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (f Face) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidFace, "invalid face %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Face) UnmarshalText(b []byte) error {
	v, err := ParseFace(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

var (
	planeXZ = geom.Placement{U: geom.XAxis, V: geom.ZAxis, N: geom.YAxis.Neg()}
	planeYZ = geom.Placement{U: geom.YAxis, V: geom.ZAxis, N: geom.XAxis}
	planeXY = geom.Placement{U: geom.XAxis, V: geom.YAxis, N: geom.ZAxis}
)

// Resolve returns the placement of face at a signed offset along its
// reference plane normal.
func Resolve(face Face, offset float64) (geom.Placement, error) {
	switch face {
	case Front:
		return planeXZ.Offset(offset), nil
	case Back:
		return planeXZ.Offset(offset).HalfTurnZ(), nil
	case Right:
		return planeYZ.Offset(offset), nil
	case Left:
		return planeYZ.Offset(offset).HalfTurnZ(), nil
	case Top:
		return planeXY.Offset(offset), nil
	default:
		return geom.Placement{}, errs.New(errs.ErrCodeInvalidFace, "cannot resolve %s", face)
	}
}

// Offset returns the offset of face for d: the signed face offset for side
// faces and the height for the top.
func Offset(d dims.Dimensions, face Face) (float64, error) {
	switch face {
	case Front:
		return d.Front(), nil
	case Back:
		return d.Back(), nil
	case Left:
		return d.Left(), nil
	case Right:
		return d.Right(), nil
	case Top:
		return d.Height(), nil
	default:
		return 0, errs.New(errs.ErrCodeInvalidFace, "no offset for %s", face)
	}
}

// ForFace resolves face on the tower described by d.
func ForFace(d dims.Dimensions, face Face) (geom.Placement, error) {
	off, err := Offset(d, face)
	if err != nil {
		return geom.Placement{}, err
	}
	return Resolve(face, off)
}

// Extent returns the face's in-plane rectangle in local (u, v) coordinates.
// Side faces span their horizontal edge of the footprint and the height,
// with v = 0 at the base; the top spans the footprint centered on the origin.
func Extent(d dims.Dimensions, face Face) (geom.Rect, error) {
	if !face.Valid() {
		return geom.Rect{}, errs.New(errs.ErrCodeInvalidFace, "no extent for %s", face)
	}
	if face == Top {
		hl, hw := d.Length()/2, d.Width()/2
		return geom.Rect{Min: geom.V2(-hl, -hw), Max: geom.V2(hl, hw)}, nil
	}
	half := d.Length() / 2
	if face == Left || face == Right {
		half = d.Width() / 2
	}
	return geom.Rect{Min: geom.V2(-half, 0), Max: geom.V2(half, d.Height())}, nil
}
