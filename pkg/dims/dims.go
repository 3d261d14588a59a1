// Package dims holds the tower's parametric dimensions.
//
// A [Dimensions] value is built once with [New], validated, and never changes
// afterwards. Face offsets are derived from the width at construction time:
// front and right sit at +Width/2, back and left at -Width/2, each measured
// along the reference plane normal of its face (-Y for front/back, +X for
// left/right). All lengths are millimetres.
package dims

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/slanttower/pkg/errors"
)

// Spec holds the base lengths a tower is built from.
type Spec struct {
	Length      float64 `toml:"length" json:"length"`
	Width       float64 `toml:"width" json:"width"`
	Height      float64 `toml:"height" json:"height"`
	Thickness   float64 `toml:"thickness" json:"thickness"`
	TextFromTop float64 `toml:"text_from_top" json:"text_from_top"`
}

// DefaultSpec returns the canonical 25 x 25 x 75 tower.
func DefaultSpec() Spec {
	return Spec{
		Length:      25,
		Width:       25,
		Height:      75,
		Thickness:   2.5,
		TextFromTop: 10,
	}
}

// Validate checks s. Errors carry [errs.ErrCodeInvalidDimension].
//
// Lengths must be positive and finite, and the footprint must be square
// (Length == Width) because every side face offset derives from Width.
// Thickness must be positive and under half the footprint, and TextFromTop
// must lie in [0, Height).
func (s Spec) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"length", s.Length},
		{"width", s.Width},
		{"height", s.Height},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return errs.New(errs.ErrCodeInvalidDimension, "%s must be positive, got %g", f.name, f.v)
		}
	}
	if s.Length != s.Width {
		return errs.New(errs.ErrCodeInvalidDimension, "tower footprint must be square, got %g x %g", s.Length, s.Width)
	}
	if !(s.Thickness > 0) {
		return errs.New(errs.ErrCodeInvalidDimension, "thickness must be positive, got %g", s.Thickness)
	}
	if limit := math.Min(s.Length, s.Width) / 2; s.Thickness >= limit {
		return errs.New(errs.ErrCodeInvalidDimension, "thickness %g must be less than %g", s.Thickness, limit)
	}
	if !(s.TextFromTop >= 0) || s.TextFromTop >= s.Height {
		return errs.New(errs.ErrCodeInvalidDimension, "text_from_top %g must lie in [0, %g)", s.TextFromTop, s.Height)
	}
	return nil
}

// Dimensions is a validated, immutable set of tower dimensions.
type Dimensions struct {
	spec                     Spec
	front, back, left, right float64
}

// New validates s and derives the face offsets.
func New(s Spec) (Dimensions, error) {
	if err := s.Validate(); err != nil {
		return Dimensions{}, err
	}
	half := s.Width / 2
	return Dimensions{
		spec:  s,
		front: half,
		back:  -half,
		left:  -half,
		right: half,
	}, nil
}

// MustNew is like New but panics on invalid input. It is meant for tests and
// package-level canonical values.
func MustNew(s Spec) Dimensions {
	d, err := New(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Default returns the canonical tower dimensions.
func Default() Dimensions { return MustNew(DefaultSpec()) }

func (d Dimensions) Length() float64      { return d.spec.Length }
func (d Dimensions) Width() float64       { return d.spec.Width }
func (d Dimensions) Height() float64      { return d.spec.Height }
func (d Dimensions) Thickness() float64   { return d.spec.Thickness }
func (d Dimensions) TextFromTop() float64 { return d.spec.TextFromTop }

// Front is the front face offset (+Width/2).
func (d Dimensions) Front() float64 { return d.front }

// Back is the back face offset (-Width/2).
func (d Dimensions) Back() float64 { return d.back }

// Left is the left face offset (-Width/2).
func (d Dimensions) Left() float64 { return d.left }

// Right is the right face offset (+Width/2).
func (d Dimensions) Right() float64 { return d.right }

// Spec returns a copy of the base lengths.
func (d Dimensions) Spec() Spec { return d.spec }

// Valid reports whether d was produced by New. The zero value is not valid.
func (d Dimensions) Valid() bool { return d.spec.Height > 0 }

// BaseVolume is the volume of the base box.
func (d Dimensions) BaseVolume() float64 {
	return d.spec.Length * d.spec.Width * d.spec.Height
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%gx%g (t=%g)", d.spec.Length, d.spec.Width, d.spec.Height, d.spec.Thickness)
}
