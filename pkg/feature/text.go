package feature

import (
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// TextSpec is a one- or two-line text relief.
//
// The lines sit on either side of an anchor line, Gap apart: the first line
// above (its ink bottom Gap/2 over the anchor), the second below (its ink top
// Gap/2 under it). Both are centered on Anchor.U.
type TextSpec struct {
	Lines    []string
	FontSize float64
	Gap      float64
	Depth    float64
	Relief   Relief

	// Anchor locates the anchor line. Nil means the tower's text offset
	// from the top, centered horizontally.
	Anchor *Position
}

// DefaultText returns the canonical "Slant" / "3D" relief.
func DefaultText(relief Relief) *TextSpec {
	return &TextSpec{
		Lines:    []string{"Slant", "3D"},
		FontSize: 10,
		Gap:      1,
		Depth:    2,
		Relief:   relief,
	}
}

func (s *TextSpec) Kind() string { return "text" }

func (s *TextSpec) Validate() error {
	if len(s.Lines) == 0 || len(s.Lines) > 2 {
		return errs.New(errs.ErrCodeInvalidFeature, "text needs one or two lines, got %d", len(s.Lines))
	}
	for _, l := range s.Lines {
		if err := errs.ValidateText(l); err != nil {
			return err
		}
	}
	if !(s.FontSize > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "font size must be positive, got %g", s.FontSize)
	}
	if !(s.Gap >= 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "text gap must not be negative, got %g", s.Gap)
	}
	if !(s.Depth > 0) {
		return errs.New(errs.ErrCodeInvalidFeature, "text depth must be positive, got %g", s.Depth)
	}
	if _, err := ParseRelief(string(s.Relief)); err != nil {
		return err
	}
	return nil
}

type textLine struct {
	sketch kernel.Sketch
	at     geom.Vec2
	text   string
}

// layout returns the aligned sketches and their anchors on the face.
func (s *TextSpec) layout(ctx Context) ([]textLine, error) {
	anchor := Position{V: ctx.Dims.TextFromTop(), FromTop: true}
	if s.Anchor != nil {
		anchor = *s.Anchor
	}
	a := anchor.Resolve(ctx.Extent)
	half := s.Gap / 2

	aligns := []kernel.Align2{
		{U: kernel.AlignCenter, V: kernel.AlignMin},
		{U: kernel.AlignCenter, V: kernel.AlignMax},
	}
	offsets := []float64{half, -half}
	if len(s.Lines) == 1 {
		aligns = []kernel.Align2{kernel.Centered}
		offsets = []float64{0}
	}

	out := make([]textLine, len(s.Lines))
	for i, line := range s.Lines {
		sk, err := ctx.Kernel.Text(line, s.FontSize, aligns[i])
		if err != nil {
			return nil, kernelErr(err, "text %q", line)
		}
		out[i] = textLine{sketch: sk, at: geom.V2(a.X, a.Y+offsets[i]), text: line}
	}
	return out, nil
}

func (s *TextSpec) Marks(ctx Context) ([]Mark, error) {
	lines, err := s.layout(ctx)
	if err != nil {
		return nil, err
	}
	marks := make([]Mark, len(lines))
	for i, l := range lines {
		marks[i] = Mark{
			Feature: s.Kind(),
			Role:    s.Relief.Role(),
			Shape:   ShapeText,
			Bounds:  l.sketch.Bounds().Translate(l.at),
			Label:   l.text,
		}
	}
	return marks, nil
}

// Build extrudes each line along the face normal, outward when raised and
// inward when engraved.
func (s *TextSpec) Build(ctx Context) (Bundle, error) {
	lines, err := s.layout(ctx)
	if err != nil {
		return Bundle{}, err
	}
	var b Bundle
	depth := s.Relief.Signed(s.Depth)
	for _, l := range lines {
		solid, err := ctx.Kernel.Extrude(l.sketch, depth)
		if err != nil {
			return Bundle{}, kernelErr(err, "extrude text %q", l.text)
		}
		b.Put(s.Relief.Role(), ctx.Kernel.Place(solid, ctx.At(l.at)))
	}
	return b, nil
}
