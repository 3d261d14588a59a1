package dims

import (
	"math"
	"testing"

	errs "github.com/matzehuels/slanttower/pkg/errors"
)

func TestOffsets(t *testing.T) {
	for _, w := range []float64{1, 10, 25, 33.3} {
		s := DefaultSpec()
		s.Length, s.Width = w, w
		s.Thickness = w / 10
		d, err := New(s)
		if err != nil {
			t.Fatalf("New(%v): %v", s, err)
		}
		if d.Front() != w/2 || -d.Back() != w/2 {
			t.Errorf("w=%g: front=%g back=%g, want ±%g", w, d.Front(), d.Back(), w/2)
		}
		if d.Right() != w/2 || -d.Left() != w/2 {
			t.Errorf("w=%g: right=%g left=%g, want ±%g", w, d.Right(), d.Left(), w/2)
		}
		if d.Front() != -d.Back() || d.Right() != -d.Left() {
			t.Errorf("w=%g: offsets not symmetric", w)
		}
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if !d.Valid() {
		t.Fatal("Default() not valid")
	}
	if got := d.BaseVolume(); got != 46875 {
		t.Errorf("BaseVolume() = %g, want 46875", got)
	}
	if d.Thickness() != 2.5 || d.TextFromTop() != 10 {
		t.Errorf("unexpected defaults: %v", d.Spec())
	}
	if d.String() != "25x25x75 (t=2.5)" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestNewRejects(t *testing.T) {
	mod := func(f func(*Spec)) Spec {
		s := DefaultSpec()
		f(&s)
		return s
	}
	tests := []struct {
		name string
		spec Spec
	}{
		{"zero length", mod(func(s *Spec) { s.Length = 0 })},
		{"negative width", mod(func(s *Spec) { s.Width = -25 })},
		{"zero height", mod(func(s *Spec) { s.Height = 0 })},
		{"nan height", mod(func(s *Spec) { s.Height = math.NaN() })},
		{"infinite length", mod(func(s *Spec) { s.Length, s.Width = math.Inf(1), math.Inf(1) })},
		{"not square", mod(func(s *Spec) { s.Length = 30 })},
		{"zero thickness", mod(func(s *Spec) { s.Thickness = 0 })},
		{"thick walls", mod(func(s *Spec) { s.Thickness = 12.5 })},
		{"negative text offset", mod(func(s *Spec) { s.TextFromTop = -1 })},
		{"text offset past base", mod(func(s *Spec) { s.TextFromTop = 75 })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.spec)
			if err == nil {
				t.Fatalf("New(%+v) succeeded, want error", tt.spec)
			}
			if !errs.Is(err, errs.ErrCodeInvalidDimension) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidDimension)
			}
			if d.Valid() {
				t.Error("failed New returned valid Dimensions")
			}
		})
	}
}

func TestSpecIsCopied(t *testing.T) {
	d := Default()
	s := d.Spec()
	s.Height = 1
	if d.Height() != 75 {
		t.Errorf("Height() = %g after mutating copy, want 75", d.Height())
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew did not panic")
		}
	}()
	MustNew(Spec{})
}
