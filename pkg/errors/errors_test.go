package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDimension, "height must be positive, got %g", -1.0)

	if err.Code != ErrCodeInvalidDimension {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDimension)
	}

	if err.Message != "height must be positive, got -1" {
		t.Errorf("Message = %v, want %v", err.Message, "height must be positive, got -1")
	}

	expected := "INVALID_DIMENSION: height must be positive, got -1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("degenerate geometry")
	err := Wrap(ErrCodeDegenerateGeometry, cause, "union failed")

	if err.Code != ErrCodeDegenerateGeometry {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDegenerateGeometry)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestAt(t *testing.T) {
	cause := errors.New("empty result")
	err := Wrap(ErrCodeDegenerateGeometry, cause, "difference failed").At("back", RoleSubtract)

	want := "DEGENERATE_GEOMETRY: difference failed [back/subtract]: empty result"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("build tower: %w", err)
	face, role, ok := Attribution(wrapped)
	if !ok || face != "back" || role != RoleSubtract {
		t.Errorf("Attribution() = %q, %q, %v; want back, subtract, true", face, role, ok)
	}

	if got := UserMessage(wrapped); got != "difference failed (face back)" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestAttributionNested(t *testing.T) {
	inner := New(ErrCodeEdgeSelectionMismatch, "expected 2 circular edges, got 3").At("left", "")
	outer := Wrap(ErrCodeInternal, inner, "build failed")

	face, role, ok := Attribution(outer)
	if !ok || face != "left" || role != "" {
		t.Errorf("Attribution() = %q, %q, %v; want left, \"\", true", face, role, ok)
	}

	if _, _, ok := Attribution(errors.New("plain")); ok {
		t.Error("Attribution(plain) ok = true, want false")
	}
	if _, _, ok := Attribution(New(ErrCodeInternal, "no face")); ok {
		t.Error("Attribution(no face) ok = true, want false")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidFace, "test"),
			code:     ErrCodeInvalidFace,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidFace, "test"),
			code:     ErrCodeInvalidConfig,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeDegenerateGeometry, New(ErrCodeInvalidFeature, "inner"), "outer"),
			code:     ErrCodeDegenerateGeometry,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("ctx: %w", New(ErrCodeEdgeSelectionMismatch, "inner")),
			code:     ErrCodeEdgeSelectionMismatch,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidConfig, "x")); got != ErrCodeInvalidConfig {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidConfig)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidConfig, "bad value")); got != "bad value" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad value")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}
