package assembly

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
	"github.com/matzehuels/slanttower/pkg/kernel/implicit"
	"github.com/matzehuels/slanttower/pkg/observability"
)

// testResolution keeps sampled volumes fast while staying well inside the
// tolerances below.
const testResolution = 0.2

func newKernel() *implicit.Kernel { return implicit.New(implicit.WithResolution(testResolution)) }

func canonicalPlan(t *testing.T) Plan {
	t.Helper()
	p, err := NewPlan(
		feature.NewFaceBuilder(frame.Front, feature.DefaultText(feature.Raised)),
		feature.NewFaceBuilder(frame.Back, feature.DefaultHole(feature.TreatFillet)),
		feature.NewFaceBuilder(frame.Left,
			feature.DefaultHole(feature.TreatChamfer),
			feature.DefaultBumpGrid(feature.Position{V: 30}, feature.Add)),
		feature.NewFaceBuilder(frame.Right,
			feature.DefaultText(feature.Engraved),
			feature.DefaultGridCutout(feature.Position{V: 15})),
		feature.NewFaceBuilder(frame.Top, feature.DefaultGridCutout(feature.Position{})),
	)
	require.NoError(t, err)
	return p
}

func subtractiveOnlyPlan(t *testing.T) Plan {
	t.Helper()
	p, err := NewPlan(
		feature.NewFaceBuilder(frame.Back, feature.DefaultHole(feature.TreatFillet)),
		feature.NewFaceBuilder(frame.Top, feature.DefaultGridCutout(feature.Position{})),
	)
	require.NoError(t, err)
	return p
}

func build(t *testing.T, k kernel.Kernel, p Plan, opts ...Option) *Part {
	t.Helper()
	part, err := New(k, p, opts...).Build(context.Background(), dims.Default())
	require.NoError(t, err)
	return part
}

func TestEmptyPlanIsBaseBox(t *testing.T) {
	part := build(t, newKernel(), Plan{})
	assert.InDelta(t, 46875.0, part.Volume, 1e-9)
	want := geom.Box{Min: geom.V3(-12.5, -12.5, 0), Max: geom.V3(12.5, 12.5, 75)}
	assert.Equal(t, want, part.Envelope)
	assert.Equal(t, want, part.Bounds)
	assert.NotEmpty(t, part.ID)
	require.Len(t, part.Faces, 5)
	for _, f := range part.Faces {
		assert.Zero(t, f.Add+f.Subtract)
	}
}

func TestEnvelopeIndependentOfFeatures(t *testing.T) {
	k := newKernel()
	plans := map[string]Plan{
		"empty":       {},
		"subtractive": subtractiveOnlyPlan(t),
		"canonical":   canonicalPlan(t),
	}
	for name, p := range plans {
		t.Run(name, func(t *testing.T) {
			part := build(t, k, p)
			env := part.Envelope.Size()
			assert.Equal(t, 75.0, env.Z)
			assert.Equal(t, 25.0, env.X)
			assert.Equal(t, 25.0, env.Y)
			// Reliefs stand out of the side faces only, never above or
			// below the tower.
			assert.InDelta(t, 75.0, part.Bounds.Size().Z, 1e-9)
			assert.InDelta(t, 0, part.Bounds.Min.Z, 1e-9)
		})
	}
}

func TestCanonicalVolumeScenario(t *testing.T) {
	k := newKernel()
	base := dims.Default().BaseVolume()
	require.Equal(t, 46875.0, base)

	subOnly := build(t, k, subtractiveOnlyPlan(t))
	assert.Less(t, subOnly.Volume, base)

	withText, err := NewPlan(
		feature.NewFaceBuilder(frame.Front, feature.DefaultText(feature.Raised)),
		feature.NewFaceBuilder(frame.Back, feature.DefaultHole(feature.TreatFillet)),
		feature.NewFaceBuilder(frame.Top, feature.DefaultGridCutout(feature.Position{})),
	)
	require.NoError(t, err)
	texted := build(t, k, withText)
	assert.Greater(t, texted.Volume, subOnly.Volume)

	full := build(t, k, canonicalPlan(t))
	assert.Greater(t, full.Volume, 0.0)
	assert.NotEqual(t, base, full.Volume)

	// Top grid: nine 2 x 2 x 1 pockets.
	top, err := NewPlan(feature.NewFaceBuilder(frame.Top, feature.DefaultGridCutout(feature.Position{})))
	require.NoError(t, err)
	assert.InDelta(t, base-36, build(t, k, top).Volume, 1e-6)
}

func TestIdempotentBuild(t *testing.T) {
	k := newKernel()
	p := canonicalPlan(t)
	a := build(t, k, p)
	b := build(t, k, p)
	assert.Equal(t, a.Volume, b.Volume)
	assert.Equal(t, a.Bounds, b.Bounds)
	assert.Equal(t, a.Faces, b.Faces)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestOrderInvarianceWithinBundle(t *testing.T) {
	k := newKernel()
	features := []feature.Feature{
		feature.DefaultText(feature.Engraved),
		feature.DefaultGridCutout(feature.Position{V: 15}),
		&feature.GrooveSpec{Height: 40, Width: 1, Depth: 1},
	}
	reversed := []feature.Feature{features[2], features[1], features[0]}

	p1, err := NewPlan(feature.NewFaceBuilder(frame.Right, features...))
	require.NoError(t, err)
	p2, err := NewPlan(feature.NewFaceBuilder(frame.Right, reversed...))
	require.NoError(t, err)

	assert.InDelta(t, build(t, k, p1).Volume, build(t, k, p2).Volume, 1e-6)
}

// solidFeature contributes a box-shaped pad or pocket authored in face
// coordinates: a w x h rectangle centered at c, spanning [w0, w1] along N.
type solidFeature struct {
	role   feature.Role
	c      geom.Vec2
	w, h   float64
	w0, w1 float64
}

func (f solidFeature) Kind() string    { return "pad" }
func (f solidFeature) Validate() error { return nil }

func (f solidFeature) Marks(feature.Context) ([]feature.Mark, error) { return nil, nil }

func (f solidFeature) Build(ctx feature.Context) (feature.Bundle, error) {
	sk, err := ctx.Kernel.Rect(f.w, f.h, kernel.Centered)
	if err != nil {
		return feature.Bundle{}, err
	}
	s, err := ctx.Kernel.Extrude(sk, f.w1-f.w0)
	if err != nil {
		return feature.Bundle{}, err
	}
	var b feature.Bundle
	b.Put(f.role, ctx.Kernel.Place(s, ctx.Frame.Moved(geom.V3(f.c.X, f.c.Y, f.w0))))
	return b, nil
}

func TestUnionBeforeSubtraction(t *testing.T) {
	k := newKernel()
	pad := solidFeature{role: feature.Add, c: geom.V2(0, 30), w: 4, h: 4, w0: 0, w1: 2}
	// The pocket runs from the pad's outer surface 2 mm into the tower.
	pocket := solidFeature{role: feature.Subtract, c: geom.V2(0, 30), w: 2, h: 2, w0: -2, w1: 2}

	p, err := NewPlan(feature.NewFaceBuilder(frame.Front, pocket, pad))
	require.NoError(t, err)
	part := build(t, k, p)

	// Pad 4x4x2 adds 32; the pocket removes 2x2x2 from the pad and 2x2x2
	// from the tower.
	assert.InDelta(t, 46875.0+32-8-8, part.Volume, 1e-6)

	// The overlap is gone even though the pocket was declared first.
	assert.False(t, part.Solid.Contains(geom.V3(0, -13.5, 30)))
	assert.True(t, part.Solid.Contains(geom.V3(1.5, -13.5, 30)))
	assert.False(t, part.Solid.Contains(geom.V3(0, -11.5, 30)))
}

func TestSubtractionCutsOtherFacesAdditions(t *testing.T) {
	k := newKernel()
	// A pad near the top of the front face, and a pocket cut from the top
	// face that reaches over the front edge into it.
	pad := solidFeature{role: feature.Add, c: geom.V2(0, 74), w: 4, h: 2, w0: 0, w1: 2}
	pocket := solidFeature{role: feature.Subtract, c: geom.V2(0, -12.5), w: 2, h: 6, w0: -1, w1: 0}

	p, err := NewPlan(
		feature.NewFaceBuilder(frame.Front, pad),
		feature.NewFaceBuilder(frame.Top, pocket),
	)
	require.NoError(t, err)
	part := build(t, k, p)

	// Pocket in the pad (x 2, y 2, z 1) and in the tower (x 2, y 3, z 1).
	assert.InDelta(t, 46875.0+16-4-6, part.Volume, 1e-6)
	assert.False(t, part.Solid.Contains(geom.V3(0, -13.5, 74.5)))
}

func TestMissingFaceEqualsEmptyBundle(t *testing.T) {
	k := newKernel()
	without, err := NewPlan(feature.NewFaceBuilder(frame.Back, feature.DefaultHole(feature.TreatFillet)))
	require.NoError(t, err)
	with, err := NewPlan(
		feature.NewFaceBuilder(frame.Back, feature.DefaultHole(feature.TreatFillet)),
		feature.NewFaceBuilder(frame.Top),
	)
	require.NoError(t, err)

	assert.Equal(t, build(t, k, without).Volume, build(t, k, with).Volume)
}

func TestBumpIntentPinned(t *testing.T) {
	k := newKernel()
	plan := func(intent feature.Role) Plan {
		p, err := NewPlan(feature.NewFaceBuilder(frame.Left, feature.DefaultBumpGrid(feature.Position{V: 30}, intent)))
		require.NoError(t, err)
		return p
	}
	add := build(t, k, plan(feature.Add))
	sub := build(t, k, plan(feature.Subtract))

	half := 9 * 2.0 / 3.0 * math.Pi
	assert.InDelta(t, 46875+half, add.Volume, 1.0)
	assert.InDelta(t, 46875-half, sub.Volume, 1.0)
	assert.Less(t, add.Bounds.Min.X, -12.5)
	assert.Equal(t, -12.5, sub.Bounds.Min.X)
}

func TestParallelBuildersMatchSequential(t *testing.T) {
	k := newKernel()
	p := canonicalPlan(t)
	seq := build(t, k, p)
	par := build(t, k, p, WithParallelBuilders(true))
	assert.Equal(t, seq.Volume, par.Volume)
	assert.Equal(t, seq.Faces, par.Faces)
}

// failingKernel fails the first boolean of the configured kind.
type failingKernel struct {
	*implicit.Kernel
	failUnion, failDifference bool
}

func (k failingKernel) Union(solids ...kernel.Solid) (kernel.Solid, error) {
	if k.failUnion && len(solids) > 1 {
		return nil, errors.New("boolean engine gave up")
	}
	return k.Kernel.Union(solids...)
}

func (k failingKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	if k.failDifference {
		return nil, kernel.ErrDegenerate
	}
	return k.Kernel.Difference(a, b)
}

func TestBooleanFailureAttribution(t *testing.T) {
	tests := []struct {
		name     string
		k        failingKernel
		wantFace string
		wantRole errs.Role
	}{
		{"union", failingKernel{Kernel: newKernel(), failUnion: true}, "front", errs.RoleAdd},
		{"difference", failingKernel{Kernel: newKernel(), failDifference: true}, "back", errs.RoleSubtract},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(
				feature.NewFaceBuilder(frame.Front, solidFeature{role: feature.Add, c: geom.V2(0, 30), w: 4, h: 4, w0: 0, w1: 1}),
				feature.NewFaceBuilder(frame.Back, solidFeature{role: feature.Subtract, c: geom.V2(0, 30), w: 4, h: 4, w0: -1, w1: 0}),
			)
			require.NoError(t, err)
			part, err := New(tt.k, p).Build(context.Background(), dims.Default())
			assert.Nil(t, part)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeDegenerateGeometry), "got %v", err)
			face, role, ok := errs.Attribution(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantFace, face)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestEverythingCutAway(t *testing.T) {
	k := newKernel()
	all := solidFeature{role: feature.Subtract, c: geom.V2(0, 37.5), w: 30, h: 80, w0: -30, w1: 1}
	p, err := NewPlan(feature.NewFaceBuilder(frame.Front, all))
	require.NoError(t, err)
	_, err = New(k, p).Build(context.Background(), dims.Default())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeDegenerateGeometry))
	face, role, ok := errs.Attribution(err)
	require.True(t, ok)
	assert.Equal(t, "front", face)
	assert.Equal(t, errs.RoleSubtract, role)
}

func TestEmptiedPartBlamesFirstEmptyingFace(t *testing.T) {
	k := newKernel()
	all := solidFeature{role: feature.Subtract, c: geom.V2(0, 37.5), w: 30, h: 80, w0: -30, w1: 1}
	p, err := NewPlan(
		feature.NewFaceBuilder(frame.Front, all),
		feature.NewFaceBuilder(frame.Top, feature.DefaultGridCutout(feature.Position{})),
	)
	require.NoError(t, err)
	_, err = New(k, p).Build(context.Background(), dims.Default())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeDegenerateGeometry))
	face, role, ok := errs.Attribution(err)
	require.True(t, ok)
	assert.Equal(t, "front", face, "the top cut runs later but the front one emptied the part")
	assert.Equal(t, errs.RoleSubtract, role)
}

func TestBuilderErrorsKeepCode(t *testing.T) {
	p, err := NewPlan(feature.NewFaceBuilder(frame.Back, &feature.HoleSpec{Radius: 20, Center: feature.Position{V: 20, FromTop: true}}))
	require.NoError(t, err)
	_, err = New(newKernel(), p).Build(context.Background(), dims.Default())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFeature), "got %v", err)
	face, _, ok := errs.Attribution(err)
	require.True(t, ok)
	assert.Equal(t, "back", face)
}

func TestInvalidInputs(t *testing.T) {
	_, err := New(newKernel(), Plan{}).Build(context.Background(), dims.Dimensions{})
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidDimension))

	_, err = NewPlan(feature.NewFaceBuilder(frame.Top), feature.NewFaceBuilder(frame.Top))
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))

	bad := Plan{frame.Front: feature.NewFaceBuilder(frame.Back)}
	_, err = New(newKernel(), bad).Build(context.Background(), dims.Default())
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newKernel(), canonicalPlan(t)).Build(ctx, dims.Default())
	assert.ErrorIs(t, err, context.Canceled)
}

type countingHooks struct {
	observability.NoopBuildHooks
	mu       sync.Mutex
	bundles  []string
	booleans []string
	done     int
}

func (h *countingHooks) OnBundle(_ context.Context, face string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bundles = append(h.bundles, face)
}

func (h *countingHooks) OnBoolean(_ context.Context, face, role string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.booleans = append(h.booleans, face+"/"+role)
}

func (h *countingHooks) OnBuildComplete(context.Context, string, float64, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done++
}

func TestBuildEmitsHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetBuildHooks(h)
	defer observability.Reset()

	build(t, newKernel(), canonicalPlan(t))

	assert.Equal(t, []string{"front", "back", "left", "right", "top"}, h.bundles)
	assert.Equal(t, []string{
		"front/add", "left/add",
		"back/subtract", "left/subtract", "right/subtract", "top/subtract",
	}, h.booleans)
	assert.Equal(t, 1, h.done)
}
