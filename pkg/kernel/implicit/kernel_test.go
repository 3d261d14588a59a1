package implicit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

func TestBoxAlignment(t *testing.T) {
	k := New()
	tests := []struct {
		name  string
		align kernel.Align3
		want  geom.Box
	}{
		{"min", kernel.Align3{}, geom.Box{Min: geom.V3(0, 0, 0), Max: geom.V3(2, 4, 6)}},
		{"center", kernel.Align3{X: kernel.AlignCenter, Y: kernel.AlignCenter, Z: kernel.AlignCenter}, geom.Box{Min: geom.V3(-1, -2, -3), Max: geom.V3(1, 2, 3)}},
		{"tower base", kernel.Align3{X: kernel.AlignCenter, Y: kernel.AlignCenter, Z: kernel.AlignMin}, geom.Box{Min: geom.V3(-1, -2, 0), Max: geom.V3(1, 2, 6)}},
		{"max", kernel.Align3{X: kernel.AlignMax, Y: kernel.AlignMax, Z: kernel.AlignMax}, geom.Box{Min: geom.V3(-2, -4, -6), Max: geom.V3(0, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := k.Box(geom.V3(2, 4, 6), tt.align)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Bounds())
			assert.InDelta(t, 48.0, k.Volume(b), 1e-9)
		})
	}
}

func TestPrimitivesRejectDegenerateSizes(t *testing.T) {
	k := New()
	_, err := k.Box(geom.V3(1, 0, 1), kernel.Align3{})
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Cylinder(-1, 2)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Sphere(0)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Hole(1, 0)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Rect(0, 1, kernel.Centered)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)

	sq, err := k.Rect(1, 1, kernel.Centered)
	require.NoError(t, err)
	_, err = k.Extrude(sq, 0)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)

	_, err = k.Union()
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Difference(nil, nil)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
}

func TestExtrudeSignedDepth(t *testing.T) {
	k := New()
	sq, err := k.Rect(2, 3, kernel.Centered)
	require.NoError(t, err)

	up, err := k.Extrude(sq, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, up.Bounds().Min.Z)
	assert.Equal(t, 1.5, up.Bounds().Max.Z)

	down, err := k.Extrude(sq, -1.5)
	require.NoError(t, err)
	assert.Equal(t, -1.5, down.Bounds().Min.Z)
	assert.Equal(t, 0.0, down.Bounds().Max.Z)

	assert.InDelta(t, 9.0, k.Volume(up), 1e-9)
	assert.InDelta(t, k.Volume(up), k.Volume(down), 1e-9)
}

func TestUnionAndDifferenceVolumes(t *testing.T) {
	k := New(WithResolution(0.25))
	a, err := k.Box(geom.V3(4, 4, 4), kernel.Align3{})
	require.NoError(t, err)
	b0, err := k.Box(geom.V3(4, 4, 4), kernel.Align3{})
	require.NoError(t, err)
	b := k.Place(b0, geom.Identity.Moved(geom.V3(2, 0, 0)))

	u, err := k.Union(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 96.0, k.Volume(u), 1e-6)
	assert.Equal(t, geom.Box{Min: geom.V3(0, 0, 0), Max: geom.V3(6, 4, 4)}, u.Bounds())

	d, err := k.Difference(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, k.Volume(d), 1e-6)
	assert.True(t, d.Contains(geom.V3(1, 1, 1)))
	assert.False(t, d.Contains(geom.V3(3, 1, 1)))

	// Union is commutative in volume.
	u2, err := k.Union(b, a)
	require.NoError(t, err)
	assert.InDelta(t, k.Volume(u), k.Volume(u2), 1e-9)
}

func TestUnionOfOneReturnsOperand(t *testing.T) {
	k := New()
	s, err := k.Sphere(1)
	require.NoError(t, err)
	u, err := k.Union(s)
	require.NoError(t, err)
	assert.Same(t, s, u)
}

func TestPlaceComposes(t *testing.T) {
	k := New()
	c, err := k.Cylinder(1, 2)
	require.NoError(t, err)
	at := geom.Placement{Origin: geom.V3(5, 0, 0), U: geom.YAxis, V: geom.ZAxis, N: geom.XAxis}
	p := k.Place(k.Place(c, at), geom.Identity.Moved(geom.V3(0, 0, 10)))

	assert.True(t, p.Contains(geom.V3(5.9, 0, 10)))
	assert.False(t, p.Contains(geom.V3(5, 0, 11.5)))
	assert.InDelta(t, 2*math.Pi, k.Volume(p), 1e-9)

	edges := kernel.FilterEdges(p.Edges(), kernel.EdgeCircle)
	require.Len(t, edges, 2)
	assert.True(t, edges[0].Center.Near(geom.V3(6, 0, 10), 1e-9))
	assert.True(t, edges[0].Axis.Near(geom.V3(-1, 0, 0), 1e-9))
}

func TestGridLocations(t *testing.T) {
	k := New()
	got := k.GridLocations(4, 2, 3, 2)
	want := []geom.Vec2{
		{X: -4, Y: -1}, {X: 0, Y: -1}, {X: 4, Y: -1},
		{X: -4, Y: 1}, {X: 0, Y: 1}, {X: 4, Y: 1},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, k.GridLocations(1, 1, 0, 3))
}

func TestHoleEdges(t *testing.T) {
	k := New()
	h, err := k.Hole(8, 2.5)
	require.NoError(t, err)
	edges := kernel.FilterEdges(h.Edges(), kernel.EdgeCircle)
	require.Len(t, edges, 2)

	mouth := kernel.OnPlane(edges, geom.V3(0, 0, 0), geom.ZAxis, 1e-9)
	require.Len(t, mouth, 1)
	assert.Equal(t, kernel.SideOpening, mouth[0].Side)
	assert.Equal(t, 8.0, mouth[0].Radius)

	floor := kernel.OnPlane(edges, geom.V3(0, 0, -2.5), geom.ZAxis, 1e-9)
	require.Len(t, floor, 1)
	assert.Equal(t, kernel.SideMaterial, floor[0].Side)
}

func TestFilletHole(t *testing.T) {
	k := New()
	h, err := k.Hole(8, 2.5)
	require.NoError(t, err)
	circles := kernel.FilterEdges(h.Edges(), kernel.EdgeCircle)
	require.Len(t, kernel.SharpEdges(circles), 2)

	f, err := k.Fillet(h, circles, 2)
	require.NoError(t, err)

	after := kernel.FilterEdges(f.Edges(), kernel.EdgeCircle)
	assert.NotEmpty(t, after)
	assert.Empty(t, kernel.SharpEdges(after))

	// The mouth fillet rounds the stock's rim, so the cutter widens there.
	assert.True(t, f.Contains(geom.V3(8.2, 0, -0.05)))
	assert.False(t, h.Contains(geom.V3(8.2, 0, -0.05)))
	// The floor fillet leaves material in the cutter's bottom corner.
	assert.False(t, f.Contains(geom.V3(7.95, 0, -2.45)))
	assert.True(t, h.Contains(geom.V3(7.95, 0, -2.45)))
	assert.True(t, f.Bounds().Max.X > 9.9)

	exact := k.Volume(f)
	sampled := k.sample(f.Bounds(), f.Contains)
	assert.InEpsilon(t, sampled, exact, 0.01)

	base := math.Pi * 64 * 2.5
	assert.Greater(t, exact, base)
}

func TestChamferMouth(t *testing.T) {
	k := New()
	h, err := k.Hole(8, 2.5)
	require.NoError(t, err)
	mouth := kernel.OnPlane(h.Edges(), geom.V3(0, 0, 0), geom.ZAxis, 1e-9)
	require.Len(t, mouth, 1)

	c, err := k.Chamfer(h, mouth, 2.5)
	require.NoError(t, err)

	// A full-depth chamfer turns the cutter into a cone frustum of radii
	// 10.5 and 8 on top of nothing else.
	r1, r2, hgt := 10.5, 8.0, 2.5
	frustum := math.Pi * hgt / 3 * (r1*r1 + r1*r2 + r2*r2)
	assert.InDelta(t, frustum, k.Volume(c), 1e-6)

	sharp := kernel.SharpEdges(kernel.FilterEdges(c.Edges(), kernel.EdgeCircle))
	assert.NotEmpty(t, sharp)
}

func TestTreatmentErrors(t *testing.T) {
	k := New()
	h, err := k.Hole(8, 2.5)
	require.NoError(t, err)
	b, err := k.Box(geom.V3(1, 1, 1), kernel.Align3{})
	require.NoError(t, err)
	edges := h.Edges()

	tests := []struct {
		name  string
		run   func() error
		errIs error
	}{
		{"line edge", func() error {
			_, err := k.Fillet(b, b.Edges()[:1], 0.1)
			return err
		}, kernel.ErrUnsupportedEdge},
		{"foreign edge", func() error {
			e := edges[0]
			e.Radius = 3
			_, err := k.Fillet(h, []kernel.Edge{e}, 1)
			return err
		}, kernel.ErrEdgeNotFound},
		{"too large", func() error {
			_, err := k.Chamfer(h, edges[:1], 3)
			return err
		}, kernel.ErrDegenerate},
		{"zero size", func() error {
			_, err := k.Fillet(h, edges, 0)
			return err
		}, kernel.ErrDegenerate},
		{"no edges", func() error {
			_, err := k.Fillet(h, nil, 1)
			return err
		}, kernel.ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.errIs) {
				t.Errorf("got %v, want %v", err, tt.errIs)
			}
		})
	}
}

func TestTextSketch(t *testing.T) {
	k := New()
	s, err := k.Text("Slant", 10, kernel.Align2{U: kernel.AlignCenter, V: kernel.AlignMin})
	require.NoError(t, err)

	b := s.Bounds()
	assert.InDelta(t, 0, b.Min.Y, 1e-9)
	assert.InDelta(t, 0, b.Center().X, 1e-9)
	assert.Greater(t, b.Size().X, 15.0)
	assert.Less(t, b.Size().Y, 10.0)

	solid, err := k.Extrude(s, 2)
	require.NoError(t, err)
	v := k.Volume(solid)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, b.Size().X*b.Size().Y*2)

	_, err = k.Text("", 10, kernel.Centered)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	_, err = k.Text("3D", 0, kernel.Centered)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
}

func TestVolumeDeterministic(t *testing.T) {
	build := func() float64 {
		k := New()
		base, err := k.Box(geom.V3(10, 10, 10), kernel.Align3{X: kernel.AlignCenter, Y: kernel.AlignCenter})
		require.NoError(t, err)
		txt, err := k.Text("3D", 5, kernel.Centered)
		require.NoError(t, err)
		relief, err := k.Extrude(txt, 1)
		require.NoError(t, err)
		top := k.Place(relief, geom.Identity.Moved(geom.V3(0, 0, 10)))
		u, err := k.Union(base, top)
		require.NoError(t, err)
		return k.Volume(u)
	}
	assert.Equal(t, build(), build())
}
