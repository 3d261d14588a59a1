package sink

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slanttower/pkg/assembly"
	"github.com/matzehuels/slanttower/pkg/config"
	"github.com/matzehuels/slanttower/pkg/dims"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
	"github.com/matzehuels/slanttower/pkg/kernel/implicit"
)

func cube(t *testing.T, k kernel.Kernel, size float64) kernel.Solid {
	t.Helper()
	s, err := k.Box(geom.V3(size, size, size), kernel.Align3{})
	require.NoError(t, err)
	return s
}

// assertClosed checks that every directed edge is matched by its reverse.
func assertClosed(t *testing.T, m Mesh) {
	t.Helper()
	key := func(a, b geom.Vec3) string { return fmt.Sprintf("%.6f,%.6f,%.6f>%.6f,%.6f,%.6f", a.X, a.Y, a.Z, b.X, b.Y, b.Z) }
	edges := map[string]int{}
	for _, tri := range m.Triangles {
		for i := 0; i < 3; i++ {
			a, b := tri.V[i], tri.V[(i+1)%3]
			edges[key(a, b)]++
			edges[key(b, a)]--
		}
	}
	for e, n := range edges {
		if n != 0 {
			t.Fatalf("edge %s is unbalanced (%d)", e, n)
		}
	}
}

func TestVoxelizeCube(t *testing.T) {
	k := implicit.New()
	m, err := Voxelize(cube(t, k, 2), 0.5)
	require.NoError(t, err)

	// 6 faces of 4x4 cells, two triangles each.
	assert.Len(t, m.Triangles, 6*16*2)
	assert.InDelta(t, 8.0, m.Volume(), 1e-9)
	assertClosed(t, m)

	for _, tri := range m.Triangles {
		e1, e2 := tri.V[1].Sub(tri.V[0]), tri.V[2].Sub(tri.V[0])
		assert.True(t, e1.Cross(e2).Unit().Near(tri.Normal, 1e-9), "winding disagrees with normal")
	}
}

func TestVoxelizeRejects(t *testing.T) {
	k := implicit.New()
	_, err := Voxelize(cube(t, k, 1), 0)
	assert.Error(t, err)
	_, err = Voxelize(cube(t, k, 100), 0.001)
	assert.Error(t, err)
}

func canonicalPart(t *testing.T) *assembly.Part {
	t.Helper()
	k := implicit.New(implicit.WithResolution(0.25))
	plan, err := config.Default().Plan()
	require.NoError(t, err)
	part, err := assembly.New(k, plan).Build(context.Background(), dims.Default())
	require.NoError(t, err)
	return part
}

func TestRenderSTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full tower export in short mode")
	}
	part := canonicalPart(t)

	bin, err := RenderSTL(part, WithCellSize(1))
	require.NoError(t, err)
	require.Greater(t, len(bin), 84)
	assert.True(t, bytes.HasPrefix(bin, []byte("slanttower")))
	n := binary.LittleEndian.Uint32(bin[80:84])
	assert.Equal(t, 84+50*int(n), len(bin))

	m, err := Voxelize(part.Solid, 1)
	require.NoError(t, err)
	assertClosed(t, m)
	assert.InEpsilon(t, part.Volume, m.Volume(), 0.03)

	ascii, err := RenderSTL(part, WithCellSize(1), WithASCII(), WithSolidName("tower"))
	require.NoError(t, err)
	text := string(ascii)
	assert.True(t, strings.HasPrefix(text, "solid tower\n"))
	assert.True(t, strings.HasSuffix(text, "endsolid tower\n"))
	assert.Equal(t, int(n), strings.Count(text, "facet normal"))

	_, err = RenderSTL(nil)
	assert.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	part := canonicalPart(t)

	data, err := RenderJSON(part, WithReportName("slant"), WithReportResolution(0.25))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"face": "front"`)

	r, err := ParseReport(data)
	require.NoError(t, err)
	assert.Equal(t, part.ID, r.ID)
	assert.Equal(t, "slant", r.Name)
	assert.Equal(t, part.Volume, r.Volume)
	assert.Equal(t, 46875.0, r.BaseVolume)
	assert.Equal(t, [3]float64{12.5, 12.5, 75}, r.Envelope.Max)
	assert.Equal(t, part.Faces, r.Faces)
	assert.Equal(t, dims.DefaultSpec(), r.Dims)

	_, err = ParseReport([]byte("{"))
	assert.Error(t, err)
}

func TestRenderSVG(t *testing.T) {
	k := implicit.New()
	d := dims.Default()
	plan, err := config.Default().Plan()
	require.NoError(t, err)
	marks, err := plan.Marks(k, d)
	require.NoError(t, err)

	svg := string(RenderSVG(d, marks, WithSVGTitle("slant <3D>")))
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	for _, f := range frame.Order {
		assert.Contains(t, svg, `id="face-`+f.String()+`"`)
	}
	// Holes on the back and left faces.
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, "slant &lt;3D&gt;")
	assert.Contains(t, svg, subtractColor)
	assert.Contains(t, svg, addFill)

	bare := string(RenderSVG(d, nil, WithoutLabels()))
	assert.NotContains(t, bare, "<text")
	assert.Equal(t, 5, strings.Count(bare, `<g id="face-`))
}
