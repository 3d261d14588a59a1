package sink

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/matzehuels/slanttower/pkg/assembly"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
)

// DefaultCellSize is the default voxel edge length in millimetres.
const DefaultCellSize = 0.5

// maxVoxels bounds the sampling grid so a tiny cell on a large part fails
// fast instead of exhausting memory.
const maxVoxels = 64 << 20

// STLOption configures STL rendering via [RenderSTL].
type STLOption func(*stlRenderer)

type stlRenderer struct {
	cell  float64
	ascii bool
	name  string
}

// WithCellSize sets the voxel edge length.
func WithCellSize(c float64) STLOption { return func(r *stlRenderer) { r.cell = c } }

// WithASCII writes the text variant of STL instead of binary.
func WithASCII() STLOption { return func(r *stlRenderer) { r.ascii = true } }

// WithSolidName sets the solid name written to the header.
func WithSolidName(name string) STLOption { return func(r *stlRenderer) { r.name = name } }

// Triangle is one mesh facet. Vertices wind counter-clockwise seen from
// outside, so Normal follows the right-hand rule.
type Triangle struct {
	Normal geom.Vec3
	V      [3]geom.Vec3
}

// Mesh is a closed triangle mesh.
type Mesh struct {
	Triangles []Triangle
}

// RenderSTL meshes the part and encodes it as STL.
func RenderSTL(part *assembly.Part, opts ...STLOption) ([]byte, error) {
	r := stlRenderer{cell: DefaultCellSize, name: "slanttower"}
	for _, opt := range opts {
		opt(&r)
	}
	if part == nil || part.Solid == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no part to export")
	}
	m, err := Voxelize(part.Solid, r.cell)
	if err != nil {
		return nil, err
	}
	if r.ascii {
		return encodeASCII(m, r.name), nil
	}
	return encodeBinary(m, r.name), nil
}

// quads lists the unit-cube corners of each voxel face, wound
// counter-clockwise seen from outside, with the neighbour offset and normal.
var quads = [6]struct {
	dx, dy, dz int
	normal     geom.Vec3
	corners    [4][3]int
}{
	{-1, 0, 0, geom.V3(-1, 0, 0), [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{1, 0, 0, geom.V3(1, 0, 0), [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{0, -1, 0, geom.V3(0, -1, 0), [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{0, 1, 0, geom.V3(0, 1, 0), [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{0, 0, -1, geom.V3(0, 0, -1), [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
	{0, 0, 1, geom.V3(0, 0, 1), [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
}

// Voxelize samples s at the centres of a grid of cells no larger than cell
// over its bounds and returns the boundary of the occupied cells.
func Voxelize(s kernel.Solid, cell float64) (Mesh, error) {
	if !(cell > 0) {
		return Mesh{}, errs.New(errs.ErrCodeInvalidInput, "cell size must be positive, got %g", cell)
	}
	b := s.Bounds()
	if b.Empty() {
		return Mesh{}, errs.New(errs.ErrCodeDegenerateGeometry, "nothing to mesh")
	}
	size := b.Size()
	nx, ny, nz := cells(size.X, cell), cells(size.Y, cell), cells(size.Z, cell)
	if float64(nx)*float64(ny)*float64(nz) > maxVoxels {
		return Mesh{}, errs.New(errs.ErrCodeInvalidInput, "cell size %g needs %dx%dx%d voxels", cell, nx, ny, nz)
	}
	step := geom.V3(size.X/float64(nx), size.Y/float64(ny), size.Z/float64(nz))

	idx := func(i, j, l int) int { return (l*ny+j)*nx + i }
	filled := make([]bool, nx*ny*nz)
	for l := 0; l < nz; l++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				p := geom.V3(
					b.Min.X+(float64(i)+0.5)*step.X,
					b.Min.Y+(float64(j)+0.5)*step.Y,
					b.Min.Z+(float64(l)+0.5)*step.Z,
				)
				filled[idx(i, j, l)] = s.Contains(p)
			}
		}
	}
	occupied := func(i, j, l int) bool {
		if i < 0 || j < 0 || l < 0 || i >= nx || j >= ny || l >= nz {
			return false
		}
		return filled[idx(i, j, l)]
	}
	corner := func(i, j, l int) geom.Vec3 {
		return geom.V3(b.Min.X+float64(i)*step.X, b.Min.Y+float64(j)*step.Y, b.Min.Z+float64(l)*step.Z)
	}

	var m Mesh
	for l := 0; l < nz; l++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if !filled[idx(i, j, l)] {
					continue
				}
				for _, q := range quads {
					if occupied(i+q.dx, j+q.dy, l+q.dz) {
						continue
					}
					var v [4]geom.Vec3
					for c, off := range q.corners {
						v[c] = corner(i+off[0], j+off[1], l+off[2])
					}
					m.Triangles = append(m.Triangles,
						Triangle{Normal: q.normal, V: [3]geom.Vec3{v[0], v[1], v[2]}},
						Triangle{Normal: q.normal, V: [3]geom.Vec3{v[0], v[2], v[3]}},
					)
				}
			}
		}
	}
	if len(m.Triangles) == 0 {
		return Mesh{}, errs.New(errs.ErrCodeDegenerateGeometry, "no voxel of %g mm lies inside the part", cell)
	}
	return m, nil
}

func cells(extent, cell float64) int {
	n := int(math.Ceil(extent/cell - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// Volume returns the enclosed volume by the divergence theorem.
func (m Mesh) Volume() float64 {
	v := 0.0
	for _, t := range m.Triangles {
		v += t.V[0].Dot(t.V[1].Cross(t.V[2]))
	}
	return v / 6
}

func encodeBinary(m Mesh, name string) []byte {
	var buf bytes.Buffer
	buf.Grow(84 + 50*len(m.Triangles))

	var header [80]byte
	copy(header[:], name)
	buf.Write(header[:])
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(m.Triangles)))

	var rec [12]float32
	for _, t := range m.Triangles {
		rec[0], rec[1], rec[2] = float32(t.Normal.X), float32(t.Normal.Y), float32(t.Normal.Z)
		for k, v := range t.V {
			rec[3+3*k], rec[4+3*k], rec[5+3*k] = float32(v.X), float32(v.Y), float32(v.Z)
		}
		_ = binary.Write(&buf, binary.LittleEndian, rec)
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func encodeASCII(m Mesh, name string) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	fmt.Fprintf(w, "solid %s\n", name)
	for _, t := range m.Triangles {
		fmt.Fprintf(w, "  facet normal %g %g %g\n    outer loop\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		for _, v := range t.V {
			fmt.Fprintf(w, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(w, "    endloop\n  endfacet\n")
	}
	fmt.Fprintf(w, "endsolid %s\n", name)
	_ = w.Flush()
	return buf.Bytes()
}
