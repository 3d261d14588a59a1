package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlacementRoundTrip(t *testing.T) {
	p := Placement{Origin: V3(0, -12.5, 0), U: XAxis, V: ZAxis, N: YAxis.Neg()}
	assert.True(t, p.RightHanded())

	l := V3(3, 40, -1)
	w := p.ToWorld(l)
	assert.True(t, w.Near(V3(3, -11.5, 40), 1e-12))
	assert.True(t, p.ToLocal(w).Near(l, 1e-12))

	assert.True(t, p.Offset(2).Origin.Near(V3(0, -14.5, 0), 1e-12))
	assert.True(t, p.Moved(V3(1, 2, 0)).Origin.Near(p.At(1, 2), 1e-12))
}

func TestHalfTurnZ(t *testing.T) {
	p := Placement{U: XAxis, V: ZAxis, N: YAxis.Neg()}.HalfTurnZ()
	assert.Equal(t, XAxis.Neg(), p.U)
	assert.Equal(t, ZAxis, p.V)
	assert.Equal(t, YAxis, p.N)
	assert.True(t, p.RightHanded())
}

func TestCompose(t *testing.T) {
	outer := Placement{Origin: V3(10, 0, 0), U: YAxis, V: ZAxis, N: XAxis}
	inner := Identity.Moved(V3(1, 2, 3))
	c := outer.Compose(inner)
	assert.True(t, c.Origin.Near(V3(13, 1, 2), 1e-12))
	assert.Equal(t, outer.U, c.U)
}

func TestBox(t *testing.T) {
	b := Box{Min: V3(-1, -1, 0), Max: V3(1, 1, 3)}
	assert.InDelta(t, 12.0, b.Volume(), 1e-12)
	assert.True(t, b.Contains(V3(1, 0, 3)))
	assert.False(t, b.Contains(V3(0, 0, 3.1)))

	assert.Equal(t, b, EmptyBox().Union(b))
	assert.Zero(t, EmptyBox().Volume())

	o := Box{Min: V3(0, 0, 1), Max: V3(2, 2, 2)}
	assert.True(t, b.Overlaps(o))
	assert.InDelta(t, 1.0, b.Intersect(o).Volume(), 1e-12)
	assert.False(t, b.Overlaps(Box{Min: V3(5, 5, 5), Max: V3(6, 6, 6)}))

	assert.Equal(t, Box{Min: V3(-2, -2, -1), Max: V3(2, 2, 4)}, b.Expand(1))
}

func TestBoxToWorld(t *testing.T) {
	p := Placement{Origin: V3(0, 0, 5), U: YAxis, V: XAxis, N: ZAxis.Neg()}
	got := p.BoxToWorld(Box{Min: V3(0, 0, 0), Max: V3(1, 2, 3)})
	assert.True(t, got.Min.Near(V3(0, 0, 2), 1e-12))
	assert.True(t, got.Max.Near(V3(2, 1, 5), 1e-12))
}

func TestRect(t *testing.T) {
	r := Rect{Min: V2(-2, 0), Max: V2(2, 4)}
	assert.Equal(t, V2(0, 2), r.Center())
	assert.Equal(t, V2(4, 4), r.Size())
	assert.True(t, r.Contains(V2(2, 4)))
	assert.False(t, Rect{Min: V2(1, 1), Max: V2(1, 2)}.Contains(V2(5, 5)))
	assert.True(t, Rect{Min: V2(1, 1), Max: V2(1, 2)}.Empty())
	assert.Equal(t, Rect{Min: V2(-1, 1), Max: V2(3, 5)}, r.Translate(V2(1, 1)))
}
