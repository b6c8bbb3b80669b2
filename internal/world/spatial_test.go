package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid() []Site {
	var out []Site
	id := int64(0)
	for x := 0; x <= 4; x++ {
		for y := 0; y <= 4; y++ {
			out = append(out, Site{ID: id, Pos: Position{X: float64(x), Y: float64(y)}})
			id++
		}
	}
	return out
}

func TestEmptyIndex(t *testing.T) {
	idx := NewSpatialIndex()
	_, ok := idx.Nearest(Position{X: 1, Y: 1})
	assert.False(t, ok)
	assert.Nil(t, idx.NearestN(Position{}, 3))

	idx.Rebuild(grid())
	idx.Rebuild(nil)
	assert.Equal(t, 0, idx.Len())
	_, ok = idx.Nearest(Position{})
	assert.False(t, ok)
}

func TestNearest(t *testing.T) {
	idx := NewSpatialIndex()
	pts := grid()
	idx.Rebuild(pts)
	require.Equal(t, 25, idx.Len())

	got, ok := idx.Nearest(Position{X: 2.1, Y: 2.9})
	require.True(t, ok)
	// (2, 3) is the 14th point in x-major order.
	assert.Equal(t, int64(2*5+3), got.ID)
	assert.InDelta(t, 0.1414, got.Distance, 1e-3)

	assert.Equal(t, grid(), pts, "input must not be reordered")
}

func TestNearestN(t *testing.T) {
	idx := NewSpatialIndex()
	idx.Rebuild(grid())

	got := idx.NearestN(Position{X: 0, Y: 0}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, int64(0), got[0].ID)
	assert.Zero(t, got[0].Distance)
	// (0, 1) and (1, 0) tie at distance 1 and come back in id order.
	assert.Equal(t, []int64{1, 5}, []int64{got[1].ID, got[2].ID})
	assert.InDelta(t, 1.0, got[1].Distance, 1e-9)

	all := idx.NearestN(Position{X: 2, Y: 2}, 100)
	assert.Len(t, all, 25)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Distance, all[i].Distance)
	}
}

func TestRandomPositionInBounds(t *testing.T) {
	vals := []float64{0, 0.75, 0.5, 0.25}
	i := 0
	next := func() float64 { v := vals[i]; i++; return v }

	p := RandomPosition(next)
	assert.Equal(t, Position{X: 0, Y: 7.5}, p)
	p = RandomPosition(next)
	assert.Equal(t, Position{X: 5, Y: 2.5}, p)
}
