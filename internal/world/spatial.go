// Package world provides agent positions on the 10×10 plane and the spatial
// index rebuilt over them every step.
package world

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Extent is the side length of the square agents are placed in.
const Extent = 10.0

// Position is a point in [0, Extent] × [0, Extent].
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RandomPosition places a point uniformly on the plane using the given
// unit-interval source (called twice: x, then y).
func RandomPosition(float func() float64) Position {
	x := float() * Extent
	y := float() * Extent
	return Position{X: x, Y: y}
}

// Site is a located node id.
type Site struct {
	ID  int64
	Pos Position
}

// Compare implements kdtree.Comparable.
func (s Site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Site)
	switch d {
	case 0:
		return s.Pos.X - q.Pos.X
	case 1:
		return s.Pos.Y - q.Pos.Y
	default:
		panic("world: illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (s Site) Dims() int { return 2 }

// Distance implements kdtree.Comparable. It returns the squared distance.
func (s Site) Distance(c kdtree.Comparable) float64 {
	q := c.(Site)
	dx := s.Pos.X - q.Pos.X
	dy := s.Pos.Y - q.Pos.Y
	return dx*dx + dy*dy
}

// sites implements kdtree.Interface.
type sites []Site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Pivot(d kdtree.Dim) int                { return plane{sites: p, Dim: d}.Pivot() }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts sites along one dimension for median selection.
type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.sites[i].Pos.X < p.sites[j].Pos.X
	}
	return p.sites[i].Pos.Y < p.sites[j].Pos.Y
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

// Neighbor is a query hit with its Euclidean distance.
type Neighbor struct {
	ID       int64
	Distance float64
}

// SpatialIndex is a nearest-neighbour index over agent positions. It is a
// snapshot: Rebuild replaces the whole tree.
type SpatialIndex struct {
	tree *kdtree.Tree
	size int
}

// NewSpatialIndex returns an empty index.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{}
}

// Rebuild replaces the index contents. An empty input leaves an empty index.
func (idx *SpatialIndex) Rebuild(points []Site) {
	idx.size = len(points)
	if len(points) == 0 {
		idx.tree = nil
		return
	}
	// kdtree reorders its input in place.
	own := make(sites, len(points))
	copy(own, points)
	idx.tree = kdtree.New(own, false)
}

// Len returns the number of indexed sites.
func (idx *SpatialIndex) Len() int {
	return idx.size
}

// Nearest returns the indexed site closest to p.
func (idx *SpatialIndex) Nearest(p Position) (Neighbor, bool) {
	if idx.tree == nil {
		return Neighbor{}, false
	}
	c, d := idx.tree.Nearest(Site{Pos: p})
	if c == nil {
		return Neighbor{}, false
	}
	return Neighbor{ID: c.(Site).ID, Distance: math.Sqrt(d)}, true
}

// NearestN returns up to n indexed sites closest to p, nearest first.
func (idx *SpatialIndex) NearestN(p Position, n int) []Neighbor {
	if idx.tree == nil || n <= 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(n)
	idx.tree.NearestSet(keep, Site{Pos: p})

	out := make([]Neighbor, 0, n)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		out = append(out, Neighbor{ID: cd.Comparable.(Site).ID, Distance: math.Sqrt(cd.Dist)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}
