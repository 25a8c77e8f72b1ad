package physics

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowOfBoxes places n unit boxes along x, three apart.
func rowOfBoxes(n int) []Aabb {
	aabbs := make([]Aabb, n)
	for i := range aabbs {
		aabbs[i] = NewAabbForExtents(vec(float32(i)*3, 0, 0), vec(0.5, 0.5, 0.5))
	}
	return aabbs
}

func TestBoundingVolumeHierarchy_Build(t *testing.T) {
	tree := BuildBoundingVolumeHierarchy(rowOfBoxes(10))
	assert.Equal(t, 10, tree.Count())
	assert.Equal(t, Aabb{vec(-0.5, -0.5, -0.5), vec(27.5, 0.5, 0.5)}, tree.Bounds())

	var seen []int
	tree.Each(func(i int) { seen = append(seen, i) })
	sort.Ints(seen)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)

	empty := NewBoundingVolumeHierarchy()
	assert.True(t, empty.Bounds().IsEmpty())
	empty.Query(Aabb{vec(-1, -1, -1), vec(1, 1, 1)}, func(int) bool {
		t.Fatal("empty tree visited an item")
		return true
	})
}

func TestBoundingVolumeHierarchy_Query(t *testing.T) {
	tree := BuildBoundingVolumeHierarchy(rowOfBoxes(10))

	var hits []int
	tree.Query(Aabb{vec(2, -1, -1), vec(7, 1, 1)}, func(i int) bool {
		hits = append(hits, i)
		return true
	})
	sort.Ints(hits)
	assert.Equal(t, []int{1, 2}, hits)

	visited := 0
	tree.Query(tree.Bounds(), func(int) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited, "returning false stops the query")
}

func TestBoundingVolumeHierarchy_SegmentQueryIsNearestFirst(t *testing.T) {
	tree := BuildBoundingVolumeHierarchy(rowOfBoxes(10))

	var order []int
	tree.SegmentQuery(vec(-5, 0, 0), vec(40, 0, 0), 1, func(i int) float32 {
		order = append(order, i)
		return 1
	})
	require.Len(t, order, 10)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)

	// Shrinking tExit to the first hit prunes everything behind it.
	order = order[:0]
	tree.SegmentQuery(vec(40, 0, 0), vec(-5, 0, 0), 1, func(i int) float32 {
		order = append(order, i)
		return 0.1
	})
	assert.Equal(t, []int{9}, order)

	order = order[:0]
	tree.SegmentQuery(vec(-5, 0, 0), vec(40, 0, 0), 1, func(i int) float32 {
		order = append(order, i)
		return -1
	})
	assert.Equal(t, []int{0}, order, "a negative result stops the query")

	tree.SegmentQuery(vec(-5, 5, 0), vec(40, 5, 0), 1, func(int) float32 {
		t.Fatal("segment above the boxes hit an item")
		return 1
	})
}

func TestBoundingVolumeHierarchy_DistanceQuery(t *testing.T) {
	tree := BuildBoundingVolumeHierarchy(rowOfBoxes(10))

	var hits []int
	tree.DistanceQuery(vec(6, 2, 0), 2, func(i int) float32 {
		hits = append(hits, i)
		return 2
	})
	assert.Equal(t, []int{2}, hits)

	hits = hits[:0]
	tree.DistanceQuery(vec(6, 0, 0), 3, func(i int) float32 {
		hits = append(hits, i)
		return 3
	})
	sort.Ints(hits)
	assert.Equal(t, []int{1, 2, 3}, hits)

	hits = hits[:0]
	tree.DistanceQuery(vec(6, 0, 0), 3, func(i int) float32 {
		hits = append(hits, i)
		return -1
	})
	assert.Equal(t, []int{2}, hits, "nearest first, then stop")
}
