package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BoundingVolumeHierarchy is a static binary tree of boxes. Items are
// inserted one by one, descending into the child whose area grows least.
type BoundingVolumeHierarchy struct {
	root  *Node
	count int
}

type Node struct {
	aabb  Aabb
	index int

	Children
}

type Children struct {
	a, b *Node
}

func NewBoundingVolumeHierarchy() *BoundingVolumeHierarchy {
	return &BoundingVolumeHierarchy{}
}

// BuildBoundingVolumeHierarchy indexes aabbs by their position in the slice.
func BuildBoundingVolumeHierarchy(aabbs []Aabb) *BoundingVolumeHierarchy {
	tree := NewBoundingVolumeHierarchy()
	for i, aabb := range aabbs {
		tree.Insert(i, aabb)
	}
	return tree
}

func (tree *BoundingVolumeHierarchy) Count() int {
	return tree.count
}

// Bounds is the box around everything in the tree.
func (tree *BoundingVolumeHierarchy) Bounds() Aabb {
	if tree.root == nil {
		return EmptyAabb()
	}
	return tree.root.aabb
}

func (tree *BoundingVolumeHierarchy) Insert(index int, aabb Aabb) {
	leaf := &Node{aabb: aabb, index: index}
	tree.root = tree.SubtreeInsert(tree.root, leaf)
	tree.count++
}

func (tree *BoundingVolumeHierarchy) SubtreeInsert(subtree, leaf *Node) *Node {
	if subtree == nil {
		return leaf
	}
	if subtree.IsLeaf() {
		return NewNode(leaf, subtree)
	}

	costA := subtree.b.aabb.SurfaceArea() + subtree.a.aabb.MergedArea(leaf.aabb)
	costB := subtree.a.aabb.SurfaceArea() + subtree.b.aabb.MergedArea(leaf.aabb)

	if costA == costB {
		costA = subtree.a.aabb.Proximity(leaf.aabb)
		costB = subtree.b.aabb.Proximity(leaf.aabb)
	}

	if costB < costA {
		subtree.b = tree.SubtreeInsert(subtree.b, leaf)
	} else {
		subtree.a = tree.SubtreeInsert(subtree.a, leaf)
	}

	subtree.aabb = subtree.aabb.Union(leaf.aabb)
	return subtree
}

func NewNode(a, b *Node) *Node {
	return &Node{aabb: a.aabb.Union(b.aabb), index: -1, Children: Children{a: a, b: b}}
}

func (node *Node) IsLeaf() bool {
	return node.a == nil
}

func (node *Node) Index() int {
	return node.index
}

func (node *Node) Aabb() Aabb {
	return node.aabb
}

// Query calls f for every item overlapping aabb until f returns false.
func (tree *BoundingVolumeHierarchy) Query(aabb Aabb, f func(index int) bool) {
	if tree.root != nil {
		tree.root.query(aabb, f)
	}
}

func (node *Node) query(aabb Aabb, f func(index int) bool) bool {
	if !node.aabb.Overlaps(aabb) {
		return true
	}
	if node.IsLeaf() {
		return f(node.index)
	}
	return node.a.query(aabb, f) && node.b.query(aabb, f)
}

// SegmentQuery visits the items whose box the segment a->b enters before
// tExit, nearest subtree first. f returns the new tExit; a negative value
// stops the query. The final tExit is returned.
func (tree *BoundingVolumeHierarchy) SegmentQuery(a, b mgl32.Vec3, tExit float32, f func(index int) float32) float32 {
	if tree.root == nil || tree.root.aabb.SegmentQuery(a, b) > tExit {
		return tExit
	}
	return tree.root.segmentQuery(a, b, tExit, f)
}

func (node *Node) segmentQuery(a, b mgl32.Vec3, tExit float32, f func(index int) float32) float32 {
	if node.IsLeaf() {
		return f(node.index)
	}

	tA := node.a.aabb.SegmentQuery(a, b)
	tB := node.b.aabb.SegmentQuery(a, b)

	first, second := node.a, node.b
	if tB < tA {
		first, second = node.b, node.a
		tA, tB = tB, tA
	}
	if tA <= tExit {
		tExit = first.segmentQuery(a, b, tExit, f)
		if tExit < 0 {
			return tExit
		}
	}
	if tB <= tExit {
		tExit = second.segmentQuery(a, b, tExit, f)
	}
	return tExit
}

// DistanceQuery visits the items whose box is within maxDistance of point.
// f returns the new maxDistance; a negative value stops the query.
func (tree *BoundingVolumeHierarchy) DistanceQuery(point mgl32.Vec3, maxDistance float32, f func(index int) float32) float32 {
	if tree.root == nil || tree.root.aabb.DistanceToPoint(point) > maxDistance {
		return maxDistance
	}
	return tree.root.distanceQuery(point, maxDistance, f)
}

func (node *Node) distanceQuery(point mgl32.Vec3, maxDistance float32, f func(index int) float32) float32 {
	if node.IsLeaf() {
		return f(node.index)
	}

	dA := node.a.aabb.DistanceToPoint(point)
	dB := node.b.aabb.DistanceToPoint(point)

	first, second := node.a, node.b
	if dB < dA {
		first, second = node.b, node.a
		dA, dB = dB, dA
	}
	if dA <= maxDistance {
		maxDistance = first.distanceQuery(point, maxDistance, f)
		if maxDistance < 0 {
			return maxDistance
		}
	}
	if dB <= maxDistance {
		maxDistance = second.distanceQuery(point, maxDistance, f)
	}
	return maxDistance
}

// Each visits every item.
func (tree *BoundingVolumeHierarchy) Each(f func(index int)) {
	var walk func(node *Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		if node.IsLeaf() {
			f(node.index)
			return
		}
		walk(node.a)
		walk(node.b)
	}
	walk(tree.root)
}
