package physics

// LeafColliderCollector receives the leaves of a collider hierarchy.
// Composites bracket the leaves of a nested composite with
// PushCompositeCollider and PopCompositeCollider, in stack order and with
// matching bit counts.
type LeafColliderCollector interface {
	// AddLeaf is called once per convex leaf with its key local to the
	// innermost composite being visited.
	AddLeaf(key ColliderKey, leaf *ChildCollider)
	// PushCompositeCollider enters a nested composite. It returns the
	// transform to hand back to the matching PopCompositeCollider.
	PushCompositeCollider(compositeKey ColliderKeyPath, parentFromComposite MTransform) (worldFromParent MTransform)
	PopCompositeCollider(numCompositeKeyBits int, worldFromParent MTransform)
}

type Leaf struct {
	// Key addresses the leaf from the root.
	Key      ColliderKey
	Collider ChildCollider
	// WorldFromLeaf places the leaf's space in the collector's world.
	WorldFromLeaf MTransform
}

// LeafCollector records every leaf with its absolute key and world transform.
type LeafCollector struct {
	Leaves []Leaf

	keyPath        ColliderKeyPath
	worldFromLocal MTransform
	depth          int
}

func NewLeafCollector(worldFromRoot RigidTransform) *LeafCollector {
	return &LeafCollector{
		keyPath:        ColliderKeyPathEmpty,
		worldFromLocal: NewMTransform(worldFromRoot),
	}
}

func (c *LeafCollector) AddLeaf(key ColliderKey, leaf *ChildCollider) {
	c.Leaves = append(c.Leaves, Leaf{
		Key:           c.keyPath.GetLeafKey(key),
		Collider:      *leaf,
		WorldFromLeaf: c.worldFromLocal.Mul(NewMTransform(leaf.TransformFromChild)),
	})
}

func (c *LeafCollector) PushCompositeCollider(compositeKey ColliderKeyPath, parentFromComposite MTransform) MTransform {
	c.keyPath.PushChildKey(compositeKey)
	worldFromParent := c.worldFromLocal
	c.worldFromLocal = worldFromParent.Mul(parentFromComposite)
	c.depth++
	return worldFromParent
}

func (c *LeafCollector) PopCompositeCollider(numCompositeKeyBits int, worldFromParent MTransform) {
	c.keyPath.PopChildKey(numCompositeKeyBits)
	c.worldFromLocal = worldFromParent
	c.depth--
	invariant(c.depth >= 0, "unbalanced PopCompositeCollider")
}

// Depth is the number of composites currently entered.
func (c *LeafCollector) Depth() int {
	return c.depth
}

func (c *LeafCollector) Reset(worldFromRoot RigidTransform) {
	c.Leaves = c.Leaves[:0]
	c.keyPath = ColliderKeyPathEmpty
	c.worldFromLocal = NewMTransform(worldFromRoot)
	c.depth = 0
}

// CollectLeaves returns every leaf of collider placed in the world by worldFromRoot.
func CollectLeaves(collider *Collider, worldFromRoot RigidTransform) []Leaf {
	collector := NewLeafCollector(worldFromRoot)
	collider.GetLeaves(collector)
	return collector.Leaves
}
