package physics

import (
	"fmt"
	"math/bits"
)

type CompoundChild struct {
	CompoundFromChild RigidTransform
	Collider          *Collider
}

// CompoundCollider groups other colliders, each with its own placement.
// Children may themselves be composites.
type CompoundCollider struct {
	collider Collider
	children []CompoundChild
	// childAabbs are the children's bounds in compound space, indexed by child.
	childAabbs []Aabb
	tree       *BoundingVolumeHierarchy
	mass       MassProperties
}

// NewCompoundCollider builds a compound over children. An empty child list
// is allowed and yields a compound without leaves.
func NewCompoundCollider(children []CompoundChild) (*CompoundCollider, error) {
	for i, child := range children {
		if !child.Collider.IsValid() {
			return nil, fmt.Errorf("compound child %d: %w", i, ErrNilCollider)
		}
	}

	compound := &CompoundCollider{
		children:   append([]CompoundChild(nil), children...),
		childAabbs: make([]Aabb, len(children)),
	}
	compound.collider = newCollider(ColliderTypeCompound, ZeroFilter, Material{}, compound)
	for i, child := range compound.children {
		compound.childAabbs[i] = child.Collider.CalculateAabb(child.CompoundFromChild)
	}
	compound.tree = BuildBoundingVolumeHierarchy(compound.childAabbs)
	compound.RefreshCollisionFilters()
	compound.mass = compound.computeMassProperties()
	return compound, nil
}

func (c *CompoundCollider) AsCollider() *Collider {
	c.collider.impl = c
	return &c.collider
}

func (c *CompoundCollider) NumChildren() int {
	return len(c.children)
}

func (c *CompoundCollider) Child(i int) CompoundChild {
	return c.children[i]
}

func (c *CompoundCollider) NumColliderKeyBits() int {
	return bits.Len32(uint32(len(c.children)))
}

// RefreshCollisionFilters recomputes the compound's filter, and those of
// nested compounds, after a child's filter changed.
func (c *CompoundCollider) RefreshCollisionFilters() {
	filter := ZeroFilter
	for i, child := range c.children {
		if nested, ok := child.Collider.Compound(); ok {
			nested.RefreshCollisionFilters()
		}
		if i == 0 {
			filter = child.Collider.Filter()
		} else {
			filter = CreateFilterUnion(filter, child.Collider.Filter())
		}
	}
	if filter != c.collider.header.Filter {
		c.collider.header.Filter = filter
		c.collider.bumpVersion()
	}
}

// GetChild pops the child index from key. A key that names a child past the
// end is left untouched.
func (c *CompoundCollider) GetChild(key *ColliderKey) (ChildCollider, bool) {
	original := *key
	childIndex, ok := key.PopSubKey(c.NumColliderKeyBits())
	if !ok {
		return ChildCollider{}, false
	}
	if int(childIndex) >= len(c.children) {
		*key = original
		return ChildCollider{}, false
	}
	child := c.children[childIndex]
	return NewChildCollider(child.Collider, child.CompoundFromChild), true
}

func (c *CompoundCollider) GetLeaves(collector LeafColliderCollector) {
	numBits := c.NumColliderKeyBits()
	for i := range c.children {
		child := c.children[i]
		childKey := NewColliderKey(numBits, uint32(i))
		if child.Collider.CollisionType() == CollisionTypeComposite {
			worldFromCompound := collector.PushCompositeCollider(NewColliderKeyPath(childKey, numBits), NewMTransform(child.CompoundFromChild))
			child.Collider.GetLeaves(collector)
			collector.PopCompositeCollider(numBits, worldFromCompound)
		} else {
			leaf := NewChildCollider(child.Collider, child.CompoundFromChild)
			collector.AddLeaf(childKey, &leaf)
		}
	}
}

func (c *CompoundCollider) calculateAabb(t RigidTransform) Aabb {
	aabb := EmptyAabb()
	for _, child := range c.children {
		aabb = aabb.Union(child.Collider.CalculateAabb(t.Mul(child.CompoundFromChild)))
	}
	return aabb
}

func (c *CompoundCollider) memorySize() int {
	size := baseMemorySize(c)
	size += len(c.children) * baseMemorySize(&CompoundChild{})
	size += len(c.childAabbs) * baseMemorySize(&Aabb{})
	size += c.tree.Count() * 2 * baseMemorySize(&Node{})
	return size
}

func (c *CompoundCollider) massProperties() MassProperties {
	return c.mass
}

// Children share one density, so each contributes mass in proportion to its
// volume. Volumeless children get an equal share instead.
func (c *CompoundCollider) computeMassProperties() MassProperties {
	if len(c.children) == 0 {
		return UnitSphereMassProperties
	}
	parts := make([]massPart, len(c.children))
	var totalVolume float32
	for i, child := range c.children {
		props := child.Collider.MassProperties()
		parts[i] = massPart{props: props, toShape: child.CompoundFromChild, mass: props.Volume}
		totalVolume += props.Volume
	}
	if totalVolume <= 0 {
		for i := range parts {
			parts[i].mass = 1
		}
	}
	return combineMassProperties(parts)
}
