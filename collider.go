package physics

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

type ColliderType uint8

const (
	ColliderTypeConvex ColliderType = iota
	ColliderTypeSphere
	ColliderTypeCapsule
	ColliderTypeTriangle
	ColliderTypeQuad
	ColliderTypeBox
	ColliderTypeMesh
	ColliderTypeCompound
)

func (t ColliderType) String() string {
	switch t {
	case ColliderTypeConvex:
		return "Convex"
	case ColliderTypeSphere:
		return "Sphere"
	case ColliderTypeCapsule:
		return "Capsule"
	case ColliderTypeTriangle:
		return "Triangle"
	case ColliderTypeQuad:
		return "Quad"
	case ColliderTypeBox:
		return "Box"
	case ColliderTypeMesh:
		return "Mesh"
	case ColliderTypeCompound:
		return "Compound"
	}
	return fmt.Sprintf("ColliderType(%d)", uint8(t))
}

type CollisionType uint8

const (
	// CollisionTypeConvex colliders are always leaves.
	CollisionTypeConvex CollisionType = iota
	// CollisionTypeComposite colliders own children addressed by ColliderKey.
	CollisionTypeComposite
)

func (t ColliderType) CollisionType() CollisionType {
	if t == ColliderTypeMesh || t == ColliderTypeCompound {
		return CollisionTypeComposite
	}
	return CollisionTypeConvex
}

const colliderMagic = 0xff

// ColliderHeader is the common prefix of every collider.
type ColliderHeader struct {
	Type          ColliderType
	CollisionType CollisionType
	// Version is bumped whenever the collider content changes in place.
	Version uint8
	Magic   uint8
	Filter  CollisionFilter
}

// Collider is the type erased face of every concrete collider. Concrete
// colliders own one and hand it out through AsCollider; every operation
// switches on the header type and forwards to the concrete implementation.
type Collider struct {
	header   ColliderHeader
	material Material
	impl     interface{}
}

func newCollider(t ColliderType, filter CollisionFilter, material Material, impl interface{}) Collider {
	return Collider{
		header: ColliderHeader{
			Type:          t,
			CollisionType: t.CollisionType(),
			Version:       1,
			Magic:         colliderMagic,
			Filter:        filter,
		},
		material: material,
		impl:     impl,
	}
}

func (c *Collider) Header() ColliderHeader {
	return c.header
}

func (c *Collider) Type() ColliderType {
	return c.header.Type
}

func (c *Collider) CollisionType() CollisionType {
	return c.header.CollisionType
}

func (c *Collider) Version() uint8 {
	return c.header.Version
}

// IsValid reports whether the header carries the expected magic value.
func (c *Collider) IsValid() bool {
	return c != nil && c.header.Magic == colliderMagic
}

func (c *Collider) Filter() CollisionFilter {
	return c.header.Filter
}

// SetFilter only applies to convex colliders. A composite's filter is the
// union of its children's filters and writes to it are ignored.
func (c *Collider) SetFilter(filter CollisionFilter) {
	if c.header.CollisionType != CollisionTypeConvex {
		return
	}
	c.header.Filter = filter
	c.header.Version++
}

// Material is only meaningful for convex colliders; composites return the zero value.
func (c *Collider) Material() Material {
	if c.header.CollisionType != CollisionTypeConvex {
		return Material{}
	}
	return c.material
}

func (c *Collider) SetMaterial(material Material) {
	if c.header.CollisionType != CollisionTypeConvex {
		return
	}
	c.material = material
	c.header.Version++
}

func (c *Collider) bumpVersion() {
	c.header.Version++
}

func (c *Collider) String() string {
	return fmt.Sprintf("Collider{%v v%d}", c.header.Type, c.header.Version)
}

func (c *Collider) Sphere() (*SphereCollider, bool) {
	s, ok := c.impl.(*SphereCollider)
	return s, ok && c.header.Type == ColliderTypeSphere
}

func (c *Collider) Capsule() (*CapsuleCollider, bool) {
	s, ok := c.impl.(*CapsuleCollider)
	return s, ok && c.header.Type == ColliderTypeCapsule
}

func (c *Collider) Box() (*BoxCollider, bool) {
	s, ok := c.impl.(*BoxCollider)
	return s, ok && c.header.Type == ColliderTypeBox
}

func (c *Collider) Polygon() (*PolygonCollider, bool) {
	s, ok := c.impl.(*PolygonCollider)
	return s, ok && (c.header.Type == ColliderTypeTriangle || c.header.Type == ColliderTypeQuad)
}

func (c *Collider) Convex() (*ConvexCollider, bool) {
	s, ok := c.impl.(*ConvexCollider)
	return s, ok && c.header.Type == ColliderTypeConvex
}

func (c *Collider) Mesh() (*MeshCollider, bool) {
	s, ok := c.impl.(*MeshCollider)
	return s, ok && c.header.Type == ColliderTypeMesh
}

func (c *Collider) Compound() (*CompoundCollider, bool) {
	s, ok := c.impl.(*CompoundCollider)
	return s, ok && c.header.Type == ColliderTypeCompound
}

// convexShape is implemented by every leaf collider.
type convexShape interface {
	core() convexCore
	planes() []Plane
	castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool)
	distanceToPoint(p mgl32.Vec3) (distance float32, position, normal mgl32.Vec3)
	memorySize() int
	massProperties() MassProperties
	aabb(t RigidTransform) Aabb
}

// convex returns the leaf implementation of c, or false for composites and
// broken colliders.
func (c *Collider) convex() (convexShape, bool) {
	switch c.header.Type {
	case ColliderTypeConvex:
		s, ok := c.Convex()
		return s, ok
	case ColliderTypeSphere:
		s, ok := c.Sphere()
		return s, ok
	case ColliderTypeCapsule:
		s, ok := c.Capsule()
		return s, ok
	case ColliderTypeTriangle, ColliderTypeQuad:
		s, ok := c.Polygon()
		return s, ok
	case ColliderTypeBox:
		s, ok := c.Box()
		return s, ok
	}
	return nil, false
}

func (c *Collider) MemorySize() int {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return s.memorySize()
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.memorySize()
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.memorySize()
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return 0
}

func (c *Collider) MassProperties() MassProperties {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return s.massProperties()
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.massProperties()
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.massProperties()
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return UnitSphereMassProperties
}

// CalculateAabb returns the bounds of the collider after placing it with t.
func (c *Collider) CalculateAabb(t RigidTransform) Aabb {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return s.aabb(t)
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.calculateAabb(t)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.calculateAabb(t)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return EmptyAabb()
}

// NumColliderKeyBits is the number of key bits this collider uses for its
// own children. Convex colliders use none.
func (c *Collider) NumColliderKeyBits() int {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		return 0
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.NumColliderKeyBits()
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.NumColliderKeyBits()
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return 0
}

// GetChild pops this collider's bits from key and returns the immediate
// child they address. Convex colliders have no children. On failure key is
// left as it was.
func (c *Collider) GetChild(key *ColliderKey) (ChildCollider, bool) {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		return ChildCollider{}, false
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.GetChild(key)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.GetChild(key)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return ChildCollider{}, false
}

// GetLeaf resolves the whole key to a convex leaf, descending through nested
// composites. The returned view is in this collider's space.
func (c *Collider) GetLeaf(key ColliderKey) (ChildCollider, bool) {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		return ChildCollider{}, false
	case ColliderTypeMesh, ColliderTypeCompound:
		return GetLeafCollider(c, NewTransformIdentity(), key)
	}
	invariant(false, "unknown collider ", c.header.Type)
	return ChildCollider{}, false
}

// GetLeaves reports every leaf of the collider to collector. A convex
// collider reports itself with ColliderKeyEmpty.
func (c *Collider) GetLeaves(collector LeafColliderCollector) {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		leaf := NewChildCollider(c, NewTransformIdentity())
		collector.AddLeaf(ColliderKeyEmpty, &leaf)
		return
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			m.GetLeaves(collector)
			return
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			m.GetLeaves(collector)
			return
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
}

func baseMemorySize[T any](v *T) int {
	return int(unsafe.Sizeof(*v))
}
