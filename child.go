package physics

import "github.com/go-gl/mathgl/mgl32"

// ChildCollider is a view of one node met while walking down a collider
// hierarchy. It either points at an existing collider or carries a polygon
// synthesized from mesh data. It does not own the collider it points at and
// is only valid while the root it came from is alive.
type ChildCollider struct {
	collider *Collider
	polygon  PolygonCollider
	// TransformFromChild maps the child's space to the space of the root
	// the walk started from.
	TransformFromChild RigidTransform
}

func NewChildCollider(collider *Collider, transform RigidTransform) ChildCollider {
	return ChildCollider{collider: collider, TransformFromChild: transform}
}

// NewTriangleChildCollider synthesizes a triangle in its parent's space.
func NewTriangleChildCollider(a, b, c mgl32.Vec3, filter CollisionFilter, material Material) ChildCollider {
	child := ChildCollider{TransformFromChild: NewTransformIdentity()}
	child.polygon.InitAsTriangle(a, b, c, filter, material)
	return child
}

func NewQuadChildCollider(a, b, c, d mgl32.Vec3, filter CollisionFilter, material Material) ChildCollider {
	child := ChildCollider{TransformFromChild: NewTransformIdentity()}
	child.polygon.InitAsQuad(a, b, c, d, filter, material)
	return child
}

// CombineChildCollider chains child, expressed in parent's child space, onto parent.
func CombineChildCollider(parent, child ChildCollider) ChildCollider {
	combined := child
	combined.TransformFromChild = parent.TransformFromChild.Mul(child.TransformFromChild)
	return combined
}

// Collider returns the collider the view refers to, which is the embedded
// polygon for synthesized children. It is nil for the zero view.
func (cc *ChildCollider) Collider() *Collider {
	if cc.collider != nil {
		return cc.collider
	}
	if cc.polygon.collider.header.Magic != colliderMagic {
		return nil
	}
	return cc.polygon.AsCollider()
}

// IsSynthesized reports whether the view owns an inline polygon instead of
// pointing at a collider.
func (cc *ChildCollider) IsSynthesized() bool {
	return cc.collider == nil && cc.polygon.collider.header.Magic == colliderMagic
}

// GetLeafCollider follows key from root down to a leaf. It reports true when
// the walk ends on a convex collider and false when the key runs out inside
// a composite or names a child that does not exist.
func GetLeafCollider(root *Collider, rootTransform RigidTransform, key ColliderKey) (ChildCollider, bool) {
	leaf := NewChildCollider(root, rootTransform)
	for current := leaf.Collider(); current != nil; current = leaf.Collider() {
		child, ok := current.GetChild(&key)
		if !ok {
			break
		}
		leaf = CombineChildCollider(leaf, child)
	}
	collider := leaf.Collider()
	return leaf, collider == nil || collider.CollisionType() == CollisionTypeConvex
}
