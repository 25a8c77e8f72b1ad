package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Query inputs are expressed in the space of the collider being queried.

type RaycastInput struct {
	Start, End mgl32.Vec3
	Filter     CollisionFilter
}

// ColliderCastInput sweeps Collider, held at Orientation, from Start to End.
type ColliderCastInput struct {
	Collider    *Collider
	Orientation mgl32.Quat
	Start, End  mgl32.Vec3
}

type PointDistanceInput struct {
	Position    mgl32.Vec3
	MaxDistance float32
	Filter      CollisionFilter
}

// ColliderDistanceInput places Collider in the queried collider's space with Transform.
type ColliderDistanceInput struct {
	Collider    *Collider
	Transform   RigidTransform
	MaxDistance float32
}

type RaycastHit struct {
	// Fraction along the ray, in [0, 1].
	Fraction      float32
	Position      mgl32.Vec3
	SurfaceNormal mgl32.Vec3
	Material      Material
	// ColliderKey names the leaf that was hit.
	ColliderKey ColliderKey
}

func (h RaycastHit) QueryFraction() float32 { return h.Fraction }

type ColliderCastHit struct {
	Fraction      float32
	Position      mgl32.Vec3
	SurfaceNormal mgl32.Vec3
	Material      Material
	ColliderKey   ColliderKey
	// QueryColliderKey names the leaf of the cast collider that made contact.
	QueryColliderKey ColliderKey
}

func (h ColliderCastHit) QueryFraction() float32 { return h.Fraction }

// KeyPair names the cast collider's leaf as A and the target's leaf as B.
func (h ColliderCastHit) KeyPair() ColliderKeyPair {
	return ColliderKeyPair{ColliderKeyA: h.QueryColliderKey, ColliderKeyB: h.ColliderKey}
}

// DistanceHit describes the closest point of a leaf. Distance is negative
// when the query overlaps the leaf. SurfaceNormal points out of the leaf
// towards the query.
type DistanceHit struct {
	Distance         float32
	Position         mgl32.Vec3
	SurfaceNormal    mgl32.Vec3
	Material         Material
	ColliderKey      ColliderKey
	QueryColliderKey ColliderKey
}

func (h DistanceHit) QueryFraction() float32 { return h.Distance }

// KeyPair names the query collider's leaf as A and the target's leaf as B.
func (h DistanceHit) KeyPair() ColliderKeyPair {
	return ColliderKeyPair{ColliderKeyA: h.QueryColliderKey, ColliderKeyB: h.ColliderKey}
}

// queryContext carries what a query needs to report a hit in the root's
// space while it visits a descendant.
type queryContext struct {
	rootFromLocal RigidTransform
	keyPath       ColliderKeyPath
}

func rootQueryContext() queryContext {
	return queryContext{NewTransformIdentity(), ColliderKeyPathEmpty}
}

// child enters a composite child placed by parentFromChild.
func (ctx queryContext) child(parentFromChild RigidTransform, numBits int, childKey uint32) queryContext {
	next := ctx.withKey(numBits, childKey)
	next.rootFromLocal = ctx.rootFromLocal.Mul(parentFromChild)
	return next
}

// withKey enters a child that shares its parent's space.
func (ctx queryContext) withKey(numBits int, childKey uint32) queryContext {
	ctx.keyPath.PushChildKey(NewColliderKeyPath(NewColliderKey(numBits, childKey), numBits))
	return ctx
}

func (ctx queryContext) leafKey() ColliderKey {
	return ctx.keyPath.Key()
}

// distanceBudget is the search radius for a distance traversal. Hits may
// have negative distances but the traversal never searches below zero.
func distanceBudget(maxDistance float32) float32 {
	return math32.Max(maxDistance, 0)
}

// collectLeafInputs splits a composite query collider into its convex leaves
// placed in the query collider's space. A convex collider is its own leaf.
func collectLeafInputs(collider *Collider) []Leaf {
	if collider.CollisionType() == CollisionTypeConvex {
		return []Leaf{{
			Key:           ColliderKeyEmpty,
			Collider:      NewChildCollider(collider, NewTransformIdentity()),
			WorldFromLeaf: NewMTransformIdentity(),
		}}
	}
	return CollectLeaves(collider, NewTransformIdentity())
}
