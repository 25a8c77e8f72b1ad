package physics

import "github.com/go-gl/mathgl/mgl32"

// MaxCastIterations bounds the conservative advancement steps of a collider cast.
const MaxCastIterations = 32

// CastCollider reports whether input.Collider hits anything while swept
// from Start to End.
func (c *Collider) CastCollider(input ColliderCastInput) bool {
	return c.CastColliderWith(input, NewAnyHitCollector[ColliderCastHit](1))
}

func (c *Collider) CastColliderClosest(input ColliderCastInput) (ColliderCastHit, bool) {
	collector := NewClosestHitCollector[ColliderCastHit](1)
	if !c.CastColliderWith(input, collector) {
		return ColliderCastHit{}, false
	}
	return collector.ClosestHit, true
}

func (c *Collider) CastColliderAll(input ColliderCastInput, allHits *[]ColliderCastHit) bool {
	return c.CastColliderWith(input, NewAllHitsCollector(1, allHits))
}

// CastColliderWith sweeps every leaf of the cast collider against c. A leaf
// that already overlaps c at Start hits at fraction 0.
func (c *Collider) CastColliderWith(input ColliderCastInput, collector Collector[ColliderCastHit]) bool {
	if !input.Collider.IsValid() {
		return false
	}
	hadHit := false
	for _, leaf := range collectLeafInputs(input.Collider) {
		castFromLeaf := leaf.WorldFromLeaf.RigidTransform()
		offset := input.Orientation.Rotate(castFromLeaf.Translation)
		leafInput := ColliderCastInput{
			Collider:    leaf.Collider.Collider(),
			Orientation: input.Orientation.Mul(castFromLeaf.Rotation),
			Start:       input.Start.Add(offset),
			End:         input.End.Add(offset),
		}
		if castCollider(c, leafInput, leaf.Key, collector, rootQueryContext()) {
			hadHit = true
			if collector.EarlyOutOnFirstHit() {
				return true
			}
		}
	}
	return hadHit
}

// castCollider sweeps a convex query leaf against c.
func castCollider(c *Collider, input ColliderCastInput, queryKey ColliderKey, collector Collector[ColliderCastHit], ctx queryContext) bool {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return castColliderLeaf(c, s, input, queryKey, collector, ctx)
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.castCollider(input, queryKey, collector, ctx)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.castCollider(input, queryKey, collector, ctx)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return false
}

// sweptAabb bounds the cast collider over the whole sweep.
func sweptAabb(input ColliderCastInput) Aabb {
	start := input.Collider.CalculateAabb(NewRigidTransform(input.Orientation, input.Start))
	end := input.Collider.CalculateAabb(NewRigidTransform(input.Orientation, input.End))
	return start.Union(end)
}

func castColliderLeaf(c *Collider, s convexShape, input ColliderCastInput, queryKey ColliderKey, collector Collector[ColliderCastHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Collider.Filter(), c.Filter()) {
		return false
	}
	query, ok := input.Collider.convex()
	if !ok {
		return false
	}
	fraction, position, normal, ok := conservativeAdvance(leafCore(s), leafCore(query), input, collector.MaxFraction())
	if !ok {
		return false
	}
	return collector.AddHit(ColliderCastHit{
		Fraction:         fraction,
		Position:         ctx.rootFromLocal.Point(position),
		SurfaceNormal:    ctx.rootFromLocal.Vect(normal),
		Material:         c.material,
		ColliderKey:      ctx.leafKey(),
		QueryColliderKey: queryKey,
	})
}

// conservativeAdvance steps the query along the sweep by the current distance
// divided by the closing speed, which can never step past the first contact.
// The returned normal points out of target.
func conservativeAdvance(target, query convexCore, input ColliderCastInput, maxFraction float32) (float32, mgl32.Vec3, mgl32.Vec3, bool) {
	displacement := input.End.Sub(input.Start)
	var fraction float32
	for iter := 0; iter < MaxCastIterations; iter++ {
		pose := NewRigidTransform(input.Orientation, input.Start.Add(displacement.Mul(fraction)))
		result := gjkDistance(target, query, pose)
		normal := result.normal.Mul(-1)
		if result.distance <= DistanceTolerance {
			return fraction, result.pointA, normal, true
		}
		closingSpeed := -displacement.Dot(normal)
		if closingSpeed <= MAGIC_EPSILON {
			return 0, mgl32.Vec3{}, mgl32.Vec3{}, false
		}
		fraction += result.distance / closingSpeed
		if fraction > maxFraction {
			return 0, mgl32.Vec3{}, mgl32.Vec3{}, false
		}
	}
	return 0, mgl32.Vec3{}, mgl32.Vec3{}, false
}

func (c *CompoundCollider) castCollider(input ColliderCastInput, queryKey ColliderKey, collector Collector[ColliderCastHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Collider.Filter(), c.collider.Filter()) {
		return false
	}
	numBits := c.NumColliderKeyBits()
	hadHit := false
	c.tree.Query(sweptAabb(input), func(i int) bool {
		child := c.children[i]
		childFromCompound := child.CompoundFromChild.Inverse()
		childInput := input
		childInput.Orientation = childFromCompound.Rotation.Mul(input.Orientation)
		childInput.Start = childFromCompound.Point(input.Start)
		childInput.End = childFromCompound.Point(input.End)
		if castCollider(child.Collider, childInput, queryKey, collector, ctx.child(child.CompoundFromChild, numBits, uint32(i))) {
			hadHit = true
			return !collector.EarlyOutOnFirstHit()
		}
		return true
	})
	return hadHit
}

func (m *MeshCollider) castCollider(input ColliderCastInput, queryKey ColliderKey, collector Collector[ColliderCastHit], ctx queryContext) bool {
	filter := input.Collider.Filter()
	if !IsCollisionEnabled(filter, m.collider.Filter()) {
		return false
	}
	numBits := m.NumColliderKeyBits()
	hadHit := false
	m.mesh.tree.Query(sweptAabb(input), func(i int) bool {
		return m.mesh.forEachPolygon(m.mesh.primitiveKeys[i], filter, func(meshKey uint32, polygon *PolygonCollider) bool {
			if castColliderLeaf(polygon.AsCollider(), polygon, input, queryKey, collector, ctx.withKey(numBits, meshKey)) {
				hadHit = true
				return !collector.EarlyOutOnFirstHit()
			}
			return true
		})
	})
	return hadHit
}
