package physics

// CalculateDistance reports whether any leaf passing the filter lies within
// input.MaxDistance of the point.
func (c *Collider) CalculateDistance(input PointDistanceInput) bool {
	return c.CalculateDistanceWith(input, NewAnyHitCollector[DistanceHit](input.MaxDistance))
}

func (c *Collider) CalculateDistanceClosest(input PointDistanceInput) (DistanceHit, bool) {
	collector := NewClosestHitCollector[DistanceHit](input.MaxDistance)
	if !c.CalculateDistanceWith(input, collector) {
		return DistanceHit{}, false
	}
	return collector.ClosestHit, true
}

func (c *Collider) CalculateDistanceAll(input PointDistanceInput, allHits *[]DistanceHit) bool {
	return c.CalculateDistanceWith(input, NewAllHitsCollector(input.MaxDistance, allHits))
}

func (c *Collider) CalculateDistanceWith(input PointDistanceInput, collector Collector[DistanceHit]) bool {
	return pointDistance(c, input, collector, rootQueryContext())
}

func pointDistance(c *Collider, input PointDistanceInput, collector Collector[DistanceHit], ctx queryContext) bool {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return pointDistanceLeaf(c, s, input, collector, ctx)
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.pointDistance(input, collector, ctx)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.pointDistance(input, collector, ctx)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return false
}

func pointDistanceLeaf(c *Collider, s convexShape, input PointDistanceInput, collector Collector[DistanceHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, c.Filter()) {
		return false
	}
	distance, position, normal := s.distanceToPoint(input.Position)
	if distance > collector.MaxFraction() {
		return false
	}
	return collector.AddHit(DistanceHit{
		Distance:         distance,
		Position:         ctx.rootFromLocal.Point(position),
		SurfaceNormal:    ctx.rootFromLocal.Vect(normal),
		Material:         c.material,
		ColliderKey:      ctx.leafKey(),
		QueryColliderKey: ColliderKeyEmpty,
	})
}

func (c *CompoundCollider) pointDistance(input PointDistanceInput, collector Collector[DistanceHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, c.collider.Filter()) {
		return false
	}
	numBits := c.NumColliderKeyBits()
	hadHit := false
	c.tree.DistanceQuery(input.Position, distanceBudget(collector.MaxFraction()), func(i int) float32 {
		child := c.children[i]
		childInput := input
		childInput.Position = child.CompoundFromChild.InversePoint(input.Position)
		if pointDistance(child.Collider, childInput, collector, ctx.child(child.CompoundFromChild, numBits, uint32(i))) {
			hadHit = true
			if collector.EarlyOutOnFirstHit() {
				return -1
			}
		}
		return distanceBudget(collector.MaxFraction())
	})
	return hadHit
}

func (m *MeshCollider) pointDistance(input PointDistanceInput, collector Collector[DistanceHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, m.collider.Filter()) {
		return false
	}
	numBits := m.NumColliderKeyBits()
	hadHit := false
	m.mesh.tree.DistanceQuery(input.Position, distanceBudget(collector.MaxFraction()), func(i int) float32 {
		completed := m.mesh.forEachPolygon(m.mesh.primitiveKeys[i], input.Filter, func(meshKey uint32, polygon *PolygonCollider) bool {
			if pointDistanceLeaf(polygon.AsCollider(), polygon, input, collector, ctx.withKey(numBits, meshKey)) {
				hadHit = true
				return !collector.EarlyOutOnFirstHit()
			}
			return true
		})
		if !completed {
			return -1
		}
		return distanceBudget(collector.MaxFraction())
	})
	return hadHit
}

// CalculateColliderDistance reports whether any leaf of input.Collider comes
// within input.MaxDistance of a leaf of c.
func (c *Collider) CalculateColliderDistance(input ColliderDistanceInput) bool {
	return c.CalculateColliderDistanceWith(input, NewAnyHitCollector[DistanceHit](input.MaxDistance))
}

func (c *Collider) CalculateColliderDistanceClosest(input ColliderDistanceInput) (DistanceHit, bool) {
	collector := NewClosestHitCollector[DistanceHit](input.MaxDistance)
	if !c.CalculateColliderDistanceWith(input, collector) {
		return DistanceHit{}, false
	}
	return collector.ClosestHit, true
}

func (c *Collider) CalculateColliderDistanceAll(input ColliderDistanceInput, allHits *[]DistanceHit) bool {
	return c.CalculateColliderDistanceWith(input, NewAllHitsCollector(input.MaxDistance, allHits))
}

// CalculateColliderDistanceWith measures every pair of leaves, one from each
// collider. Composite query colliders are split into their leaves first.
func (c *Collider) CalculateColliderDistanceWith(input ColliderDistanceInput, collector Collector[DistanceHit]) bool {
	if !input.Collider.IsValid() {
		return false
	}
	hadHit := false
	for _, leaf := range collectLeafInputs(input.Collider) {
		leafCollider := leaf.Collider.Collider()
		leafInput := ColliderDistanceInput{
			Collider:    leafCollider,
			Transform:   input.Transform.Mul(leaf.WorldFromLeaf.RigidTransform()),
			MaxDistance: input.MaxDistance,
		}
		if colliderDistance(c, leafInput, leaf.Key, collector, rootQueryContext()) {
			hadHit = true
			if collector.EarlyOutOnFirstHit() {
				return true
			}
		}
	}
	return hadHit
}

// colliderDistance measures a convex query leaf against c.
func colliderDistance(c *Collider, input ColliderDistanceInput, queryKey ColliderKey, collector Collector[DistanceHit], ctx queryContext) bool {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return colliderDistanceLeaf(c, s, input, queryKey, collector, ctx)
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.colliderDistance(input, queryKey, collector, ctx)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.colliderDistance(input, queryKey, collector, ctx)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return false
}

func colliderDistanceLeaf(c *Collider, s convexShape, input ColliderDistanceInput, queryKey ColliderKey, collector Collector[DistanceHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Collider.Filter(), c.Filter()) {
		return false
	}
	query, ok := input.Collider.convex()
	if !ok {
		return false
	}
	result := gjkDistance(leafCore(s), leafCore(query), input.Transform)
	if result.distance > collector.MaxFraction() {
		return false
	}
	return collector.AddHit(DistanceHit{
		Distance:         result.distance,
		Position:         ctx.rootFromLocal.Point(result.pointA),
		SurfaceNormal:    ctx.rootFromLocal.Vect(result.normal.Mul(-1)),
		Material:         c.material,
		ColliderKey:      ctx.leafKey(),
		QueryColliderKey: queryKey,
	})
}

func (c *CompoundCollider) colliderDistance(input ColliderDistanceInput, queryKey ColliderKey, collector Collector[DistanceHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Collider.Filter(), c.collider.Filter()) {
		return false
	}
	numBits := c.NumColliderKeyBits()
	hadHit := false
	bounds := input.Collider.CalculateAabb(input.Transform).Expand(distanceBudget(collector.MaxFraction()))
	c.tree.Query(bounds, func(i int) bool {
		child := c.children[i]
		childInput := input
		childInput.Transform = child.CompoundFromChild.Inverse().Mul(input.Transform)
		if colliderDistance(child.Collider, childInput, queryKey, collector, ctx.child(child.CompoundFromChild, numBits, uint32(i))) {
			hadHit = true
			return !collector.EarlyOutOnFirstHit()
		}
		return true
	})
	return hadHit
}

func (m *MeshCollider) colliderDistance(input ColliderDistanceInput, queryKey ColliderKey, collector Collector[DistanceHit], ctx queryContext) bool {
	filter := input.Collider.Filter()
	if !IsCollisionEnabled(filter, m.collider.Filter()) {
		return false
	}
	numBits := m.NumColliderKeyBits()
	hadHit := false
	bounds := input.Collider.CalculateAabb(input.Transform).Expand(distanceBudget(collector.MaxFraction()))
	m.mesh.tree.Query(bounds, func(i int) bool {
		return m.mesh.forEachPolygon(m.mesh.primitiveKeys[i], filter, func(meshKey uint32, polygon *PolygonCollider) bool {
			if colliderDistanceLeaf(polygon.AsCollider(), polygon, input, queryKey, collector, ctx.withKey(numBits, meshKey)) {
				hadHit = true
				return !collector.EarlyOutOnFirstHit()
			}
			return true
		})
	})
	return hadHit
}
