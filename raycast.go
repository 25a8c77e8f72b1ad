package physics

// CastRay reports whether the ray hits any leaf that passes the input filter.
func (c *Collider) CastRay(input RaycastInput) bool {
	return c.CastRayWith(input, NewAnyHitCollector[RaycastHit](1))
}

// CastRayClosest returns the first hit along the ray.
func (c *Collider) CastRayClosest(input RaycastInput) (RaycastHit, bool) {
	collector := NewClosestHitCollector[RaycastHit](1)
	if !c.CastRayWith(input, collector) {
		return RaycastHit{}, false
	}
	return collector.ClosestHit, true
}

// CastRayAll appends every hit to allHits, in no particular order.
func (c *Collider) CastRayAll(input RaycastInput, allHits *[]RaycastHit) bool {
	return c.CastRayWith(input, NewAllHitsCollector(1, allHits))
}

func (c *Collider) CastRayWith(input RaycastInput, collector Collector[RaycastHit]) bool {
	return castRay(c, input, collector, rootQueryContext())
}

func castRay(c *Collider, input RaycastInput, collector Collector[RaycastHit], ctx queryContext) bool {
	switch c.header.Type {
	case ColliderTypeConvex, ColliderTypeSphere, ColliderTypeCapsule,
		ColliderTypeTriangle, ColliderTypeQuad, ColliderTypeBox:
		if s, ok := c.convex(); ok {
			return castRayLeaf(c, s, input, collector, ctx)
		}
	case ColliderTypeMesh:
		if m, ok := c.Mesh(); ok {
			return m.castRay(input, collector, ctx)
		}
	case ColliderTypeCompound:
		if m, ok := c.Compound(); ok {
			return m.castRay(input, collector, ctx)
		}
	}
	invariant(false, "unknown collider ", c.header.Type)
	return false
}

func castRayLeaf(c *Collider, s convexShape, input RaycastInput, collector Collector[RaycastHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, c.Filter()) {
		return false
	}
	fraction, normal, ok := s.castRayLocal(input.Start, input.End)
	if !ok || fraction > collector.MaxFraction() {
		return false
	}
	return collector.AddHit(RaycastHit{
		Fraction:      fraction,
		Position:      ctx.rootFromLocal.Point(VectorLerp(input.Start, input.End, fraction)),
		SurfaceNormal: ctx.rootFromLocal.Vect(normal),
		Material:      c.material,
		ColliderKey:   ctx.leafKey(),
	})
}

func (c *CompoundCollider) castRay(input RaycastInput, collector Collector[RaycastHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, c.collider.Filter()) {
		return false
	}
	numBits := c.NumColliderKeyBits()
	hadHit := false
	c.tree.SegmentQuery(input.Start, input.End, collector.MaxFraction(), func(i int) float32 {
		child := c.children[i]
		childInput := input
		childInput.Start = child.CompoundFromChild.InversePoint(input.Start)
		childInput.End = child.CompoundFromChild.InversePoint(input.End)
		if castRay(child.Collider, childInput, collector, ctx.child(child.CompoundFromChild, numBits, uint32(i))) {
			hadHit = true
			if collector.EarlyOutOnFirstHit() {
				return -1
			}
		}
		return collector.MaxFraction()
	})
	return hadHit
}

func (m *MeshCollider) castRay(input RaycastInput, collector Collector[RaycastHit], ctx queryContext) bool {
	if !IsCollisionEnabled(input.Filter, m.collider.Filter()) {
		return false
	}
	numBits := m.NumColliderKeyBits()
	hadHit := false
	m.mesh.tree.SegmentQuery(input.Start, input.End, collector.MaxFraction(), func(i int) float32 {
		completed := m.mesh.forEachPolygon(m.mesh.primitiveKeys[i], input.Filter, func(meshKey uint32, polygon *PolygonCollider) bool {
			if castRayLeaf(polygon.AsCollider(), polygon, input, collector, ctx.withKey(numBits, meshKey)) {
				hadHit = true
				return !collector.EarlyOutOnFirstHit()
			}
			return true
		})
		if !completed {
			return -1
		}
		return collector.MaxFraction()
	})
	return hadHit
}
