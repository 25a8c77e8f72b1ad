package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CapsuleGeometry is the set of points within Radius of the segment Vertex0-Vertex1.
type CapsuleGeometry struct {
	Vertex0, Vertex1 mgl32.Vec3
	Radius           float32
}

func (g CapsuleGeometry) Validate() error {
	if !VectorIsFinite(g.Vertex0) || !VectorIsFinite(g.Vertex1) {
		return fmt.Errorf("capsule vertices: %w", ErrInvalidGeometry)
	}
	if !(g.Radius >= 0) || math32.IsInf(g.Radius, 0) {
		return fmt.Errorf("capsule radius %v: %w", g.Radius, ErrInvalidGeometry)
	}
	return nil
}

type CapsuleCollider struct {
	collider Collider
	geometry CapsuleGeometry
	vertices [2]mgl32.Vec3
}

func NewCapsuleCollider(geometry CapsuleGeometry, filter CollisionFilter, material Material) (*CapsuleCollider, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	capsule := &CapsuleCollider{}
	capsule.collider = newCollider(ColliderTypeCapsule, filter, material, capsule)
	capsule.setGeometry(geometry)
	return capsule, nil
}

func (c *CapsuleCollider) AsCollider() *Collider {
	c.collider.impl = c
	return &c.collider
}

func (c *CapsuleCollider) Geometry() CapsuleGeometry {
	return c.geometry
}

func (c *CapsuleCollider) SetGeometry(geometry CapsuleGeometry) error {
	if err := geometry.Validate(); err != nil {
		return err
	}
	c.setGeometry(geometry)
	c.collider.bumpVersion()
	return nil
}

func (c *CapsuleCollider) setGeometry(geometry CapsuleGeometry) {
	c.geometry = geometry
	c.vertices = [2]mgl32.Vec3{geometry.Vertex0, geometry.Vertex1}
}

func (c *CapsuleCollider) Radius() float32 {
	return c.geometry.Radius
}

func (c *CapsuleCollider) core() convexCore {
	return convexCore{vertices: c.vertices[:], radius: c.geometry.Radius}
}

func (c *CapsuleCollider) planes() []Plane {
	return nil
}

func (c *CapsuleCollider) memorySize() int {
	return baseMemorySize(c)
}

func (c *CapsuleCollider) massProperties() MassProperties {
	g := c.geometry
	axis := g.Vertex1.Sub(g.Vertex0)
	height := axis.Len()
	r := g.Radius

	cylinderVolume := math32.Pi * r * r * height
	sphereVolume := 4.0 / 3.0 * math32.Pi * r * r * r
	volume := cylinderVolume + sphereVolume
	if volume <= 0 {
		return MassProperties{
			MassDistribution: MassDistribution{Transform: NewTransformTranslate(g.Vertex0)},
		}
	}
	cylinderMass := cylinderVolume / volume
	sphereMass := sphereVolume / volume

	// Inertia about the long axis (z in the principal frame) and across it.
	along := cylinderMass*(r*r/2) + sphereMass*(2*r*r/5)
	across := cylinderMass*(r*r/4+height*height/12) +
		sphereMass*(2*r*r/5+height*height/4+3*height*r/8)

	rotation := mgl32.QuatIdent()
	if height > MAGIC_EPSILON {
		rotation = mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, axis.Mul(1/height))
	}

	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     NewRigidTransform(rotation, g.Vertex0.Add(g.Vertex1).Mul(0.5)),
			InertiaTensor: mgl32.Vec3{across, across, along},
		},
		Volume:                 volume,
		AngularExpansionFactor: height * 0.5,
	}
}

func (c *CapsuleCollider) aabb(t RigidTransform) Aabb {
	v0 := t.Point(c.geometry.Vertex0)
	v1 := t.Point(c.geometry.Vertex1)
	return NewAabbForPoints(v0, v1).Expand(c.geometry.Radius)
}

func (c *CapsuleCollider) castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	return rayCapsule(start, end, c.geometry.Vertex0, c.geometry.Vertex1, c.geometry.Radius)
}

func (c *CapsuleCollider) distanceToPoint(p mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	q := ClosestPointOnSegment(p, c.geometry.Vertex0, c.geometry.Vertex1)
	delta := p.Sub(q)
	normal := SafeNormalize(delta, vectorUp)
	return delta.Len() - c.geometry.Radius, q.Add(normal.Mul(c.geometry.Radius)), normal
}

func rayCapsule(start, end, v0, v1 mgl32.Vec3, radius float32) (float32, mgl32.Vec3, bool) {
	if p := ClosestPointOnSegment(start, v0, v1); start.Sub(p).LenSqr() <= radius*radius {
		return 0, mgl32.Vec3{}, false
	}

	best := float32(INFINITY)
	var bestNormal mgl32.Vec3
	if t, n, ok := raySphere(start, end, v0, radius); ok {
		best, bestNormal = t, n
	}
	if t, n, ok := raySphere(start, end, v1, radius); ok && t < best {
		best, bestNormal = t, n
	}

	axis := v1.Sub(v0)
	axisLenSq := axis.LenSqr()
	if axisLenSq > MAGIC_EPSILON*MAGIC_EPSILON {
		d := end.Sub(start)
		m := start.Sub(v0)
		dPerp := d.Sub(axis.Mul(d.Dot(axis) / axisLenSq))
		mPerp := m.Sub(axis.Mul(m.Dot(axis) / axisLenSq))

		a := dPerp.Dot(dPerp)
		b := mPerp.Dot(dPerp)
		c := mPerp.Dot(mPerp) - radius*radius
		disc := b*b - a*c
		if a > 0 && disc >= 0 {
			t := (-b - math32.Sqrt(disc)) / a
			if t >= 0 && t <= 1 && t < best {
				hit := start.Add(d.Mul(t))
				s := hit.Sub(v0).Dot(axis) / axisLenSq
				if s >= 0 && s <= 1 {
					best = t
					bestNormal = SafeNormalize(mPerp.Add(dPerp.Mul(t)), d.Mul(-1).Normalize())
				}
			}
		}
	}

	if best == INFINITY {
		return 0, mgl32.Vec3{}, false
	}
	return best, bestNormal, true
}
