package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type SphereGeometry struct {
	Center mgl32.Vec3
	Radius float32
}

func (g SphereGeometry) Validate() error {
	if !VectorIsFinite(g.Center) {
		return fmt.Errorf("sphere center %v: %w", g.Center, ErrInvalidGeometry)
	}
	if !(g.Radius >= 0) || math32.IsInf(g.Radius, 0) {
		return fmt.Errorf("sphere radius %v: %w", g.Radius, ErrInvalidGeometry)
	}
	return nil
}

type SphereCollider struct {
	collider Collider
	geometry SphereGeometry
}

func NewSphereCollider(geometry SphereGeometry, filter CollisionFilter, material Material) (*SphereCollider, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	sphere := &SphereCollider{geometry: geometry}
	sphere.collider = newCollider(ColliderTypeSphere, filter, material, sphere)
	return sphere, nil
}

func (s *SphereCollider) AsCollider() *Collider {
	s.collider.impl = s
	return &s.collider
}

func (s *SphereCollider) Geometry() SphereGeometry {
	return s.geometry
}

func (s *SphereCollider) SetGeometry(geometry SphereGeometry) error {
	if err := geometry.Validate(); err != nil {
		return err
	}
	s.geometry = geometry
	s.collider.bumpVersion()
	return nil
}

func (s *SphereCollider) Center() mgl32.Vec3 {
	return s.geometry.Center
}

func (s *SphereCollider) Radius() float32 {
	return s.geometry.Radius
}

func (s *SphereCollider) core() convexCore {
	return convexCore{vertices: []mgl32.Vec3{s.geometry.Center}, radius: s.geometry.Radius}
}

func (s *SphereCollider) planes() []Plane {
	return nil
}

func (s *SphereCollider) memorySize() int {
	return baseMemorySize(s)
}

func (s *SphereCollider) massProperties() MassProperties {
	r := s.geometry.Radius
	i := 0.4 * r * r
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     NewTransformTranslate(s.geometry.Center),
			InertiaTensor: mgl32.Vec3{i, i, i},
		},
		Volume:                 4.0 / 3.0 * math32.Pi * r * r * r,
		AngularExpansionFactor: 0,
	}
}

func (s *SphereCollider) aabb(t RigidTransform) Aabb {
	return NewAabbForSphere(t.Point(s.geometry.Center), s.geometry.Radius)
}

func (s *SphereCollider) castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	return raySphere(start, end, s.geometry.Center, s.geometry.Radius)
}

func (s *SphereCollider) distanceToPoint(p mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	delta := p.Sub(s.geometry.Center)
	length := delta.Len()
	normal := SafeNormalize(delta, vectorUp)
	return length - s.geometry.Radius, s.geometry.Center.Add(normal.Mul(s.geometry.Radius)), normal
}

// raySphere hits the sphere from outside only. Rays starting inside miss.
func raySphere(start, end, center mgl32.Vec3, radius float32) (float32, mgl32.Vec3, bool) {
	d := end.Sub(start)
	m := start.Sub(center)
	c := m.Dot(m) - radius*radius
	if c <= 0 {
		return 0, mgl32.Vec3{}, false
	}
	a := d.Dot(d)
	b := m.Dot(d)
	if b >= 0 || a == 0 {
		return 0, mgl32.Vec3{}, false
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	t := (-b - math32.Sqrt(disc)) / a
	if t < 0 || t > 1 {
		return 0, mgl32.Vec3{}, false
	}
	hit := start.Add(d.Mul(t))
	return t, SafeNormalize(hit.Sub(center), d.Mul(-1).Normalize()), true
}
