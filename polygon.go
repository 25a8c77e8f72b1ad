package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PolygonCollider is a flat triangle or quad with no thickness. Mesh
// colliders synthesize these on the fly for their primitives.
type PolygonCollider struct {
	collider    Collider
	vertices    [4]mgl32.Vec3
	numVertices int
	normal      mgl32.Vec3
	edgePlanes  [6]Plane
}

func NewTriangleCollider(a, b, c mgl32.Vec3, filter CollisionFilter, material Material) (*PolygonCollider, error) {
	if err := validatePolygon(a, b, c); err != nil {
		return nil, err
	}
	p := &PolygonCollider{}
	p.InitAsTriangle(a, b, c, filter, material)
	return p, nil
}

func NewQuadCollider(a, b, c, d mgl32.Vec3, filter CollisionFilter, material Material) (*PolygonCollider, error) {
	if err := validatePolygon(a, b, c, d); err != nil {
		return nil, err
	}
	if n := b.Sub(a).Cross(c.Sub(a)).Normalize(); math32.Abs(n.Dot(d.Sub(a))) > 1e-4*(1+d.Sub(a).Len()) {
		return nil, fmt.Errorf("quad vertices are not coplanar: %w", ErrInvalidGeometry)
	}
	p := &PolygonCollider{}
	p.InitAsQuad(a, b, c, d, filter, material)
	return p, nil
}

func validatePolygon(vertices ...mgl32.Vec3) error {
	for _, v := range vertices {
		if !VectorIsFinite(v) {
			return fmt.Errorf("polygon vertex %v: %w", v, ErrInvalidGeometry)
		}
	}
	if vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0])).LenSqr() <= MAGIC_EPSILON*MAGIC_EPSILON {
		return fmt.Errorf("polygon has no area: %w", ErrInvalidGeometry)
	}
	return nil
}

func (p *PolygonCollider) InitAsTriangle(a, b, c mgl32.Vec3, filter CollisionFilter, material Material) {
	p.collider = newCollider(ColliderTypeTriangle, filter, material, p)
	p.setVertices(a, b, c, c, 3)
}

func (p *PolygonCollider) InitAsQuad(a, b, c, d mgl32.Vec3, filter CollisionFilter, material Material) {
	p.collider = newCollider(ColliderTypeQuad, filter, material, p)
	p.setVertices(a, b, c, d, 4)
}

// SetAsTriangle replaces the vertices and turns the polygon into a triangle,
// keeping its filter and material.
func (p *PolygonCollider) SetAsTriangle(a, b, c mgl32.Vec3) {
	p.collider.header.Type = ColliderTypeTriangle
	p.setVertices(a, b, c, c, 3)
	p.collider.bumpVersion()
}

func (p *PolygonCollider) SetAsQuad(a, b, c, d mgl32.Vec3) {
	p.collider.header.Type = ColliderTypeQuad
	p.setVertices(a, b, c, d, 4)
	p.collider.bumpVersion()
}

func (p *PolygonCollider) setVertices(a, b, c, d mgl32.Vec3, n int) {
	p.vertices = [4]mgl32.Vec3{a, b, c, d}
	p.numVertices = n
	p.normal = SafeNormalize(b.Sub(a).Cross(c.Sub(a)), vectorUp)

	p.edgePlanes[0] = NewPlane(p.normal, a)
	p.edgePlanes[1] = p.edgePlanes[0].Flipped()
	for i := 0; i < n; i++ {
		v0 := p.vertices[i]
		v1 := p.vertices[(i+1)%n]
		edgeNormal := SafeNormalize(v1.Sub(v0).Cross(p.normal), vectorZero)
		p.edgePlanes[2+i] = NewPlane(edgeNormal, v0)
	}
}

func (p *PolygonCollider) AsCollider() *Collider {
	p.collider.impl = p
	return &p.collider
}

func (p *PolygonCollider) IsTriangle() bool {
	return p.numVertices == 3
}

func (p *PolygonCollider) IsQuad() bool {
	return p.numVertices == 4
}

func (p *PolygonCollider) Vertices() []mgl32.Vec3 {
	return p.vertices[:p.numVertices]
}

func (p *PolygonCollider) Normal() mgl32.Vec3 {
	return p.normal
}

func (p *PolygonCollider) Filter() CollisionFilter {
	return p.collider.header.Filter
}

func (p *PolygonCollider) Material() Material {
	return p.collider.material
}

func (p *PolygonCollider) core() convexCore {
	return convexCore{vertices: p.vertices[:p.numVertices]}
}

func (p *PolygonCollider) planes() []Plane {
	return p.edgePlanes[:2+p.numVertices]
}

func (p *PolygonCollider) memorySize() int {
	return baseMemorySize(p)
}

// Polygons have no volume. They get the mass properties of a thin shell.
func (p *PolygonCollider) massProperties() MassProperties {
	verts := p.Vertices()
	var center mgl32.Vec3
	for _, v := range verts {
		center = center.Add(v)
	}
	center = center.Mul(1 / float32(len(verts)))

	var expansion float32
	for _, v := range verts {
		expansion = math32.Max(expansion, v.Sub(center).Len())
	}
	i := expansion * expansion / 3
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     NewTransformTranslate(center),
			InertiaTensor: mgl32.Vec3{i, i, i},
		},
		Volume:                 0,
		AngularExpansionFactor: expansion,
	}
}

func (p *PolygonCollider) aabb(t RigidTransform) Aabb {
	aabb := EmptyAabb()
	for _, v := range p.Vertices() {
		aabb = aabb.Include(t.Point(v))
	}
	return aabb
}

// castRayLocal hits either side of the polygon. The normal faces the ray.
func (p *PolygonCollider) castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	d := end.Sub(start)
	denom := p.normal.Dot(d)
	if math32.Abs(denom) <= MAGIC_EPSILON {
		return 0, mgl32.Vec3{}, false
	}
	t := -p.edgePlanes[0].SignedDistance(start) / denom
	if t < 0 || t > 1 {
		return 0, mgl32.Vec3{}, false
	}
	hit := start.Add(d.Mul(t))
	for i := 0; i < p.numVertices; i++ {
		if p.edgePlanes[2+i].SignedDistance(hit) > MAGIC_EPSILON {
			return 0, mgl32.Vec3{}, false
		}
	}
	normal := p.normal
	if denom > 0 {
		normal = normal.Mul(-1)
	}
	return t, normal, true
}

func (p *PolygonCollider) distanceToPoint(point mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	v := p.vertices
	closest, _ := ClosestPointOnTriangle(point, v[0], v[1], v[2])
	if p.numVertices == 4 {
		if q, _ := ClosestPointOnTriangle(point, v[0], v[2], v[3]); point.Sub(q).LenSqr() < point.Sub(closest).LenSqr() {
			closest = q
		}
	}
	delta := point.Sub(closest)
	fallback := p.normal
	if p.edgePlanes[0].SignedDistance(point) < 0 {
		fallback = fallback.Mul(-1)
	}
	return delta.Len(), closest, SafeNormalize(delta, fallback)
}
