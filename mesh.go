package physics

import (
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshPrimitiveFlags describe how a primitive's four vertex slots are used.
type MeshPrimitiveFlags uint8

const (
	// PrimitiveIsTriangle stores a single triangle ABC.
	PrimitiveIsTriangle MeshPrimitiveFlags = 1 << iota
	// PrimitiveIsTrianglePair stores triangles ABC and ACD.
	PrimitiveIsTrianglePair
	// PrimitiveIsQuad stores a planar convex quad ABCD.
	PrimitiveIsQuad
)

const (
	maxSectionVertices = 256
	// Primitive index 255 is never used, so the last polygon of a section
	// can't produce an all ones key that reads as ColliderKeyEmpty.
	maxSectionPrimitives = 255
)

func NumPolygonsInPrimitive(flags MeshPrimitiveFlags) int {
	if flags == PrimitiveIsTrianglePair {
		return 2
	}
	return 1
}

type primitiveVertexIndices struct {
	A, B, C, D uint8
}

// meshSection holds up to 255 primitives over up to 256 vertices, so that
// vertex indices fit in a byte.
type meshSection struct {
	primitiveFlags           []MeshPrimitiveFlags
	primitiveVertexIndices   []primitiveVertexIndices
	vertices                 []mgl32.Vec3
	primitiveFilterIndices   []int16
	filters                  []CollisionFilter
	primitiveMaterialIndices []int16
	materials                []Material
}

// Mesh is the polygon soup of a MeshCollider. A mesh key is
// section<<9 | primitive<<1 | polygon, a primitive key drops the polygon bit.
type Mesh struct {
	sections []meshSection
	// tree indexes primitiveKeys.
	tree          *BoundingVolumeHierarchy
	primitiveKeys []int
}

// NumColliderKeyBits is the width of a mesh key for this mesh.
func (m *Mesh) NumColliderKeyBits() int {
	if len(m.sections) == 0 {
		return 8 + 1
	}
	return bits.Len32(uint32(len(m.sections)-1)) + 8 + 1
}

func (m *Mesh) NumSections() int {
	return len(m.sections)
}

func (m *Mesh) NumPrimitives() int {
	return len(m.primitiveKeys)
}

func splitPrimitiveKey(primitiveKey int) (int, int) {
	return primitiveKey >> 8, primitiveKey & 0xff
}

func splitMeshKey(meshKey uint32) (int, int) {
	return int(meshKey >> 1), int(meshKey & 1)
}

// validMeshKey checks that the key names an existing polygon.
func (m *Mesh) validMeshKey(meshKey uint32) bool {
	primitiveKey, polygonIndex := splitMeshKey(meshKey)
	sectionIndex, primitiveIndex := splitPrimitiveKey(primitiveKey)
	if sectionIndex >= len(m.sections) {
		return false
	}
	section := &m.sections[sectionIndex]
	if primitiveIndex >= len(section.primitiveFlags) {
		return false
	}
	return polygonIndex < NumPolygonsInPrimitive(section.primitiveFlags[primitiveIndex])
}

func (m *Mesh) GetPrimitiveFlags(primitiveKey int) MeshPrimitiveFlags {
	sectionIndex, primitiveIndex := splitPrimitiveKey(primitiveKey)
	return m.sections[sectionIndex].primitiveFlags[primitiveIndex]
}

// GetPrimitive returns the four vertex slots of a primitive with its flags, filter and material.
func (m *Mesh) GetPrimitive(primitiveKey int) ([4]mgl32.Vec3, MeshPrimitiveFlags, CollisionFilter, Material) {
	sectionIndex, primitiveIndex := splitPrimitiveKey(primitiveKey)
	section := &m.sections[sectionIndex]
	indices := section.primitiveVertexIndices[primitiveIndex]
	vertices := [4]mgl32.Vec3{
		section.vertices[indices.A],
		section.vertices[indices.B],
		section.vertices[indices.C],
		section.vertices[indices.D],
	}
	filter := section.filters[section.primitiveFilterIndices[primitiveIndex]]
	material := section.materials[section.primitiveMaterialIndices[primitiveIndex]]
	return vertices, section.primitiveFlags[primitiveIndex], filter, material
}

// GetPolygon loads the polygon named by meshKey into polygon. It returns
// false when the polygon's filter does not collide with filter.
func (m *Mesh) GetPolygon(meshKey uint32, filter CollisionFilter, polygon *PolygonCollider) bool {
	primitiveKey, polygonIndex := splitMeshKey(meshKey)
	vertices, flags, polygonFilter, material := m.GetPrimitive(primitiveKey)
	if !IsCollisionEnabled(filter, polygonFilter) {
		return false
	}
	setPolygon(polygon, vertices, flags, polygonIndex, polygonFilter, material)
	return true
}

func setPolygon(polygon *PolygonCollider, v [4]mgl32.Vec3, flags MeshPrimitiveFlags, polygonIndex int, filter CollisionFilter, material Material) {
	if flags&PrimitiveIsQuad != 0 {
		polygon.InitAsQuad(v[0], v[1], v[2], v[3], filter, material)
	} else {
		polygon.InitAsTriangle(v[0], v[1+polygonIndex], v[2+polygonIndex], filter, material)
	}
}

func (m *Mesh) GetFirstPolygon(polygon *PolygonCollider) (uint32, bool) {
	if len(m.sections) == 0 || len(m.sections[0].primitiveFlags) == 0 {
		return ColliderKeyEmpty.Value, false
	}
	vertices, flags, filter, material := m.GetPrimitive(0)
	setPolygon(polygon, vertices, flags, 0, filter, material)
	return 0, true
}

// GetNextPolygon advances to the polygon after previousMeshKey.
func (m *Mesh) GetNextPolygon(previousMeshKey uint32, polygon *PolygonCollider) (uint32, bool) {
	primitiveKey, polygonIndex := splitMeshKey(previousMeshKey)
	sectionIndex, primitiveIndex := splitPrimitiveKey(primitiveKey)

	section := &m.sections[sectionIndex]
	if polygonIndex == 0 && section.primitiveFlags[primitiveIndex] == PrimitiveIsTrianglePair {
		polygonIndex = 1
	} else {
		polygonIndex = 0
		primitiveIndex++
		if primitiveIndex == len(section.primitiveFlags) {
			primitiveIndex = 0
			sectionIndex++
		}
	}
	if sectionIndex >= len(m.sections) {
		return ColliderKeyEmpty.Value, false
	}

	meshKey := uint32(sectionIndex<<9 | primitiveIndex<<1 | polygonIndex)
	vertices, flags, filter, material := m.GetPrimitive(sectionIndex<<8 | primitiveIndex)
	setPolygon(polygon, vertices, flags, polygonIndex, filter, material)
	return meshKey, true
}

// forEachPolygon calls f for every polygon of a primitive that collides with
// filter. It stops and returns false as soon as f does.
func (m *Mesh) forEachPolygon(primitiveKey int, filter CollisionFilter, f func(meshKey uint32, polygon *PolygonCollider) bool) bool {
	vertices, flags, polygonFilter, material := m.GetPrimitive(primitiveKey)
	if !IsCollisionEnabled(filter, polygonFilter) {
		return true
	}
	var polygon PolygonCollider
	for polygonIndex := 0; polygonIndex < NumPolygonsInPrimitive(flags); polygonIndex++ {
		setPolygon(&polygon, vertices, flags, polygonIndex, polygonFilter, material)
		if !f(uint32(primitiveKey<<1|polygonIndex), &polygon) {
			return false
		}
	}
	return true
}

// MeshCollider is a static triangle soup addressed by mesh keys.
type MeshCollider struct {
	collider Collider
	mesh     Mesh
	bounds   Aabb
}

func (m *MeshCollider) AsCollider() *Collider {
	m.collider.impl = m
	return &m.collider
}

func (m *MeshCollider) Mesh() *Mesh {
	return &m.mesh
}

func (m *MeshCollider) NumColliderKeyBits() int {
	return m.mesh.NumColliderKeyBits()
}

// GetChild pops a mesh key and synthesizes the polygon it names. Keys that
// name a missing polygon leave key untouched.
func (m *MeshCollider) GetChild(key *ColliderKey) (ChildCollider, bool) {
	original := *key
	meshKey, ok := key.PopSubKey(m.NumColliderKeyBits())
	if !ok {
		return ChildCollider{}, false
	}
	if !m.mesh.validMeshKey(meshKey) {
		*key = original
		return ChildCollider{}, false
	}
	return m.childPolygon(meshKey), true
}

func (m *MeshCollider) childPolygon(meshKey uint32) ChildCollider {
	primitiveKey, polygonIndex := splitMeshKey(meshKey)
	v, flags, filter, material := m.mesh.GetPrimitive(primitiveKey)
	if flags&PrimitiveIsQuad != 0 {
		return NewQuadChildCollider(v[0], v[1], v[2], v[3], filter, material)
	}
	return NewTriangleChildCollider(v[0], v[1+polygonIndex], v[2+polygonIndex], filter, material)
}

func (m *MeshCollider) GetLeaves(collector LeafColliderCollector) {
	numBits := m.NumColliderKeyBits()
	var polygon PolygonCollider
	for meshKey, ok := m.mesh.GetFirstPolygon(&polygon); ok; meshKey, ok = m.mesh.GetNextPolygon(meshKey, &polygon) {
		leaf := ChildCollider{polygon: polygon, TransformFromChild: NewTransformIdentity()}
		collector.AddLeaf(NewColliderKey(numBits, meshKey), &leaf)
	}
}

func (m *MeshCollider) calculateAabb(t RigidTransform) Aabb {
	aabb := EmptyAabb()
	for i := range m.mesh.sections {
		for _, v := range m.mesh.sections[i].vertices {
			aabb = aabb.Include(t.Point(v))
		}
	}
	return aabb
}

func (m *MeshCollider) memorySize() int {
	size := baseMemorySize(m)
	for i := range m.mesh.sections {
		s := &m.mesh.sections[i]
		size += baseMemorySize(s)
		size += len(s.primitiveFlags)
		size += len(s.primitiveVertexIndices) * baseMemorySize(&primitiveVertexIndices{})
		size += len(s.vertices) * baseMemorySize(&mgl32.Vec3{})
		size += len(s.primitiveFilterIndices) * 2
		size += len(s.filters) * baseMemorySize(&CollisionFilter{})
		size += len(s.primitiveMaterialIndices) * 2
		size += len(s.materials) * baseMemorySize(&Material{})
	}
	size += len(m.mesh.primitiveKeys) * (8 + 2*baseMemorySize(&Node{}))
	return size
}

// Meshes are surfaces, so their mass properties approximate a box filling the bounds.
func (m *MeshCollider) massProperties() MassProperties {
	if m.bounds.IsEmpty() {
		return UnitSphereMassProperties
	}
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     NewTransformTranslate(m.bounds.Center()),
			InertiaTensor: boxInertia(m.bounds.Extents()),
		},
		Volume:                 0,
		AngularExpansionFactor: m.bounds.Extents().Len() * 0.5,
	}
}
