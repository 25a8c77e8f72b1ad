package physics

import (
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshGeometry is the authoring input of a mesh collider. Filters and
// Materials are optional; when set they hold one entry per triangle.
type MeshGeometry struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]int
	Filters   []CollisionFilter
	Materials []Material
}

// NewMeshCollider builds a mesh collider where every triangle shares filter and material.
func NewMeshCollider(vertices []mgl32.Vec3, triangles [][3]int, filter CollisionFilter, material Material) (*MeshCollider, error) {
	return NewMeshColliderFromGeometry(MeshGeometry{Vertices: vertices, Triangles: triangles}, filter, material)
}

// NewMeshColliderFromGeometry builds a mesh collider. filter and material
// apply to triangles the geometry gives no filter or material for.
// Degenerate triangles are dropped.
func NewMeshColliderFromGeometry(geometry MeshGeometry, filter CollisionFilter, material Material) (*MeshCollider, error) {
	if n := len(geometry.Filters); n != 0 && n != len(geometry.Triangles) {
		return nil, fmt.Errorf("mesh has %d triangles but %d filters: %w", len(geometry.Triangles), n, ErrInvalidGeometry)
	}
	if n := len(geometry.Materials); n != 0 && n != len(geometry.Triangles) {
		return nil, fmt.Errorf("mesh has %d triangles but %d materials: %w", len(geometry.Triangles), n, ErrInvalidGeometry)
	}
	for _, v := range geometry.Vertices {
		if !VectorIsFinite(v) {
			return nil, fmt.Errorf("mesh vertex %v: %w", v, ErrInvalidGeometry)
		}
	}

	triangles := make([]meshTriangle, 0, len(geometry.Triangles))
	dropped := 0
	for i, tri := range geometry.Triangles {
		for _, index := range tri {
			if index < 0 || index >= len(geometry.Vertices) {
				return nil, fmt.Errorf("triangle %d vertex %d of %d: %w", i, index, len(geometry.Vertices), ErrInvalidIndex)
			}
		}
		t := meshTriangle{
			vertices: [3]mgl32.Vec3{geometry.Vertices[tri[0]], geometry.Vertices[tri[1]], geometry.Vertices[tri[2]]},
			filter:   filter,
			material: material,
		}
		if len(geometry.Filters) != 0 {
			t.filter = geometry.Filters[i]
		}
		if len(geometry.Materials) != 0 {
			t.material = geometry.Materials[i]
		}
		if t.isDegenerate() {
			dropped++
			continue
		}
		triangles = append(triangles, t)
	}
	if dropped > 0 {
		slog.Warn("mesh collider: dropped degenerate triangles", "dropped", dropped, "kept", len(triangles))
	}

	mesh := &MeshCollider{}
	mesh.collider = newCollider(ColliderTypeMesh, ZeroFilter, Material{}, mesh)
	mesh.mesh = buildMesh(pairTriangles(triangles))
	mesh.bounds = mesh.calculateAabb(NewTransformIdentity())
	mesh.collider.header.Filter = mesh.mesh.filterUnion()
	return mesh, nil
}

type meshTriangle struct {
	vertices [3]mgl32.Vec3
	filter   CollisionFilter
	material Material
}

func (t meshTriangle) normal() mgl32.Vec3 {
	v := t.vertices
	return v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
}

func (t meshTriangle) isDegenerate() bool {
	return t.normal().LenSqr() <= MAGIC_EPSILON*MAGIC_EPSILON
}

type meshPrimitive struct {
	vertices [4]mgl32.Vec3
	flags    MeshPrimitiveFlags
	filter   CollisionFilter
	material Material
}

// pairTriangles merges each triangle with the next one when they share an
// edge, producing triangle pairs, and quads when the pair is flat and convex.
func pairTriangles(triangles []meshTriangle) []meshPrimitive {
	primitives := make([]meshPrimitive, 0, len(triangles))
	for i := 0; i < len(triangles); i++ {
		t := triangles[i]
		if i+1 < len(triangles) {
			if p, ok := pairTriangle(t, triangles[i+1]); ok {
				primitives = append(primitives, p)
				i++
				continue
			}
		}
		v := t.vertices
		primitives = append(primitives, meshPrimitive{
			vertices: [4]mgl32.Vec3{v[0], v[1], v[2], v[2]},
			flags:    PrimitiveIsTriangle,
			filter:   t.filter,
			material: t.material,
		})
	}
	return primitives
}

// pairTriangle looks for a rotation of t1 as ABC and of t2 as ACD.
func pairTriangle(t1, t2 meshTriangle) (meshPrimitive, bool) {
	if t1.filter != t2.filter || t1.material != t2.material {
		return meshPrimitive{}, false
	}
	for r1 := 0; r1 < 3; r1++ {
		a, b, c := t1.vertices[r1], t1.vertices[(r1+1)%3], t1.vertices[(r1+2)%3]
		for r2 := 0; r2 < 3; r2++ {
			if t2.vertices[r2] != a || t2.vertices[(r2+1)%3] != c {
				continue
			}
			d := t2.vertices[(r2+2)%3]
			p := meshPrimitive{
				vertices: [4]mgl32.Vec3{a, b, c, d},
				flags:    PrimitiveIsTrianglePair,
				filter:   t1.filter,
				material: t1.material,
			}
			if isFlatConvexQuad(a, b, c, d) {
				p.flags = PrimitiveIsQuad
			}
			return p, true
		}
	}
	return meshPrimitive{}, false
}

func isFlatConvexQuad(a, b, c, d mgl32.Vec3) bool {
	n1 := b.Sub(a).Cross(c.Sub(a)).Normalize()
	n2 := c.Sub(a).Cross(d.Sub(a)).Normalize()
	if n1.Dot(n2) < 1-1e-4 {
		return false
	}
	quad := [4]mgl32.Vec3{a, b, c, d}
	for i := 0; i < 4; i++ {
		e0 := quad[(i+1)%4].Sub(quad[i])
		e1 := quad[(i+2)%4].Sub(quad[(i+1)%4])
		if e0.Cross(e1).Dot(n1) <= 0 {
			return false
		}
	}
	return math32.Abs(n1.Dot(d.Sub(a))) <= 1e-4*(1+d.Sub(a).Len())
}

// sectionBuilder fills one section, deduplicating vertices, filters and materials.
type sectionBuilder struct {
	section         meshSection
	vertexIndices   map[mgl32.Vec3]uint8
	filterIndices   map[CollisionFilter]int16
	materialIndices map[Material]int16
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{
		vertexIndices:   map[mgl32.Vec3]uint8{},
		filterIndices:   map[CollisionFilter]int16{},
		materialIndices: map[Material]int16{},
	}
}

func (b *sectionBuilder) fits(p meshPrimitive) bool {
	if len(b.section.primitiveFlags) >= maxSectionPrimitives {
		return false
	}
	added := 0
	for i, v := range p.vertices {
		if _, ok := b.vertexIndices[v]; ok {
			continue
		}
		seen := false
		for _, prev := range p.vertices[:i] {
			if prev == v {
				seen = true
				break
			}
		}
		if !seen {
			added++
		}
	}
	return len(b.section.vertices)+added <= maxSectionVertices
}

func (b *sectionBuilder) add(p meshPrimitive) {
	var indices [4]uint8
	for i, v := range p.vertices {
		index, ok := b.vertexIndices[v]
		if !ok {
			index = uint8(len(b.section.vertices))
			b.vertexIndices[v] = index
			b.section.vertices = append(b.section.vertices, v)
		}
		indices[i] = index
	}
	filterIndex, ok := b.filterIndices[p.filter]
	if !ok {
		filterIndex = int16(len(b.section.filters))
		b.filterIndices[p.filter] = filterIndex
		b.section.filters = append(b.section.filters, p.filter)
	}
	materialIndex, ok := b.materialIndices[p.material]
	if !ok {
		materialIndex = int16(len(b.section.materials))
		b.materialIndices[p.material] = materialIndex
		b.section.materials = append(b.section.materials, p.material)
	}

	s := &b.section
	s.primitiveFlags = append(s.primitiveFlags, p.flags)
	s.primitiveVertexIndices = append(s.primitiveVertexIndices, primitiveVertexIndices{indices[0], indices[1], indices[2], indices[3]})
	s.primitiveFilterIndices = append(s.primitiveFilterIndices, filterIndex)
	s.primitiveMaterialIndices = append(s.primitiveMaterialIndices, materialIndex)
}

func buildMesh(primitives []meshPrimitive) Mesh {
	var mesh Mesh
	var builder *sectionBuilder
	for _, p := range primitives {
		if builder == nil || !builder.fits(p) {
			if builder != nil {
				mesh.sections = append(mesh.sections, builder.section)
			}
			builder = newSectionBuilder()
		}
		builder.add(p)
	}
	if builder != nil {
		mesh.sections = append(mesh.sections, builder.section)
	}

	var aabbs []Aabb
	for sectionIndex := range mesh.sections {
		for primitiveIndex := range mesh.sections[sectionIndex].primitiveFlags {
			primitiveKey := sectionIndex<<8 | primitiveIndex
			vertices, _, _, _ := mesh.GetPrimitive(primitiveKey)
			mesh.primitiveKeys = append(mesh.primitiveKeys, primitiveKey)
			aabbs = append(aabbs, NewAabbForPoints(vertices[:]...))
		}
	}
	mesh.tree = BuildBoundingVolumeHierarchy(aabbs)
	return mesh
}

func (m *Mesh) filterUnion() CollisionFilter {
	filter := ZeroFilter
	first := true
	for i := range m.sections {
		for _, f := range m.sections[i].filters {
			if first {
				filter, first = f, false
			} else {
				filter = CreateFilterUnion(filter, f)
			}
		}
	}
	return filter
}
