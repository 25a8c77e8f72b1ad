package physics

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxConvexVertices bounds the input of NewConvexCollider.
const MaxConvexVertices = 252

type ConvexHullGenerationParameters struct {
	// BevelRadius inflates the hull by this much on every side.
	BevelRadius float32
	// SimplificationTolerance is the distance under which points count as
	// lying on the same face. Zero selects a default.
	SimplificationTolerance float32
}

var DefaultConvexHullGenerationParameters = ConvexHullGenerationParameters{
	SimplificationTolerance: 0.001,
}

// hullFace is one face of a convex hull with its vertices wound counter
// clockwise around the plane normal.
type hullFace struct {
	plane    Plane
	vertices []int
}

// ConvexCollider is the convex hull of a point cloud, optionally rounded by a bevel radius.
type ConvexCollider struct {
	collider Collider
	params   ConvexHullGenerationParameters
	vertices []mgl32.Vec3
	faces    []hullFace
	// facePlanes are the face planes pushed out by the bevel radius.
	facePlanes []Plane
	mass       MassProperties
}

func NewConvexCollider(points []mgl32.Vec3, params ConvexHullGenerationParameters, filter CollisionFilter, material Material) (*ConvexCollider, error) {
	if len(points) > MaxConvexVertices {
		return nil, fmt.Errorf("convex hull with %d points, limit %d: %w", len(points), MaxConvexVertices, ErrTooManyVertices)
	}
	if params.BevelRadius < 0 || math32.IsNaN(params.BevelRadius) {
		return nil, fmt.Errorf("bevel radius %v: %w", params.BevelRadius, ErrInvalidGeometry)
	}
	if params.SimplificationTolerance <= 0 {
		params.SimplificationTolerance = DefaultConvexHullGenerationParameters.SimplificationTolerance
	}
	for _, p := range points {
		if !VectorIsFinite(p) {
			return nil, fmt.Errorf("convex point %v: %w", p, ErrInvalidGeometry)
		}
	}

	vertices, faces, err := buildHull(points, params.SimplificationTolerance)
	if err != nil {
		return nil, err
	}

	convex := &ConvexCollider{params: params, vertices: vertices, faces: faces}
	convex.collider = newCollider(ColliderTypeConvex, filter, material, convex)
	convex.facePlanes = make([]Plane, len(faces))
	for i, f := range faces {
		convex.facePlanes[i] = Plane{f.plane.Normal, f.plane.Distance - params.BevelRadius}
	}
	convex.mass = convex.computeMassProperties()
	return convex, nil
}

func (c *ConvexCollider) AsCollider() *Collider {
	c.collider.impl = c
	return &c.collider
}

// Vertices are the hull vertices, without the bevel.
func (c *ConvexCollider) Vertices() []mgl32.Vec3 {
	return c.vertices
}

func (c *ConvexCollider) NumFaces() int {
	return len(c.faces)
}

func (c *ConvexCollider) BevelRadius() float32 {
	return c.params.BevelRadius
}

func (c *ConvexCollider) core() convexCore {
	return convexCore{vertices: c.vertices, radius: c.params.BevelRadius}
}

func (c *ConvexCollider) planes() []Plane {
	return c.facePlanes
}

func (c *ConvexCollider) memorySize() int {
	size := baseMemorySize(c)
	size += len(c.vertices) * baseMemorySize(&mgl32.Vec3{})
	size += len(c.facePlanes) * baseMemorySize(&Plane{})
	for _, f := range c.faces {
		size += baseMemorySize(&f) + len(f.vertices)*8
	}
	return size
}

func (c *ConvexCollider) massProperties() MassProperties {
	return c.mass
}

func (c *ConvexCollider) aabb(t RigidTransform) Aabb {
	aabb := EmptyAabb()
	for _, v := range c.vertices {
		aabb = aabb.Include(t.Point(v))
	}
	return aabb.Expand(c.params.BevelRadius)
}

// castRayLocal clips the ray against the face planes. Rays starting inside miss.
func (c *ConvexCollider) castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	d := end.Sub(start)
	tEnter := float32(-1)
	tExit := float32(1)
	var normal mgl32.Vec3
	inside := true
	for _, plane := range c.facePlanes {
		dist := plane.SignedDistance(start)
		if dist > 0 {
			inside = false
		}
		denom := plane.Normal.Dot(d)
		if denom == 0 {
			if dist > 0 {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t := -dist / denom
		if denom < 0 {
			if t > tEnter {
				tEnter = t
				normal = plane.Normal
			}
		} else if t < tExit {
			tExit = t
		}
		if tEnter > tExit {
			return 0, mgl32.Vec3{}, false
		}
	}
	if inside || tEnter < 0 || tEnter > 1 {
		return 0, mgl32.Vec3{}, false
	}
	return tEnter, normal, true
}

func (c *ConvexCollider) distanceToPoint(p mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	point := convexCore{vertices: []mgl32.Vec3{p}}
	result := gjkDistance(point, leafCore(c), NewTransformIdentity())
	return result.distance, result.pointB, result.normal
}

func (c *ConvexCollider) computeMassProperties() MassProperties {
	var reference mgl32.Vec3
	for _, v := range c.vertices {
		reference = reference.Add(v)
	}
	reference = reference.Mul(1 / float32(len(c.vertices)))

	var volume float32
	var centroid mgl32.Vec3
	for _, f := range c.faces {
		a := c.vertices[f.vertices[0]]
		for i := 1; i+1 < len(f.vertices); i++ {
			b := c.vertices[f.vertices[i]]
			d := c.vertices[f.vertices[i+1]]
			tetVolume := a.Sub(reference).Dot(b.Sub(reference).Cross(d.Sub(reference))) / 6
			volume += tetVolume
			centroid = centroid.Add(reference.Add(a).Add(b).Add(d).Mul(tetVolume / 4))
		}
	}
	if volume <= MAGIC_EPSILON {
		centroid = reference
	} else {
		centroid = centroid.Mul(1 / volume)
	}

	bounds := NewAabbForPoints(c.vertices...).Expand(c.params.BevelRadius)
	var expansion float32
	for _, v := range c.vertices {
		expansion = math32.Max(expansion, v.Sub(centroid).Len())
	}
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     NewTransformTranslate(centroid),
			InertiaTensor: boxInertia(bounds.Extents()),
		},
		Volume:                 volume,
		AngularExpansionFactor: expansion,
	}
}

// buildHull finds the faces of the convex hull of points by testing every
// candidate plane through three points. Hull inputs are small so the brute
// force search is affordable and exact about coplanar points.
func buildHull(points []mgl32.Vec3, tolerance float32) ([]mgl32.Vec3, []hullFace, error) {
	unique := make([]mgl32.Vec3, 0, len(points))
	for _, p := range points {
		duplicate := false
		for _, u := range unique {
			if p.Sub(u).LenSqr() <= tolerance*tolerance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, p)
		}
	}
	if len(unique) < 4 {
		return nil, nil, fmt.Errorf("convex hull needs 4 distinct points, got %d: %w", len(unique), ErrInvalidGeometry)
	}

	var planes []Plane
	n := len(unique)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				normal := unique[j].Sub(unique[i]).Cross(unique[k].Sub(unique[i]))
				if normal.LenSqr() <= MAGIC_EPSILON*MAGIC_EPSILON {
					continue
				}
				plane := NewPlane(normal.Normalize(), unique[i])
				above, below := false, false
				for _, p := range unique {
					d := plane.SignedDistance(p)
					if d > tolerance {
						above = true
					} else if d < -tolerance {
						below = true
					}
					if above && below {
						break
					}
				}
				switch {
				case above && below:
					continue
				case above:
					plane = plane.Flipped()
				case !below:
					return nil, nil, fmt.Errorf("convex hull points are coplanar: %w", ErrInvalidGeometry)
				}
				if !containsPlane(planes, plane, tolerance) {
					planes = append(planes, plane)
				}
			}
		}
	}

	// Keep only points that lie on a face, then wind each face.
	onHull := make([]int, n)
	for i := range onHull {
		onHull[i] = -1
	}
	var vertices []mgl32.Vec3
	faces := make([]hullFace, 0, len(planes))
	for _, plane := range planes {
		face := hullFace{plane: plane}
		for i, p := range unique {
			if math32.Abs(plane.SignedDistance(p)) <= tolerance {
				if onHull[i] < 0 {
					onHull[i] = len(vertices)
					vertices = append(vertices, p)
				}
				face.vertices = append(face.vertices, onHull[i])
			}
		}
		faces = append(faces, face)
	}
	for i := range faces {
		windFace(vertices, &faces[i])
	}
	return vertices, faces, nil
}

func containsPlane(planes []Plane, plane Plane, tolerance float32) bool {
	for _, p := range planes {
		if p.Normal.Dot(plane.Normal) > 1-1e-4 && math32.Abs(p.Distance-plane.Distance) <= tolerance {
			return true
		}
	}
	return false
}

// windFace sorts the face vertices counter clockwise around the face normal.
func windFace(vertices []mgl32.Vec3, face *hullFace) {
	var center mgl32.Vec3
	for _, i := range face.vertices {
		center = center.Add(vertices[i])
	}
	center = center.Mul(1 / float32(len(face.vertices)))
	u, v := OrthonormalBasis(face.plane.Normal)
	angle := func(i int) float32 {
		d := vertices[i].Sub(center)
		return math32.Atan2(d.Dot(v), d.Dot(u))
	}
	sort.Slice(face.vertices, func(a, b int) bool {
		return angle(face.vertices[a]) < angle(face.vertices[b])
	})
}
