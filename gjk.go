package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxGJKIterations bounds the closest point search between two convex shapes.
	MaxGJKIterations = 64
	// DistanceTolerance is the precision of distance and cast queries.
	DistanceTolerance = 1e-4
)

// convexCore is a convex point set that is inflated by radius to give the
// actual shape. planes carries face normals used as separating axis
// candidates when two cores overlap.
type convexCore struct {
	vertices []mgl32.Vec3
	radius   float32
	planes   []Plane
}

func leafCore(s convexShape) convexCore {
	core := s.core()
	core.planes = s.planes()
	return core
}

func (c convexCore) support(dir mgl32.Vec3) mgl32.Vec3 {
	best := c.vertices[0]
	bestDot := best.Dot(dir)
	for _, v := range c.vertices[1:] {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

func (c convexCore) centroid() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, v := range c.vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float32(len(c.vertices)))
}

// placedCore is a core seen from another frame.
type placedCore struct {
	core      convexCore
	transform RigidTransform
}

func (p placedCore) support(dir mgl32.Vec3) mgl32.Vec3 {
	return p.transform.Point(p.core.support(p.transform.InverseVect(dir)))
}

type gjkResult struct {
	// distance between the inflated shapes, negative when they overlap.
	distance float32
	// pointA and pointB are the closest surface points.
	pointA, pointB mgl32.Vec3
	// normal points from B towards A.
	normal mgl32.Vec3
	// overlap is set when the cores intersect and distance is a separating axis estimate.
	overlap bool
}

type simplexVertex struct {
	w, a, b mgl32.Vec3
}

type simplex struct {
	verts [4]simplexVertex
	bary  [4]float32
	n     int
}

func (s *simplex) contains(w mgl32.Vec3) bool {
	for i := 0; i < s.n; i++ {
		if s.verts[i].w.Sub(w).LenSqr() <= DistanceTolerance*DistanceTolerance*1e-2 {
			return true
		}
	}
	return false
}

// solve finds the point of the simplex closest to the origin, drops the
// vertices that do not support it and returns it. It reports true when the
// origin is inside the simplex.
func (s *simplex) solve() (mgl32.Vec3, bool) {
	switch s.n {
	case 1:
		s.bary[0] = 1
	case 2:
		w0, w1 := s.verts[0].w, s.verts[1].w
		delta := w1.Sub(w0)
		lengthSq := delta.LenSqr()
		t := float32(0)
		if lengthSq > 0 {
			t = Clamp01(-w0.Dot(delta) / lengthSq)
		}
		s.bary[0], s.bary[1] = 1-t, t
	case 3:
		_, bary := ClosestPointOnTriangle(vectorZero, s.verts[0].w, s.verts[1].w, s.verts[2].w)
		s.bary[0], s.bary[1], s.bary[2] = bary[0], bary[1], bary[2]
	case 4:
		if inside := s.solveTetrahedron(); inside {
			return vectorZero, true
		}
	}
	s.compact()

	var v mgl32.Vec3
	for i := 0; i < s.n; i++ {
		v = v.Add(s.verts[i].w.Mul(s.bary[i]))
	}
	return v, false
}

var tetrahedronFaces = [4][4]int{{0, 1, 2, 3}, {0, 1, 3, 2}, {0, 2, 3, 1}, {1, 2, 3, 0}}

func (s *simplex) solveTetrahedron() bool {
	bestDist := INFINITY
	bestFace := -1
	var bestBary mgl32.Vec3
	for f, face := range tetrahedronFaces {
		a, b, c, d := s.verts[face[0]].w, s.verts[face[1]].w, s.verts[face[2]].w, s.verts[face[3]].w
		n := b.Sub(a).Cross(c.Sub(a))
		signOrigin := -a.Dot(n)
		signOpposite := d.Sub(a).Dot(n)
		if signOrigin*signOpposite > 0 && math32.Abs(signOpposite) > MAGIC_EPSILON*MAGIC_EPSILON {
			continue
		}
		q, bary := ClosestPointOnTriangle(vectorZero, a, b, c)
		if dist := q.LenSqr(); dist < bestDist {
			bestDist, bestFace, bestBary = dist, f, bary
		}
	}
	if bestFace < 0 {
		return true
	}
	face := tetrahedronFaces[bestFace]
	verts := [3]simplexVertex{s.verts[face[0]], s.verts[face[1]], s.verts[face[2]]}
	s.n = 3
	for i := 0; i < 3; i++ {
		s.verts[i] = verts[i]
		s.bary[i] = bestBary[i]
	}
	return false
}

func (s *simplex) compact() {
	n := 0
	for i := 0; i < s.n; i++ {
		if s.bary[i] > 0 {
			s.verts[n] = s.verts[i]
			s.bary[n] = s.bary[i]
			n++
		}
	}
	if n == 0 {
		n = 1
		s.bary[0] = 1
	}
	s.n = n
}

// gjkDistance measures the distance between a and b, where b is placed in
// a's space by aFromB. All results are in a's space.
func gjkDistance(a, b convexCore, aFromB RigidTransform) gjkResult {
	pb := placedCore{b, aFromB}

	var s simplex
	a0, b0 := a.vertices[0], pb.transform.Point(b.vertices[0])
	v := a0.Sub(b0)
	s.verts[0] = simplexVertex{v, a0, b0}
	s.bary[0] = 1
	s.n = 1
	overlap := false
	for iter := 0; iter < MaxGJKIterations; iter++ {
		vv := v.LenSqr()
		if vv <= MAGIC_EPSILON*MAGIC_EPSILON {
			overlap = true
			break
		}
		sa := a.support(v.Mul(-1))
		sb := pb.support(v)
		w := sa.Sub(sb)
		if vv-v.Dot(w) <= vv*1e-6 || s.contains(w) {
			break
		}
		s.verts[s.n] = simplexVertex{w, sa, sb}
		s.n++

		next, inside := s.solve()
		if inside {
			overlap = true
			break
		}
		if next.LenSqr() >= vv {
			break
		}
		v = next
	}

	if overlap {
		return separatingAxisEstimate(a, pb)
	}

	var closestA, closestB mgl32.Vec3
	for i := 0; i < s.n; i++ {
		closestA = closestA.Add(s.verts[i].a.Mul(s.bary[i]))
		closestB = closestB.Add(s.verts[i].b.Mul(s.bary[i]))
	}
	delta := closestA.Sub(closestB)
	length := delta.Len()
	if length <= MAGIC_EPSILON {
		return separatingAxisEstimate(a, pb)
	}
	normal := delta.Mul(1 / length)
	return gjkResult{
		distance: length - a.radius - b.radius,
		pointA:   closestA.Sub(normal.Mul(a.radius)),
		pointB:   closestB.Add(normal.Mul(b.radius)),
		normal:   normal,
	}
}

// separatingAxisEstimate finds the axis of least penetration among the face
// normals of both cores, the line between their centroids and the coordinate axes.
func separatingAxisEstimate(a convexCore, b placedCore) gjkResult {
	best := -INFINITY
	var bestAxis mgl32.Vec3

	try := func(axis mgl32.Vec3) {
		for _, n := range [2]mgl32.Vec3{axis, axis.Mul(-1)} {
			separation := a.support(n.Mul(-1)).Dot(n) - b.support(n).Dot(n)
			if separation > best {
				best, bestAxis = separation, n
			}
		}
	}
	for _, p := range a.planes {
		try(p.Normal)
	}
	for _, p := range b.core.planes {
		try(b.transform.Vect(p.Normal))
	}
	centroids := a.centroid().Sub(b.transform.Point(b.core.centroid()))
	if centroids.LenSqr() > MAGIC_EPSILON*MAGIC_EPSILON {
		try(centroids.Normalize())
	}
	try(mgl32.Vec3{1, 0, 0})
	try(mgl32.Vec3{0, 1, 0})
	try(mgl32.Vec3{0, 0, 1})

	distance := best - a.radius - b.core.radius
	pointA := a.support(bestAxis.Mul(-1)).Sub(bestAxis.Mul(a.radius))
	return gjkResult{
		distance: distance,
		pointA:   pointA,
		pointB:   pointA.Sub(bestAxis.Mul(distance)),
		normal:   bestAxis,
		overlap:  true,
	}
}
