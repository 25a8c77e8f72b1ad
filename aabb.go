package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Aabb is an axis aligned bounding box.
type Aabb struct {
	Min, Max mgl32.Vec3
}

// EmptyAabb returns a box that contains nothing and is the identity of Union.
func EmptyAabb() Aabb {
	return Aabb{
		Min: mgl32.Vec3{INFINITY, INFINITY, INFINITY},
		Max: mgl32.Vec3{-INFINITY, -INFINITY, -INFINITY},
	}
}

func NewAabbForExtents(center, halfExtents mgl32.Vec3) Aabb {
	return Aabb{center.Sub(halfExtents), center.Add(halfExtents)}
}

func NewAabbForSphere(center mgl32.Vec3, radius float32) Aabb {
	return NewAabbForExtents(center, mgl32.Vec3{radius, radius, radius})
}

func NewAabbForPoints(points ...mgl32.Vec3) Aabb {
	aabb := EmptyAabb()
	for _, p := range points {
		aabb = aabb.Include(p)
	}
	return aabb
}

func (a Aabb) IsValid() bool {
	return a.Min[0] <= a.Max[0] && a.Min[1] <= a.Max[1] && a.Min[2] <= a.Max[2]
}

func (a Aabb) IsEmpty() bool {
	return !a.IsValid()
}

func (a Aabb) Overlaps(b Aabb) bool {
	return a.Min[0] <= b.Max[0] && b.Min[0] <= a.Max[0] &&
		a.Min[1] <= b.Max[1] && b.Min[1] <= a.Max[1] &&
		a.Min[2] <= b.Max[2] && b.Min[2] <= a.Max[2]
}

func (a Aabb) Contains(p mgl32.Vec3) bool {
	return a.Min[0] <= p[0] && p[0] <= a.Max[0] &&
		a.Min[1] <= p[1] && p[1] <= a.Max[1] &&
		a.Min[2] <= p[2] && p[2] <= a.Max[2]
}

func (a Aabb) ContainsAabb(b Aabb) bool {
	return a.Min[0] <= b.Min[0] && b.Max[0] <= a.Max[0] &&
		a.Min[1] <= b.Min[1] && b.Max[1] <= a.Max[1] &&
		a.Min[2] <= b.Min[2] && b.Max[2] <= a.Max[2]
}

func (a Aabb) Union(b Aabb) Aabb {
	return Aabb{VectorMin(a.Min, b.Min), VectorMax(a.Max, b.Max)}
}

func (a Aabb) Include(p mgl32.Vec3) Aabb {
	return Aabb{VectorMin(a.Min, p), VectorMax(a.Max, p)}
}

// Expand grows the box by distance on every side.
func (a Aabb) Expand(distance float32) Aabb {
	d := mgl32.Vec3{distance, distance, distance}
	return Aabb{a.Min.Sub(d), a.Max.Add(d)}
}

func (a Aabb) Offset(v mgl32.Vec3) Aabb {
	return Aabb{a.Min.Add(v), a.Max.Add(v)}
}

func (a Aabb) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extents is the full size of the box along each axis.
func (a Aabb) Extents() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

func (a Aabb) SurfaceArea() float32 {
	d := a.Extents()
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}

// MergedArea is the surface area of the union of a and b.
func (a Aabb) MergedArea(b Aabb) float32 {
	return a.Union(b).SurfaceArea()
}

// Proximity is a cheap distance metric between the box centers used to break ties when inserting.
func (a Aabb) Proximity(b Aabb) float32 {
	return math32.Abs(a.Min[0]+a.Max[0]-b.Min[0]-b.Max[0]) +
		math32.Abs(a.Min[1]+a.Max[1]-b.Min[1]-b.Max[1]) +
		math32.Abs(a.Min[2]+a.Max[2]-b.Min[2]-b.Max[2])
}

func (a Aabb) ClampPoint(p mgl32.Vec3) mgl32.Vec3 {
	return VectorClamp(p, a.Min, a.Max)
}

// DistanceToPoint is zero for points inside the box.
func (a Aabb) DistanceToPoint(p mgl32.Vec3) float32 {
	return a.ClampPoint(p).Sub(p).Len()
}

// SegmentQuery returns the fraction along the segment a->b at which it enters the
// box, or INFINITY when it misses. Segments starting inside return 0.
func (aabb Aabb) SegmentQuery(a, b mgl32.Vec3) float32 {
	delta := b.Sub(a)
	tmin := -INFINITY
	tmax := INFINITY

	for axis := 0; axis < 3; axis++ {
		if delta[axis] == 0 {
			if a[axis] < aabb.Min[axis] || aabb.Max[axis] < a[axis] {
				return INFINITY
			}
			continue
		}
		t1 := (aabb.Min[axis] - a[axis]) / delta[axis]
		t2 := (aabb.Max[axis] - a[axis]) / delta[axis]
		tmin = math32.Max(tmin, math32.Min(t1, t2))
		tmax = math32.Min(tmax, math32.Max(t1, t2))
	}

	if tmin <= tmax && 0 <= tmax && tmin <= 1.0 {
		return math32.Max(tmin, 0.0)
	}
	return INFINITY
}

func (aabb Aabb) IntersectsSegment(a, b mgl32.Vec3) bool {
	return aabb.SegmentQuery(a, b) != INFINITY
}

// TransformAabb returns the box enclosing aabb after moving it by t.
func TransformAabb(t RigidTransform, aabb Aabb) Aabb {
	if aabb.IsEmpty() {
		return aabb
	}
	halfExtents := aabb.Extents().Mul(0.5)
	center := t.Point(aabb.Center())
	rotatedExtents := mat3Abs(QuatMat3(t.Rotation)).Mul3x1(halfExtents)
	return NewAabbForExtents(center, rotatedExtents)
}

// raySlab casts the segment start->end against the box from outside and
// returns the entry fraction and the normal of the face it enters through.
func raySlab(aabb Aabb, start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	if aabb.Contains(start) {
		return 0, mgl32.Vec3{}, false
	}
	delta := end.Sub(start)
	tmin := float32(0)
	tmax := float32(1)
	enterAxis := -1
	var enterSign float32

	for axis := 0; axis < 3; axis++ {
		if delta[axis] == 0 {
			if start[axis] < aabb.Min[axis] || aabb.Max[axis] < start[axis] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / delta[axis]
		t1 := (aabb.Min[axis] - start[axis]) * inv
		t2 := (aabb.Max[axis] - start[axis]) * inv
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			enterAxis = axis
			enterSign = sign
		}
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if enterAxis < 0 {
		return 0, mgl32.Vec3{}, false
	}
	var normal mgl32.Vec3
	normal[enterAxis] = enterSign
	return tmin, normal, true
}
