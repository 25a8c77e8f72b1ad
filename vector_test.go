package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSafeNormalize(t *testing.T) {
	assert.Equal(t, vectorUp, SafeNormalize(mgl32.Vec3{}, vectorUp))
	assertVec(t, vec(0, 0, 1), SafeNormalize(vec(0, 0, 5), vectorUp))
}

func TestOrthonormalBasis(t *testing.T) {
	for _, n := range []mgl32.Vec3{vec(1, 0, 0), vec(0, 1, 0), vec(0, 0, -1), vec(1, 2, 3).Normalize()} {
		u, v := OrthonormalBasis(n)
		assert.InDelta(t, 1, u.Len(), 1e-5)
		assert.InDelta(t, 0, u.Dot(n), 1e-5)
		assert.InDelta(t, 0, v.Dot(n), 1e-5)
		assertVec(t, n, u.Cross(v), "basis is right handed around %v", n)
	}
}

func TestClosestPointOnTriangle(t *testing.T) {
	a, b, c := vec(0, 0, 0), vec(2, 0, 0), vec(0, 2, 0)

	q, bary := ClosestPointOnTriangle(vec(0.5, 0.5, 3), a, b, c)
	assertVec(t, vec(0.5, 0.5, 0), q)
	assert.InDelta(t, 1, bary[0]+bary[1]+bary[2], 1e-5)

	q, _ = ClosestPointOnTriangle(vec(-1, -1, 0), a, b, c)
	assertVec(t, a, q)

	q, _ = ClosestPointOnTriangle(vec(2, 2, 0), a, b, c)
	assertVec(t, vec(1, 1, 0), q)
}

func TestPlane(t *testing.T) {
	plane := NewPlane(vec(0, 1, 0), vec(0, 2, 0))
	assert.Equal(t, float32(3), plane.SignedDistance(vec(7, 5, 1)))
	assert.Equal(t, float32(-3), plane.Flipped().SignedDistance(vec(7, 5, 1)))
}

func TestRigidTransform(t *testing.T) {
	rotation := mgl32.QuatRotate(mgl32.DegToRad(90), vec(0, 0, 1))
	a := NewRigidTransform(rotation, vec(1, 0, 0))
	b := translate(0, 2, 0)

	p := vec(1, 1, 1)
	assertVec(t, a.Point(b.Point(p)), a.Mul(b).Point(p))
	assertVec(t, p, a.Inverse().Point(a.Point(p)))
	assertVec(t, p, a.InversePoint(a.Point(p)))
	assertVec(t, vec(0, 1, 0), a.Vect(vec(1, 0, 0)))
	assertVec(t, p, a.Mul(a.Inverse()).Point(p))

	m := NewMTransform(a).Mul(NewMTransform(b))
	assertVec(t, a.Mul(b).Point(p), m.Point(p))
	assertVec(t, p, m.Inverse().Point(m.Point(p)))
	assertVec(t, a.Mul(b).Point(p), m.RigidTransform().Point(p))
}

func TestAabb(t *testing.T) {
	box := Aabb{vec(-1, -1, -1), vec(1, 1, 1)}
	assert.True(t, EmptyAabb().IsEmpty())
	assert.Equal(t, box, EmptyAabb().Union(box))
	assert.True(t, box.Overlaps(Aabb{vec(1, 1, 1), vec(2, 2, 2)}), "touching boxes overlap")
	assert.False(t, box.Overlaps(Aabb{vec(1.5, 0, 0), vec(2, 2, 2)}))
	assert.Equal(t, float32(24), box.SurfaceArea())
	assert.Equal(t, float32(2), box.DistanceToPoint(vec(3, 0, 0)))
	assert.Equal(t, float32(0), box.DistanceToPoint(vec(0.5, 0, 0)))

	assert.InDelta(t, 0.4, box.SegmentQuery(vec(-5, 0, 0), vec(5, 0, 0)), 1e-6)
	assert.Equal(t, float32(0), box.SegmentQuery(vec(0, 0, 0), vec(5, 0, 0)))
	assert.Equal(t, INFINITY, box.SegmentQuery(vec(-5, 2, 0), vec(5, 2, 0)))
	assert.False(t, box.IntersectsSegment(vec(-5, 0, 0), vec(-3, 0, 0)))

	rotated := TransformAabb(NewTransformRotate(mgl32.QuatRotate(mgl32.DegToRad(45), vec(0, 0, 1))), box)
	assert.InDelta(t, 1.41421356, rotated.Max[0], 1e-5)
	assert.InDelta(t, 1, rotated.Max[2], 1e-5)
	assert.True(t, TransformAabb(NewTransformIdentity(), EmptyAabb()).IsEmpty())
}

func TestRaySlab(t *testing.T) {
	box := Aabb{vec(-1, -1, -1), vec(1, 1, 1)}
	fraction, normal, ok := raySlab(box, vec(0, 5, 0), vec(0, -5, 0))
	assert.True(t, ok)
	assert.InDelta(t, 0.4, fraction, 1e-6)
	assert.Equal(t, vec(0, 1, 0), normal)

	_, _, ok = raySlab(box, vec(0, 0, 0), vec(0, -5, 0))
	assert.False(t, ok, "starting inside")
}
