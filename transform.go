package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RigidTransform is a rotation followed by a translation.
type RigidTransform struct {
	Rotation    mgl32.Quat
	Translation mgl32.Vec3
}

func NewTransformIdentity() RigidTransform {
	return RigidTransform{mgl32.QuatIdent(), mgl32.Vec3{}}
}

func NewRigidTransform(rotation mgl32.Quat, translation mgl32.Vec3) RigidTransform {
	return RigidTransform{rotation, translation}
}

func NewTransformTranslate(translate mgl32.Vec3) RigidTransform {
	return RigidTransform{mgl32.QuatIdent(), translate}
}

func NewTransformRotate(rotation mgl32.Quat) RigidTransform {
	return RigidTransform{rotation, mgl32.Vec3{}}
}

// Mul returns the transform that applies t2 first and then t.
func (t RigidTransform) Mul(t2 RigidTransform) RigidTransform {
	return RigidTransform{
		Rotation:    t.Rotation.Mul(t2.Rotation),
		Translation: t.Translation.Add(t.Rotation.Rotate(t2.Translation)),
	}
}

func (t RigidTransform) Inverse() RigidTransform {
	inv := t.Rotation.Conjugate()
	return RigidTransform{inv, inv.Rotate(t.Translation).Mul(-1)}
}

func (t RigidTransform) Point(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Translation)
}

func (t RigidTransform) Vect(v mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(v)
}

func (t RigidTransform) InversePoint(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Translation))
}

func (t RigidTransform) InverseVect(v mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Conjugate().Rotate(v)
}

// Aabb returns the box enclosing aabb after it has been moved by t.
func (t RigidTransform) Aabb(aabb Aabb) Aabb {
	return TransformAabb(t, aabb)
}

// QuatMat3 returns the rotation matrix of a unit quaternion.
func QuatMat3(q mgl32.Quat) mgl32.Mat3 {
	m := q.Mat4()
	return mgl32.Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Mat3Quat converts a rotation matrix back to a quaternion.
func Mat3Quat(m mgl32.Mat3) mgl32.Quat {
	return mgl32.Mat4ToQuat(mgl32.Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}).Normalize()
}

func mat3Abs(m mgl32.Mat3) mgl32.Mat3 {
	var abs mgl32.Mat3
	for i := range m {
		abs[i] = math32.Abs(m[i])
	}
	return abs
}

// MTransform is the matrix form of a RigidTransform. Composing many of these
// is cheaper than composing quaternions, so the leaf collectors use it.
type MTransform struct {
	Rotation    mgl32.Mat3
	Translation mgl32.Vec3
}

func NewMTransformIdentity() MTransform {
	return MTransform{mgl32.Ident3(), mgl32.Vec3{}}
}

func NewMTransform(t RigidTransform) MTransform {
	return MTransform{QuatMat3(t.Rotation), t.Translation}
}

func (a MTransform) Mul(b MTransform) MTransform {
	return MTransform{
		Rotation:    a.Rotation.Mul3(b.Rotation),
		Translation: a.Rotation.Mul3x1(b.Translation).Add(a.Translation),
	}
}

func (a MTransform) Inverse() MTransform {
	inv := a.Rotation.Transpose()
	return MTransform{inv, inv.Mul3x1(a.Translation).Mul(-1)}
}

func (a MTransform) Point(p mgl32.Vec3) mgl32.Vec3 {
	return a.Rotation.Mul3x1(p).Add(a.Translation)
}

func (a MTransform) Vect(v mgl32.Vec3) mgl32.Vec3 {
	return a.Rotation.Mul3x1(v)
}

func (a MTransform) RigidTransform() RigidTransform {
	return RigidTransform{Mat3Quat(a.Rotation), a.Translation}
}
