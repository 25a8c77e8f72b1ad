package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundCollider_AabbIsUnionOfChildren(t *testing.T) {
	a := newTestBox(t, vec(0, 0, 0), vec(1, 2, 3))
	b := newTestBox(t, vec(0, 0, 0), vec(2, 2, 2))
	fromA := translate(-5, 1, 0.25)
	fromB := translate(7, -3, 2)
	compound := newTestCompound(t,
		CompoundChild{CompoundFromChild: fromA, Collider: a},
		CompoundChild{CompoundFromChild: fromB, Collider: b},
	)

	expected := a.CalculateAabb(fromA).Union(b.CalculateAabb(fromB))
	assert.Equal(t, expected, compound.CalculateAabb(NewTransformIdentity()))
	assert.Equal(t, Aabb{vec(-5.5, -4, -1.25), vec(8, 2, 3)}, expected)

	world := translate(10, 0, 0)
	expected = a.CalculateAabb(world.Mul(fromA)).Union(b.CalculateAabb(world.Mul(fromB)))
	assert.Equal(t, expected, compound.CalculateAabb(world))
}

func TestCompoundCollider_Empty(t *testing.T) {
	compound := newTestCompound(t)
	assert.True(t, compound.CalculateAabb(NewTransformIdentity()).IsEmpty())
	assert.Empty(t, CollectLeaves(compound, NewTransformIdentity()))
	assert.Equal(t, UnitSphereMassProperties, compound.MassProperties())
	assert.False(t, compound.CastRay(RaycastInput{Start: vec(-1, 0, 0), End: vec(1, 0, 0), Filter: DefaultFilter}))
}

func TestCompoundCollider_Children(t *testing.T) {
	sphere := newTestSphere(t, vec(0, 0, 0), 1)
	c, err := NewCompoundCollider([]CompoundChild{
		{CompoundFromChild: translate(1, 0, 0), Collider: sphere},
		{CompoundFromChild: translate(-1, 0, 0), Collider: sphere},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumChildren())
	assert.Same(t, sphere, c.Child(1).Collider)
	assert.Equal(t, translate(-1, 0, 0), c.Child(1).CompoundFromChild)
}

func TestCompoundCollider_MassProperties(t *testing.T) {
	box := newTestBox(t, vec(0, 0, 0), vec(1, 1, 1))
	compound := newTestCompound(t,
		CompoundChild{CompoundFromChild: translate(1, 0, 0), Collider: box},
		CompoundChild{CompoundFromChild: translate(-1, 0, 0), Collider: box},
	)
	mass := compound.MassProperties()
	assert.InDelta(t, 2, mass.Volume, 1e-5)
	assertVec(t, vec(0, 0, 0), mass.Transform.Translation)

	inertia := mass.InertiaMatrix()
	assert.InDelta(t, 1.0/6, inertia.At(0, 0), 1e-4)
	assert.InDelta(t, 1+1.0/6, inertia.At(1, 1), 1e-4)
	assert.InDelta(t, 1+1.0/6, inertia.At(2, 2), 1e-4)
	assert.InDelta(t, 0, inertia.At(0, 1), 1e-4)
	assert.Greater(t, mass.AngularExpansionFactor, float32(1))
}

func TestDiagonalizeSymmetric(t *testing.T) {
	rotation := QuatMat3(mgl32.QuatRotate(0.7, vec(1, 2, 3).Normalize()))
	m := rotation.Mul3(mgl32.Diag3(vec(1, 2, 3))).Mul3(rotation.Transpose())

	axes, diag := diagonalizeSymmetric(m)
	assert.InDelta(t, 1, axes.Det(), 1e-4)

	rebuilt := axes.Mul3(mgl32.Diag3(diag)).Mul3(axes.Transpose())
	for i := range m {
		assert.InDelta(t, m[i], rebuilt[i], 1e-4)
	}
	sum := diag[0] + diag[1] + diag[2]
	assert.InDelta(t, 6, sum, 1e-4)
}

func TestMassProperties_Leaves(t *testing.T) {
	sphere := newTestSphere(t, vec(1, 0, 0), 2)
	props := sphere.MassProperties()
	assert.InDelta(t, 4.0/3.0*3.14159265*8, props.Volume, 1e-3)
	assert.Equal(t, vec(1, 0, 0), props.Transform.Translation)

	box := newTestBox(t, vec(0, 0, 0), vec(1, 2, 3))
	props = box.MassProperties()
	assert.InDelta(t, 6, props.Volume, 1e-5)
	assert.InDelta(t, (4+9)/12.0, props.InertiaTensor[0], 1e-5)
}
