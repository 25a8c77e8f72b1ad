package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDistance_Sphere(t *testing.T) {
	sphere := newTestSphere(t, vec(0, 0, 0), 1)
	hit, ok := sphere.CalculateDistanceClosest(PointDistanceInput{Position: vec(3, 0, 0), MaxDistance: 5, Filter: DefaultFilter})
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, 1e-5)
	assertVec(t, vec(1, 0, 0), hit.Position)
	assertVec(t, vec(1, 0, 0), hit.SurfaceNormal)
	assert.Equal(t, ColliderKeyEmpty, hit.ColliderKey)
	assert.Equal(t, ColliderKeyEmpty, hit.QueryColliderKey)

	assert.False(t, sphere.CalculateDistance(PointDistanceInput{Position: vec(3, 0, 0), MaxDistance: 1.5, Filter: DefaultFilter}))
	assert.False(t, sphere.CalculateDistance(PointDistanceInput{Position: vec(3, 0, 0), MaxDistance: 5, Filter: ZeroFilter}))
}

func TestCalculateDistance_Box(t *testing.T) {
	box := newTestBox(t, vec(0, 0, 0), vec(2, 2, 2))
	hit, ok := box.CalculateDistanceClosest(PointDistanceInput{Position: vec(0, 3, 0), MaxDistance: 5, Filter: DefaultFilter})
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, 1e-5)
	assertVec(t, vec(0, 1, 0), hit.Position)
	assertVec(t, vec(0, 1, 0), hit.SurfaceNormal)

	hit, ok = box.CalculateDistanceClosest(PointDistanceInput{Position: vec(0, 0.5, 0), MaxDistance: 0, Filter: DefaultFilter})
	require.True(t, ok, "inside counts even with no distance budget")
	assert.InDelta(t, -0.5, hit.Distance, 1e-5)
	assertVec(t, vec(0, 1, 0), hit.SurfaceNormal)
}

func TestCalculateDistance_Compound(t *testing.T) {
	compound := twoSpheres(t)
	input := PointDistanceInput{Position: vec(1, 0, 0), MaxDistance: 10, Filter: DefaultFilter}

	hit, ok := compound.CalculateDistanceClosest(input)
	require.True(t, ok)
	assert.InDelta(t, 1, hit.Distance, 1e-5)
	assertVec(t, vec(2, 0, 0), hit.Position)
	assertVec(t, vec(-1, 0, 0), hit.SurfaceNormal)
	assert.Equal(t, NewColliderKey(2, 1), hit.ColliderKey)

	var hits []DistanceHit
	require.True(t, compound.CalculateDistanceAll(input, &hits))
	require.Len(t, hits, 2)
	byKey := map[ColliderKey]float32{}
	for _, h := range hits {
		byKey[h.ColliderKey] = h.Distance
	}
	assert.InDelta(t, 3, byKey[NewColliderKey(2, 0)], 1e-5)
	assert.InDelta(t, 1, byKey[NewColliderKey(2, 1)], 1e-5)

	input.MaxDistance = 2
	hits = hits[:0]
	require.True(t, compound.CalculateDistanceAll(input, &hits))
	assert.Len(t, hits, 1)

	input.MaxDistance = 0.5
	assert.False(t, compound.CalculateDistance(input))
}

func TestCalculateDistance_NestedCompoundKey(t *testing.T) {
	root, _, spheres := nestedSpheres(t)
	hit, ok := root.CalculateDistanceClosest(PointDistanceInput{Position: vec(0, 5, -5), MaxDistance: 10, Filter: DefaultFilter})
	require.True(t, ok)
	assert.InDelta(t, 0.5, hit.Distance, 1e-4)

	view, ok := GetLeafCollider(root, NewTransformIdentity(), hit.ColliderKey)
	require.True(t, ok)
	assert.Same(t, spheres[1][2], view.Collider())
}

func TestCalculateDistance_Mesh(t *testing.T) {
	mesh := flatQuad(t).AsCollider()
	hit, ok := mesh.CalculateDistanceClosest(PointDistanceInput{Position: vec(0.5, 2, 0.5), MaxDistance: 5, Filter: DefaultFilter})
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, 1e-5)
	assertVec(t, vec(0.5, 0, 0.5), hit.Position)
	assertVec(t, vec(0, 1, 0), hit.SurfaceNormal)
	assert.Equal(t, NewColliderKey(9, 0), hit.ColliderKey)

	hit, ok = mesh.CalculateDistanceClosest(PointDistanceInput{Position: vec(0.5, -2, 0.5), MaxDistance: 5, Filter: DefaultFilter})
	require.True(t, ok)
	assertVec(t, vec(0, -1, 0), hit.SurfaceNormal, "polygons are double sided")

	assert.False(t, mesh.CalculateDistance(PointDistanceInput{Position: vec(0.5, 2, 0.5), MaxDistance: 1, Filter: DefaultFilter}))
}

func TestCalculateColliderDistance_Spheres(t *testing.T) {
	target := newTestSphere(t, vec(0, 0, 0), 1)
	query := newTestSphere(t, vec(0, 0, 0), 0.5)

	hit, ok := target.CalculateColliderDistanceClosest(ColliderDistanceInput{Collider: query, Transform: translate(3, 0, 0), MaxDistance: 5})
	require.True(t, ok)
	assert.InDelta(t, 1.5, hit.Distance, 1e-5)
	assertVec(t, vec(1, 0, 0), hit.Position)
	assertVec(t, vec(1, 0, 0), hit.SurfaceNormal)
	assert.Equal(t, ColliderKeyEmpty, hit.QueryColliderKey)
	assert.Equal(t, ColliderKeyPairEmpty, hit.KeyPair())

	assert.False(t, target.CalculateColliderDistance(ColliderDistanceInput{Collider: query, Transform: translate(3, 0, 0), MaxDistance: 1}))
	assert.False(t, target.CalculateColliderDistance(ColliderDistanceInput{Collider: nil, Transform: translate(3, 0, 0), MaxDistance: 5}))

	query.SetFilter(ZeroFilter)
	assert.False(t, target.CalculateColliderDistance(ColliderDistanceInput{Collider: query, Transform: translate(3, 0, 0), MaxDistance: 5}))
}

func TestCalculateColliderDistance_CompoundQuery(t *testing.T) {
	target := newTestSphere(t, vec(0, 0, 0), 1)
	query := newTestCompound(t,
		CompoundChild{CompoundFromChild: translate(-1, 0, 0), Collider: newTestSphere(t, vec(0, 0, 0), 0.5)},
		CompoundChild{CompoundFromChild: translate(1, 0, 0), Collider: newTestSphere(t, vec(0, 0, 0), 0.5)},
	)
	input := ColliderDistanceInput{Collider: query, Transform: translate(4, 0, 0), MaxDistance: 10}

	hit, ok := target.CalculateColliderDistanceClosest(input)
	require.True(t, ok)
	assert.InDelta(t, 1.5, hit.Distance, 1e-5)
	assert.Equal(t, NewColliderKey(2, 0), hit.QueryColliderKey)
	assert.Equal(t, ColliderKeyEmpty, hit.ColliderKey)
	assert.Equal(t, ColliderKeyPair{ColliderKeyA: NewColliderKey(2, 0), ColliderKeyB: ColliderKeyEmpty}, hit.KeyPair())

	var hits []DistanceHit
	require.True(t, target.CalculateColliderDistanceAll(input, &hits))
	assert.Len(t, hits, 2)
}

func TestCalculateColliderDistance_CompoundTarget(t *testing.T) {
	target := twoSpheres(t)
	query := newTestSphere(t, vec(0, 0, 0), 0.5)

	hit, ok := target.CalculateColliderDistanceClosest(ColliderDistanceInput{Collider: query, Transform: translate(6, 0, 0), MaxDistance: 5})
	require.True(t, ok)
	assert.InDelta(t, 1.5, hit.Distance, 1e-5)
	assert.Equal(t, NewColliderKey(2, 1), hit.ColliderKey)
	assertVec(t, vec(4, 0, 0), hit.Position)
	assertVec(t, vec(1, 0, 0), hit.SurfaceNormal)
}

func TestCalculateColliderDistance_Mesh(t *testing.T) {
	mesh := flatQuad(t).AsCollider()
	query := newTestSphere(t, vec(0, 0, 0), 0.25)

	hit, ok := mesh.CalculateColliderDistanceClosest(ColliderDistanceInput{Collider: query, Transform: translate(0.5, 1, 0.5), MaxDistance: 2})
	require.True(t, ok)
	assert.InDelta(t, 0.75, hit.Distance, 1e-4)
	assertVec(t, vec(0.5, 0, 0.5), hit.Position)
	assertVec(t, vec(0, 1, 0), hit.SurfaceNormal)
	assert.Equal(t, NewColliderKey(9, 0), hit.ColliderKey)
}
