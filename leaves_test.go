package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stackCheckingCollector records the composite brackets around a LeafCollector.
type stackCheckingCollector struct {
	*LeafCollector
	t      *testing.T
	pushes int
	pops   int
	bits   []int
}

func (c *stackCheckingCollector) PushCompositeCollider(compositeKey ColliderKeyPath, parentFromComposite MTransform) MTransform {
	c.pushes++
	c.bits = append(c.bits, compositeKey.NumKeyBits())
	return c.LeafCollector.PushCompositeCollider(compositeKey, parentFromComposite)
}

func (c *stackCheckingCollector) PopCompositeCollider(numBits int, worldFromParent MTransform) {
	c.pops++
	require.NotEmpty(c.t, c.bits, "pop without push")
	assert.Equal(c.t, c.bits[len(c.bits)-1], numBits)
	c.bits = c.bits[:len(c.bits)-1]
	c.LeafCollector.PopCompositeCollider(numBits, worldFromParent)
}

// nestedSpheres builds a compound of two compounds holding three spheres each.
func nestedSpheres(t *testing.T) (root *Collider, inner [2]*Collider, spheres [2][3]*Collider) {
	t.Helper()
	outerChildren := make([]CompoundChild, 2)
	for i := range inner {
		innerChildren := make([]CompoundChild, 3)
		for j := range innerChildren {
			spheres[i][j] = newTestSphere(t, vec(0, 0, 0), 0.5)
			innerChildren[j] = CompoundChild{CompoundFromChild: translate(float32(j)*2, 0, 0), Collider: spheres[i][j]}
		}
		inner[i] = newTestCompound(t, innerChildren...)
		outerChildren[i] = CompoundChild{
			CompoundFromChild: NewRigidTransform(mgl32.QuatRotate(mgl32.DegToRad(90), vec(0, 1, 0)), vec(0, float32(i)*5, 0)),
			Collider:          inner[i],
		}
	}
	return newTestCompound(t, outerChildren...), inner, spheres
}

func TestGetLeaves_StackDiscipline(t *testing.T) {
	root, _, _ := nestedSpheres(t)

	collector := &stackCheckingCollector{LeafCollector: NewLeafCollector(NewTransformIdentity()), t: t}
	root.GetLeaves(collector)

	assert.Equal(t, 2, collector.pushes)
	assert.Equal(t, collector.pushes, collector.pops)
	assert.Empty(t, collector.bits)
	assert.Equal(t, 0, collector.Depth())
	assert.Len(t, collector.Leaves, 6)
}

func TestGetLeaves_KeysResolveToLeaves(t *testing.T) {
	root, _, spheres := nestedSpheres(t)
	world := NewRigidTransform(mgl32.QuatRotate(0.3, vec(1, 0, 0)), vec(1, 2, 3))

	leaves := CollectLeaves(root, world)
	require.Len(t, leaves, 6)

	seen := map[ColliderKey]bool{}
	for _, leaf := range leaves {
		assert.False(t, seen[leaf.Key], "duplicate key %v", leaf.Key)
		seen[leaf.Key] = true

		resolved, ok := GetLeafCollider(root, world, leaf.Key)
		require.True(t, ok, "key %v", leaf.Key)
		require.Equal(t, CollisionTypeConvex, resolved.Collider().CollisionType())

		expected := leaf.WorldFromLeaf.RigidTransform()
		assertVec(t, expected.Translation, resolved.TransformFromChild.Translation, "key %v", leaf.Key)
		dir := vec(0.3, -0.2, 0.1)
		assertVec(t, expected.Vect(dir), resolved.TransformFromChild.Vect(dir), "key %v", leaf.Key)
	}

	// Key bits follow the hierarchy: outer child first, then inner child.
	key := NewColliderKey(2, 2)
	key.PushSubKey(2, 1)
	resolved, ok := GetLeafCollider(root, NewTransformIdentity(), key)
	require.True(t, ok)
	assert.Same(t, spheres[1][2], resolved.Collider())
	assert.True(t, seen[key])
}

func TestGetLeafCollider_MalformedKey(t *testing.T) {
	root, inner, _ := nestedSpheres(t)

	// One past the last child of the root.
	_, ok := GetLeafCollider(root, NewTransformIdentity(), NewColliderKey(2, 2))
	assert.False(t, ok)

	// The key runs out inside an inner compound.
	key := NewColliderKey(2, 0)
	view, ok := GetLeafCollider(root, NewTransformIdentity(), key)
	assert.False(t, ok)
	assert.Same(t, inner[0], view.Collider())

	// The key runs out before reaching a leaf.
	view, ok = GetLeafCollider(root, NewTransformIdentity(), ColliderKeyEmpty)
	assert.False(t, ok)
	assert.Same(t, root, view.Collider())

	_, ok = root.GetLeaf(NewColliderKey(2, 2))
	assert.False(t, ok)
}

func TestGetLeafCollider_MalformedNestedKey(t *testing.T) {
	children := make([]CompoundChild, 5)
	for i := range children {
		children[i] = CompoundChild{CompoundFromChild: translate(float32(i)*2, 0, 0), Collider: newTestSphere(t, vec(0, 0, 0), 0.5)}
	}
	inner := newTestCompound(t, children...)
	root := newTestCompound(t, CompoundChild{CompoundFromChild: NewTransformIdentity(), Collider: inner})
	require.Equal(t, 3, inner.NumColliderKeyBits())
	require.Equal(t, 1, root.NumColliderKeyBits())

	valid := NewColliderKey(3, 4)
	valid.PushSubKey(1, 0)
	view, ok := GetLeafCollider(root, NewTransformIdentity(), valid)
	require.True(t, ok)
	assert.Same(t, children[4].Collider, view.Collider())

	// One past the last child of the inner compound.
	key := NewColliderKey(3, 5)
	key.PushSubKey(1, 0)
	view, ok = GetLeafCollider(root, NewTransformIdentity(), key)
	assert.False(t, ok)
	assert.Same(t, inner, view.Collider())
}

func TestCompoundCollider_GetChildRestoresKeyOnFailure(t *testing.T) {
	root, _, _ := nestedSpheres(t)
	key := NewColliderKey(2, 2)
	_, ok := root.GetChild(&key)
	assert.False(t, ok)
	assert.Equal(t, NewColliderKey(2, 2), key)

	key = NewColliderKey(2, 1)
	child, ok := root.GetChild(&key)
	require.True(t, ok)
	assert.True(t, key.IsEmpty())
	assert.Equal(t, ColliderTypeCompound, child.Collider().Type())
	assertVec(t, vec(0, 5, 0), child.TransformFromChild.Translation)
}

func TestGetLeaves_ConvexRoot(t *testing.T) {
	sphere := newTestSphere(t, vec(1, 0, 0), 1)
	leaves := CollectLeaves(sphere, translate(0, 3, 0))
	require.Len(t, leaves, 1)
	assert.Equal(t, ColliderKeyEmpty, leaves[0].Key)
	assert.Same(t, sphere, leaves[0].Collider.Collider())
	assertVec(t, vec(0, 3, 0), leaves[0].WorldFromLeaf.Translation)

	view, ok := GetLeafCollider(sphere, NewTransformIdentity(), ColliderKeyEmpty)
	assert.True(t, ok)
	assert.Same(t, sphere, view.Collider())
}

func TestLeafCollector_Reset(t *testing.T) {
	root, _, _ := nestedSpheres(t)
	collector := NewLeafCollector(NewTransformIdentity())
	root.GetLeaves(collector)
	require.Len(t, collector.Leaves, 6)

	collector.Reset(translate(0, 0, 1))
	assert.Empty(t, collector.Leaves)
	assert.Equal(t, 0, collector.Depth())

	sphere := newTestSphere(t, vec(0, 0, 0), 1)
	sphere.GetLeaves(collector)
	require.Len(t, collector.Leaves, 1)
	assertVec(t, vec(0, 0, 1), collector.Leaves[0].WorldFromLeaf.Translation)
}

func TestCombineChildCollider(t *testing.T) {
	sphere := newTestSphere(t, vec(0, 0, 0), 1)
	parent := NewChildCollider(nil, translate(1, 0, 0))
	child := NewChildCollider(sphere, NewTransformRotate(mgl32.QuatRotate(mgl32.DegToRad(90), vec(0, 0, 1))))
	combined := CombineChildCollider(parent, child)
	assert.Same(t, sphere, combined.Collider())
	assertVec(t, vec(1, 1, 0), combined.TransformFromChild.Point(vec(1, 0, 0)))

	var zero ChildCollider
	assert.Nil(t, zero.Collider())
	assert.False(t, zero.IsSynthesized())

	triangle := NewTriangleChildCollider(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0), DefaultFilter, DefaultMaterial)
	assert.True(t, triangle.IsSynthesized())
	assert.Equal(t, ColliderTypeTriangle, triangle.Collider().Type())
}
