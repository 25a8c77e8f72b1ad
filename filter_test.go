package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollisionFilter_IsCollisionEnabled(t *testing.T) {
	tests := []struct {
		name string
		a, b CollisionFilter
		want bool
	}{
		{"default pair", DefaultFilter, DefaultFilter, true},
		{"zero never collides", ZeroFilter, DefaultFilter, false},
		{"one sided mask", CollisionFilter{BelongsTo: 1, CollidesWith: 2}, CollisionFilter{BelongsTo: 2, CollidesWith: 4}, false},
		{"mutual masks", CollisionFilter{BelongsTo: 1, CollidesWith: 2}, CollisionFilter{BelongsTo: 2, CollidesWith: 1}, true},
		{"positive group overrides masks", CollisionFilter{GroupIndex: 3}, CollisionFilter{GroupIndex: 3}, true},
		{"negative group overrides masks", CollisionFilter{BelongsTo: 1, CollidesWith: 1, GroupIndex: -2}, CollisionFilter{BelongsTo: 1, CollidesWith: 1, GroupIndex: -2}, false},
		{"different groups use masks", CollisionFilter{BelongsTo: 1, CollidesWith: 1, GroupIndex: -2}, CollisionFilter{BelongsTo: 1, CollidesWith: 1, GroupIndex: -3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCollisionEnabled(tt.a, tt.b))
			assert.Equal(t, tt.want, IsCollisionEnabled(tt.b, tt.a))
		})
	}
}

func TestCollisionFilter_Union(t *testing.T) {
	a := CollisionFilter{BelongsTo: 1, CollidesWith: 4, GroupIndex: 2}
	b := CollisionFilter{BelongsTo: 2, CollidesWith: 8, GroupIndex: 2}
	assert.Equal(t, CollisionFilter{BelongsTo: 3, CollidesWith: 12, GroupIndex: 2}, CreateFilterUnion(a, b))

	b.GroupIndex = 5
	assert.Equal(t, int32(0), CreateFilterUnion(a, b).GroupIndex)
}

func TestCollisionFilter_IsEmpty(t *testing.T) {
	assert.True(t, ZeroFilter.IsEmpty())
	assert.True(t, CollisionFilter{BelongsTo: 1}.IsEmpty())
	assert.False(t, DefaultFilter.IsEmpty())
}

func TestMaterial_Combine(t *testing.T) {
	a := Material{Friction: 0.25, Restitution: 0.2}
	b := Material{Friction: 1, Restitution: 0.6, RestitutionCombine: CombineMaximum}

	assert.InDelta(t, 0.5, CombineFriction(a, b), 1e-6)
	assert.InDelta(t, 0.6, CombineRestitution(a, b), 1e-6)

	a.FrictionCombine = CombineMinimum
	assert.InDelta(t, 0.25, CombineFriction(a, b), 1e-6)

	b.FrictionCombine = CombineArithmeticMean
	assert.InDelta(t, 0.625, CombineFriction(a, b), 1e-6)
}

func TestMaterial_Flags(t *testing.T) {
	assert.False(t, DefaultMaterial.EnableCollisionEvents())
	m := Material{Flags: MaterialFlagCollisionEvents}
	assert.True(t, m.EnableCollisionEvents())
}
