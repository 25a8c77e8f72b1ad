package physics

// CollisionFilter decides which colliders may interact. Two filters collide
// when each one's BelongsTo intersects the other's CollidesWith. A shared
// non-zero GroupIndex overrides the masks: positive always collides, negative
// never does.
type CollisionFilter struct {
	BelongsTo    uint32
	CollidesWith uint32
	GroupIndex   int32
}

var (
	DefaultFilter = CollisionFilter{BelongsTo: 0xffffffff, CollidesWith: 0xffffffff}
	ZeroFilter    = CollisionFilter{}
)

// IsEmpty is true for filters that can never collide with anything.
func (f CollisionFilter) IsEmpty() bool {
	return f.BelongsTo == 0 || f.CollidesWith == 0
}

func IsCollisionEnabled(a, b CollisionFilter) bool {
	if a.GroupIndex > 0 && a.GroupIndex == b.GroupIndex {
		return true
	}
	if a.GroupIndex < 0 && a.GroupIndex == b.GroupIndex {
		return false
	}
	return a.BelongsTo&b.CollidesWith != 0 && b.BelongsTo&a.CollidesWith != 0
}

// CreateFilterUnion returns a filter that collides with everything either
// input collides with. The group index survives only when both agree.
func CreateFilterUnion(a, b CollisionFilter) CollisionFilter {
	union := CollisionFilter{
		BelongsTo:    a.BelongsTo | b.BelongsTo,
		CollidesWith: a.CollidesWith | b.CollidesWith,
	}
	if a.GroupIndex == b.GroupIndex {
		union.GroupIndex = a.GroupIndex
	}
	return union
}
