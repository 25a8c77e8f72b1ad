package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxGeometry is an oriented box. BevelRadius rounds its edges and corners
// without changing its overall Size.
type BoxGeometry struct {
	Center      mgl32.Vec3
	Orientation mgl32.Quat
	Size        mgl32.Vec3
	BevelRadius float32
}

func (g BoxGeometry) Validate() error {
	if !VectorIsFinite(g.Center) || !VectorIsFinite(g.Size) {
		return fmt.Errorf("box center %v size %v: %w", g.Center, g.Size, ErrInvalidGeometry)
	}
	if g.Size[0] < 0 || g.Size[1] < 0 || g.Size[2] < 0 {
		return fmt.Errorf("box size %v: %w", g.Size, ErrInvalidGeometry)
	}
	if l := g.Orientation.Len(); math32.Abs(l-1) > 1e-3 {
		return fmt.Errorf("box orientation %v is not normalized: %w", g.Orientation, ErrInvalidGeometry)
	}
	minHalf := math32.Min(g.Size[0], math32.Min(g.Size[1], g.Size[2])) * 0.5
	if g.BevelRadius < 0 || g.BevelRadius > minHalf {
		return fmt.Errorf("box bevel radius %v: %w", g.BevelRadius, ErrInvalidGeometry)
	}
	return nil
}

type BoxCollider struct {
	collider Collider
	geometry BoxGeometry
	vertices [8]mgl32.Vec3
	faces    [6]Plane
}

func NewBoxCollider(geometry BoxGeometry, filter CollisionFilter, material Material) (*BoxCollider, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	box := &BoxCollider{}
	box.collider = newCollider(ColliderTypeBox, filter, material, box)
	box.setGeometry(geometry)
	return box, nil
}

func (b *BoxCollider) AsCollider() *Collider {
	b.collider.impl = b
	return &b.collider
}

func (b *BoxCollider) Geometry() BoxGeometry {
	return b.geometry
}

func (b *BoxCollider) SetGeometry(geometry BoxGeometry) error {
	if err := geometry.Validate(); err != nil {
		return err
	}
	b.setGeometry(geometry)
	b.collider.bumpVersion()
	return nil
}

func (b *BoxCollider) setGeometry(geometry BoxGeometry) {
	b.geometry = geometry
	frame := b.frame()
	core := b.coreHalfExtents()
	for i := range b.vertices {
		corner := core
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corner[axis] = -corner[axis]
			}
		}
		b.vertices[i] = frame.Point(corner)
	}
	half := geometry.Size.Mul(0.5)
	for axis := 0; axis < 3; axis++ {
		var n mgl32.Vec3
		n[axis] = 1
		worldNormal := frame.Vect(n)
		b.faces[axis*2] = NewPlane(worldNormal, frame.Point(n.Mul(half[axis])))
		b.faces[axis*2+1] = NewPlane(worldNormal.Mul(-1), frame.Point(n.Mul(-half[axis])))
	}
}

// frame maps box space, where the box is centered and axis aligned, to collider space.
func (b *BoxCollider) frame() RigidTransform {
	return NewRigidTransform(b.geometry.Orientation, b.geometry.Center)
}

func (b *BoxCollider) coreHalfExtents() mgl32.Vec3 {
	r := b.geometry.BevelRadius
	return b.geometry.Size.Mul(0.5).Sub(mgl32.Vec3{r, r, r})
}

func (b *BoxCollider) core() convexCore {
	return convexCore{vertices: b.vertices[:], radius: b.geometry.BevelRadius}
}

func (b *BoxCollider) planes() []Plane {
	return b.faces[:]
}

func (b *BoxCollider) memorySize() int {
	return baseMemorySize(b)
}

func (b *BoxCollider) massProperties() MassProperties {
	size := b.geometry.Size
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     b.frame(),
			InertiaTensor: boxInertia(size),
		},
		Volume:                 size[0] * size[1] * size[2],
		AngularExpansionFactor: b.coreHalfExtents().Len(),
	}
}

func (b *BoxCollider) aabb(t RigidTransform) Aabb {
	half := b.geometry.Size.Mul(0.5)
	return TransformAabb(t.Mul(b.frame()), Aabb{half.Mul(-1), half})
}

func (b *BoxCollider) castRayLocal(start, end mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	frame := b.frame()
	half := b.geometry.Size.Mul(0.5)
	t, n, ok := raySlab(Aabb{half.Mul(-1), half}, frame.InversePoint(start), frame.InversePoint(end))
	if !ok {
		return 0, mgl32.Vec3{}, false
	}
	return t, frame.Vect(n), true
}

func (b *BoxCollider) distanceToPoint(p mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	frame := b.frame()
	local := frame.InversePoint(p)
	core := b.coreHalfExtents()
	bevel := b.geometry.BevelRadius

	closest := VectorClamp(local, core.Mul(-1), core)
	delta := local.Sub(closest)
	var distance float32
	var normal mgl32.Vec3
	if delta.LenSqr() > MAGIC_EPSILON*MAGIC_EPSILON {
		distance = delta.Len()
		normal = delta.Mul(1 / distance)
	} else {
		// Inside the core, push out through the nearest face.
		axis := 0
		best := core[0] - math32.Abs(local[0])
		for i := 1; i < 3; i++ {
			if d := core[i] - math32.Abs(local[i]); d < best {
				axis, best = i, d
			}
		}
		distance = -best
		normal[axis] = 1
		if local[axis] < 0 {
			normal[axis] = -1
		}
	}
	distance -= bevel
	position := local.Sub(normal.Mul(distance))
	return distance, frame.Point(position), frame.Vect(normal)
}
