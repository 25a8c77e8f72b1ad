package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MassDistribution places the center of mass and the principal inertia axes
// in collider space. InertiaTensor is the diagonal in that frame, per unit mass.
type MassDistribution struct {
	Transform     RigidTransform
	InertiaTensor mgl32.Vec3
}

type MassProperties struct {
	MassDistribution
	Volume float32
	// AngularExpansionFactor bounds how far any surface point moves per radian of rotation.
	AngularExpansionFactor float32
}

// UnitSphereMassProperties is a unit radius sphere at the origin. It doubles
// as the neutral value when a collider cannot be inspected.
var UnitSphereMassProperties = MassProperties{
	MassDistribution: MassDistribution{
		Transform:     NewTransformIdentity(),
		InertiaTensor: mgl32.Vec3{0.4, 0.4, 0.4},
	},
	Volume:                 4.0 / 3.0 * math32.Pi,
	AngularExpansionFactor: 0,
}

// InertiaMatrix returns the full inertia tensor expressed in collider space.
func (m MassDistribution) InertiaMatrix() mgl32.Mat3 {
	r := QuatMat3(m.Transform.Rotation)
	d := mgl32.Diag3(m.InertiaTensor)
	return r.Mul3(d).Mul3(r.Transpose())
}

// boxInertia is the inertia per unit mass of a solid box with the given full size.
func boxInertia(size mgl32.Vec3) mgl32.Vec3 {
	sq := VectorMulEach(size, size)
	return mgl32.Vec3{
		(sq[1] + sq[2]) / 12,
		(sq[0] + sq[2]) / 12,
		(sq[0] + sq[1]) / 12,
	}
}

// massPart is one weighted contribution to a combined body.
type massPart struct {
	mass    float32
	props   MassProperties
	toShape RigidTransform
}

// combineMassProperties merges parts that share a density into one set of
// properties. The combined inertia is diagonalised so it can be stored as a
// rotation plus a diagonal.
func combineMassProperties(parts []massPart) MassProperties {
	var totalMass, totalVolume float32
	var com mgl32.Vec3
	for _, p := range parts {
		worldCom := p.toShape.Point(p.props.Transform.Translation)
		com = com.Add(worldCom.Mul(p.mass))
		totalMass += p.mass
		totalVolume += p.props.Volume
	}
	if totalMass <= 0 {
		return UnitSphereMassProperties
	}
	com = com.Mul(1 / totalMass)

	var inertia mgl32.Mat3
	var expansion float32
	for _, p := range parts {
		local := p.props.MassDistribution
		rot := QuatMat3(p.toShape.Rotation)
		tensor := rot.Mul3(local.InertiaMatrix()).Mul3(rot.Transpose())

		offset := p.toShape.Point(local.Transform.Translation).Sub(com)
		parallel := mgl32.Ident3().Mul(offset.Dot(offset)).Sub(outer(offset, offset))
		inertia = inertia.Add(tensor.Add(parallel).Mul(p.mass))

		expansion = math32.Max(expansion, p.props.AngularExpansionFactor+offset.Len())
	}
	inertia = inertia.Mul(1 / totalMass)

	axes, diag := diagonalizeSymmetric(inertia)
	return MassProperties{
		MassDistribution: MassDistribution{
			Transform:     RigidTransform{Mat3Quat(axes), com},
			InertiaTensor: diag,
		},
		Volume:                 totalVolume,
		AngularExpansionFactor: expansion,
	}
}

func outer(a, b mgl32.Vec3) mgl32.Mat3 {
	var m mgl32.Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m.Set(row, col, a[row]*b[col])
		}
	}
	return m
}

// diagonalizeSymmetric runs cyclic Jacobi rotations on a symmetric matrix. It
// returns a proper rotation whose columns are the eigenvectors, and the
// eigenvalues in the same order.
func diagonalizeSymmetric(m mgl32.Mat3) (mgl32.Mat3, mgl32.Vec3) {
	const maxSweeps = 24
	a := m
	v := mgl32.Ident3()

	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := a.At(0, 1)*a.At(0, 1) + a.At(0, 2)*a.At(0, 2) + a.At(1, 2)*a.At(1, 2)
		if off <= 1e-12 {
			break
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				apq := a.At(p, q)
				if math32.Abs(apq) <= 1e-12 {
					continue
				}
				theta := (a.At(q, q) - a.At(p, p)) / (2 * apq)
				t := float32(1) / (math32.Abs(theta) + math32.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math32.Sqrt(t*t+1)
				s := t * c

				rot := mgl32.Ident3()
				rot.Set(p, p, c)
				rot.Set(q, q, c)
				rot.Set(p, q, s)
				rot.Set(q, p, -s)

				a = rot.Transpose().Mul3(a).Mul3(rot)
				v = v.Mul3(rot)
			}
		}
	}

	if v.Det() < 0 {
		v.SetCol(2, v.Col(2).Mul(-1))
	}
	return v, mgl32.Vec3{a.At(0, 0), a.At(1, 1), a.At(2, 2)}
}
