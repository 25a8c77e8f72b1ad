package physics

import "github.com/chewxy/math32"

// CombinePolicy selects how two materials' coefficients are merged.
type CombinePolicy uint8

const (
	CombineGeometricMean CombinePolicy = iota
	CombineMinimum
	CombineMaximum
	CombineArithmeticMean
)

type MaterialFlags uint8

const (
	MaterialFlagCollisionEvents MaterialFlags = 1 << iota
	MaterialFlagContactModification
	MaterialFlagDisableContacts
)

type Material struct {
	Friction           float32
	Restitution        float32
	FrictionCombine    CombinePolicy
	RestitutionCombine CombinePolicy
	Flags              MaterialFlags
}

var DefaultMaterial = Material{Friction: 0.5}

func (m Material) EnableCollisionEvents() bool {
	return m.Flags&MaterialFlagCollisionEvents != 0
}

// CombineFriction merges two friction coefficients using the stricter of the two policies.
func CombineFriction(a, b Material) float32 {
	return combine(a.Friction, b.Friction, maxPolicy(a.FrictionCombine, b.FrictionCombine))
}

func CombineRestitution(a, b Material) float32 {
	return combine(a.Restitution, b.Restitution, maxPolicy(a.RestitutionCombine, b.RestitutionCombine))
}

func maxPolicy(a, b CombinePolicy) CombinePolicy {
	if a > b {
		return a
	}
	return b
}

func combine(a, b float32, policy CombinePolicy) float32 {
	switch policy {
	case CombineMinimum:
		return math32.Min(a, b)
	case CombineMaximum:
		return math32.Max(a, b)
	case CombineArithmeticMean:
		return (a + b) * 0.5
	default:
		return math32.Sqrt(a * b)
	}
}
