package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// INFINITY is used as a large finite stand-in for infinity so that it
// survives arithmetic without producing NaNs.
const INFINITY float32 = math32.MaxFloat32

const MAGIC_EPSILON = 1e-6

var (
	vectorZero = mgl32.Vec3{}
	vectorUp   = mgl32.Vec3{0, 1, 0}
)

func VectorString(v mgl32.Vec3) string {
	return fmt.Sprintf("%f,%f,%f", v[0], v[1], v[2])
}

func VectorMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

func VectorMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}

func VectorAbs(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}

// VectorMulEach multiplies component by component.
func VectorMulEach(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func VectorClamp(v, min, max mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{Clamp(v[0], min[0], max[0]), Clamp(v[1], min[1], max[1]), Clamp(v[2], min[2], max[2])}
}

func VectorLerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1.0 - t).Add(b.Mul(t))
}

func VectorMaxComponent(v mgl32.Vec3) float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

func VectorIsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SafeNormalize returns fallback when v is too short to normalize.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= MAGIC_EPSILON {
		return fallback
	}
	return v.Mul(1.0 / l)
}

// OrthonormalBasis returns two unit vectors perpendicular to the unit vector n and to each other.
func OrthonormalBasis(n mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	var u mgl32.Vec3
	if math32.Abs(n[0]) > 0.57735 {
		u = mgl32.Vec3{n[1], -n[0], 0}
	} else {
		u = mgl32.Vec3{0, n[2], -n[1]}
	}
	u = u.Normalize()
	return u, n.Cross(u)
}

func Clamp(f, min, max float32) float32 {
	return math32.Min(math32.Max(f, min), max)
}

func Clamp01(f float32) float32 {
	return math32.Max(0, math32.Min(f, 1))
}

func Lerp(f1, f2, t float32) float32 {
	return f1*(1.0-t) + f2*t
}

// ClosestPointOnSegment returns the point of segment ab closest to p.
func ClosestPointOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	delta := b.Sub(a)
	lengthSq := delta.LenSqr()
	if lengthSq <= MAGIC_EPSILON*MAGIC_EPSILON {
		return a
	}
	t := Clamp01(delta.Dot(p.Sub(a)) / lengthSq)
	return a.Add(delta.Mul(t))
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p together
// with its barycentric coordinates.
func ClosestPointOnTriangle(p, a, b, c mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, mgl32.Vec3{1, 0, 0}
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, mgl32.Vec3{0, 1, 0}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), mgl32.Vec3{1 - v, v, 0}
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, mgl32.Vec3{0, 0, 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), mgl32.Vec3{1 - w, 0, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), mgl32.Vec3{0, 1 - w, w}
	}

	sum := va + vb + vc
	if math32.Abs(sum) <= MAGIC_EPSILON*MAGIC_EPSILON {
		// Degenerate triangle, fall back to the closest edge.
		return closestPointOnDegenerateTriangle(p, a, b, c)
	}

	denom := 1.0 / sum
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), mgl32.Vec3{1 - v - w, v, w}
}

func closestPointOnDegenerateTriangle(p, a, b, c mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	best := ClosestPointOnSegment(p, a, b)
	bestBary := segmentBary(best, a, b)
	bestDist := p.Sub(best).LenSqr()

	if q := ClosestPointOnSegment(p, b, c); p.Sub(q).LenSqr() < bestDist {
		bc := segmentBary(q, b, c)
		best, bestBary, bestDist = q, mgl32.Vec3{0, bc[0], bc[1]}, p.Sub(q).LenSqr()
	}
	if q := ClosestPointOnSegment(p, c, a); p.Sub(q).LenSqr() < bestDist {
		ca := segmentBary(q, c, a)
		best, bestBary = q, mgl32.Vec3{ca[1], 0, ca[0]}
	}
	return best, bestBary
}

// segmentBary returns the weights of a and b for a point q on segment ab.
func segmentBary(q, a, b mgl32.Vec3) mgl32.Vec3 {
	delta := b.Sub(a)
	lengthSq := delta.LenSqr()
	if lengthSq <= MAGIC_EPSILON*MAGIC_EPSILON {
		return mgl32.Vec3{1, 0, 0}
	}
	t := Clamp01(delta.Dot(q.Sub(a)) / lengthSq)
	return mgl32.Vec3{1 - t, t, 0}
}

// Plane is the set of points x with Normal.Dot(x) + Distance == 0.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

func NewPlane(normal, point mgl32.Vec3) Plane {
	return Plane{normal, -normal.Dot(point)}
}

func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (p Plane) Flipped() Plane {
	return Plane{p.Normal.Mul(-1), -p.Distance}
}
