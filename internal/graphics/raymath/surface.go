package raymath

import "github.com/go-gl/mathgl/mgl32"

// Surface is a solid described by a signed distance function: negative
// inside, zero on the surface, positive outside.
type Surface interface {
	Distance(p mgl32.Vec3) float32
}

// Sphere is a signed-distance sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Distance is the altitude of p, which is evaluated in float64.
func (s Sphere) Distance(p mgl32.Vec3) float32 {
	return Altitude(p, s.Center, s.Radius)
}

const normalEpsilon = 0.001

// EstimateNormal returns the central-difference gradient of s at p.
// The step grows with the distance from the origin so planet-scale
// coordinates still resolve in float32.
func EstimateNormal(s Surface, p mgl32.Vec3) mgl32.Vec3 {
	e := float32(normalEpsilon)
	if scale := p.Len() * 1e-5; scale > e {
		e = scale
	}
	n := mgl32.Vec3{
		s.Distance(p.Add(mgl32.Vec3{e, 0, 0})) - s.Distance(p.Sub(mgl32.Vec3{e, 0, 0})),
		s.Distance(p.Add(mgl32.Vec3{0, e, 0})) - s.Distance(p.Sub(mgl32.Vec3{0, e, 0})),
		s.Distance(p.Add(mgl32.Vec3{0, 0, e})) - s.Distance(p.Sub(mgl32.Vec3{0, 0, e})),
	}
	return SafeNormalize(n, Up)
}

// TraceResult is the outcome of sphere tracing one ray.
type TraceResult struct {
	Hit      bool
	T        float32
	Position mgl32.Vec3
	Steps    int
}

// SphereTrace marches origin+t*dir through s, stepping by the distance bound.
// A hit is reported once the distance drops below eps (scaled with t so
// far-away surfaces converge in float32); the march gives up past maxDist or
// after maxSteps.
func SphereTrace(s Surface, origin, dir mgl32.Vec3, maxSteps int, eps, maxDist float32) TraceResult {
	var t float32
	for i := 0; i < maxSteps; i++ {
		p := origin.Add(dir.Mul(t))
		d := s.Distance(p)
		tol := eps
		if rel := t * 1e-6; rel > tol {
			tol = rel
		}
		if d < tol {
			return TraceResult{Hit: true, T: t, Position: p, Steps: i + 1}
		}
		t += d
		if t > maxDist || !IsFinite(t) {
			break
		}
	}
	return TraceResult{Steps: maxSteps}
}
