// Package raymath holds the per-ray geometry shared by the image-space passes:
// view-ray reconstruction, analytic ray–sphere intersection, and sphere
// tracing of signed-distance surfaces.
package raymath

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// Forward is the fallback view direction for degenerate unprojections.
	Forward = mgl32.Vec3{0, 0, -1}
	// Up is the fallback direction for zero-length segments and sun vectors.
	Up = mgl32.Vec3{0, 1, 0}
)

// Inf is the "no intersection" depth sentinel.
var Inf = math32.Inf(1)

// IsFinite reports whether v is neither infinite nor NaN.
func IsFinite(v float32) bool {
	return !math32.IsInf(v, 0) && !math32.IsNaN(v)
}

// SafeNormalize returns v scaled to unit length, or fallback when v has no length.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || !IsFinite(l) {
		return fallback
	}
	return v.Mul(1 / l)
}

// PixelNDC maps the center of pixel (x, y) to normalized device coordinates.
// Row 0 is the top of the image, so y is flipped to keep +Y up in clip space.
func PixelNDC(x, y, width, height int) (float32, float32) {
	nx := (float32(x)+0.5)/float32(width)*2 - 1
	ny := 1 - (float32(y)+0.5)/float32(height)*2
	return nx, ny
}

// ReconstructDirection unprojects the far-clip point of pixel (x, y) through
// invViewProj and returns the normalized view-ray direction. The camera is the
// origin of the coordinate frame.
func ReconstructDirection(invViewProj mgl32.Mat4, x, y, width, height int) mgl32.Vec3 {
	nx, ny := PixelNDC(x, y, width, height)
	return UnprojectDirection(invViewProj, nx, ny)
}

// UnprojectDirection is ReconstructDirection for an explicit NDC coordinate.
func UnprojectDirection(invViewProj mgl32.Mat4, nx, ny float32) mgl32.Vec3 {
	world := invViewProj.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	p := world.Vec3()
	if w := world.W(); w != 0 && IsFinite(w) {
		p = p.Mul(1 / w)
	}
	return SafeNormalize(p, Forward)
}

// SphereHit is the result of a ray–sphere test. Near <= Far whenever Hit is set.
type SphereHit struct {
	Hit       bool
	Near, Far float32
}

// IntersectSphere solves |origin + t*dir - center| = radius for t.
// The quadratic is evaluated in float64: planet-sized radii squared lose too
// much precision in float32.
func IntersectSphere(origin, dir, center mgl32.Vec3, radius float32) SphereHit {
	ocx := float64(origin[0] - center[0])
	ocy := float64(origin[1] - center[1])
	ocz := float64(origin[2] - center[2])
	dx, dy, dz := float64(dir[0]), float64(dir[1]), float64(dir[2])
	r := float64(radius)

	a := dx*dx + dy*dy + dz*dz
	if a == 0 {
		return SphereHit{}
	}
	b := 2 * (ocx*dx + ocy*dy + ocz*dz)
	c := ocx*ocx + ocy*ocy + ocz*ocz - r*r
	disc := b*b - 4*a*c
	if disc < 0 || math.IsNaN(disc) {
		return SphereHit{}
	}
	sq := math.Sqrt(disc)
	near := (-b - sq) / (2 * a)
	far := (-b + sq) / (2 * a)
	if near > far {
		near, far = far, near
	}
	return SphereHit{Hit: true, Near: float32(near), Far: float32(far)}
}

// Segment returns the unit direction and length of end-start. A zero-length
// segment yields (Up, 0).
func Segment(start, end mgl32.Vec3) (mgl32.Vec3, float32) {
	d := end.Sub(start)
	l := d.Len()
	if l == 0 || !IsFinite(l) {
		return Up, 0
	}
	return d.Mul(1 / l), l
}

// Altitude is the height of p above a sphere of the given center and radius.
func Altitude(p, center mgl32.Vec3, radius float32) float32 {
	dx := float64(p[0]) - float64(center[0])
	dy := float64(p[1]) - float64(center[1])
	dz := float64(p[2]) - float64(center[2])
	return float32(math.Sqrt(dx*dx+dy*dy+dz*dz) - float64(radius))
}

// Body is a sphere that altitudes are measured from.
type Body struct {
	Center mgl32.Vec3
	Radius float32
}

// Altitude is the height of p above the surface of b.
func (b Body) Altitude(p mgl32.Vec3) float32 {
	return Altitude(p, b.Center, b.Radius)
}
