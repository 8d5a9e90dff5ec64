// Package gbuffer sphere-traces the solid surface and writes the per-pixel
// attributes consumed by deferred lighting.
package gbuffer

import (
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Metalness written for every surface hit.
const Metalness = 0.05

// Attributes are the G-buffer values of one pixel.
type Attributes struct {
	Depth     float32
	Normal    mgl32.Vec3
	Roughness float32
	Albedo    mgl32.Vec3
	Metalness float32
}

// Miss is written where the ray hits nothing.
var Miss = Attributes{
	Depth:     raymath.Inf,
	Normal:    mgl32.Vec3{0, 0, 1},
	Roughness: 1,
}

// SurfaceFunc returns the solid to trace for the current frame.
type SurfaceFunc func(ctx *renderer.RenderContext) raymath.Surface

// PlanetSurface traces the planet sphere of the context.
func PlanetSurface(ctx *renderer.RenderContext) raymath.Surface {
	return raymath.Sphere{Center: ctx.PlanetCenterRel, Radius: ctx.PlanetRadius}
}

func smoothstep(e0, e1, x float32) float32 {
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Material derives albedo and roughness from the surface normal: latitude
// bands of two base tones, lightened toward the pole facing +Y.
func Material(n mgl32.Vec3) (albedo mgl32.Vec3, roughness float32) {
	band := smoothstep(-0.1, 0.1, math32.Sin(n.Y()*12))
	base := mix(mgl32.Vec3{0.35, 0.4, 0.6}, mgl32.Vec3{0.6, 0.65, 0.7}, band)
	facing := 0.5 + 0.5*n.Y()
	albedo = mix(base, mgl32.Vec3{0.8, 0.85, 0.9}, facing*0.3)
	roughness = 0.15 + (0.6-0.15)*mgl32.Clamp(n.Y()*0.5+0.5, 0, 1)
	return albedo, roughness
}

// Shade traces one camera ray against s.
func Shade(s raymath.Surface, dir mgl32.Vec3, maxSteps int, eps, maxDist float32) Attributes {
	hit := raymath.SphereTrace(s, mgl32.Vec3{}, dir, maxSteps, eps, maxDist)
	if !hit.Hit {
		return Miss
	}
	n := raymath.EstimateNormal(s, hit.Position)
	albedo, roughness := Material(n)
	return Attributes{
		Depth:     hit.T,
		Normal:    n,
		Roughness: roughness,
		Albedo:    albedo,
		Metalness: Metalness,
	}
}

// Pass is the surface G-buffer stage.
type Pass struct {
	surface SurfaceFunc

	depth           *renderer.ScalarBuffer
	normalRoughness *renderer.RGBABuffer
	albedoMetalness *renderer.RGBABuffer
}

var _ renderer.Pass = (*Pass)(nil)

// New traces the planet sphere.
func New() *Pass { return NewWithSurface(PlanetSurface) }

// NewWithSurface traces the solid returned by fn every frame.
func NewWithSurface(fn SurfaceFunc) *Pass {
	if fn == nil {
		fn = PlanetSurface
	}
	return &Pass{surface: fn}
}

func (p *Pass) Name() string { return "SurfaceGBuffer" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Writes: []renderer.ResourceDecl{
			{Name: renderer.GBufferDepth, Kind: renderer.KindScalar},
			{Name: renderer.GBufferNormalRoughness, Kind: renderer.KindRGBA},
			{Name: renderer.GBufferAlbedoMetalness, Kind: renderer.KindRGBA},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	w, h := ctx.Width, ctx.Height
	p.depth = renderer.ReuseScalar(p.depth, w, h)
	p.normalRoughness = renderer.ReuseRGBA(p.normalRoughness, w, h)
	p.albedoMetalness = renderer.ReuseRGBA(p.albedoMetalness, w, h)
	p.depth.Fill(Miss.Depth)
	p.normalRoughness.Fill(Miss.Normal.Vec4(Miss.Roughness))
	p.albedoMetalness.Fill(mgl32.Vec4{})
	p.publish(ctx)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.depth == nil {
		return renderer.ErrNotInitialized
	}
	s := p.surface(ctx)
	cfg := ctx.Config.Surface
	ctx.Rows(func(y int) {
		depth, nr, am := p.depth.Row(y), p.normalRoughness.Row(y), p.albedoMetalness.Row(y)
		for x := range depth {
			a := Shade(s, ctx.RayDirection(x, y), cfg.MaxSteps, cfg.HitEpsilon, cfg.MaxDistance)
			depth[x] = a.Depth
			nr[x] = a.Normal.Vec4(a.Roughness)
			am[x] = a.Albedo.Vec4(a.Metalness)
		}
	})
	p.publish(ctx)
	return nil
}

func (p *Pass) publish(ctx *renderer.RenderContext) {
	ctx.SetTexture(renderer.GBufferDepth, p.depth)
	ctx.SetTexture(renderer.GBufferNormalRoughness, p.normalRoughness)
	ctx.SetTexture(renderer.GBufferAlbedoMetalness, p.albedoMetalness)
}

func (p *Pass) Shutdown() error {
	p.depth, p.normalRoughness, p.albedoMetalness = nil, nil, nil
	return nil
}
