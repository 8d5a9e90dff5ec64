// Package lighting shades the surface G-buffer with one directional light.
package lighting

import (
	"yaws/internal/config"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Light is the directional light and the color used for rays that miss.
type Light struct {
	Dir        mgl32.Vec3 // unit, toward the light
	Color      mgl32.Vec3
	Background mgl32.Vec3
}

// Surface is one decoded G-buffer texel.
type Surface struct {
	Normal    mgl32.Vec3
	Roughness float32
	Albedo    mgl32.Vec3
}

// Sky is the gradient seen in reflections.
func Sky(dir mgl32.Vec3) mgl32.Vec3 {
	grad := mgl32.Clamp(dir.Y()*0.5+0.5, 0, 1)
	horizon := mgl32.Vec3{0.25, 0.35, 0.5}
	zenith := mgl32.Vec3{0.05, 0.08, 0.12}
	return horizon.Add(zenith.Sub(horizon).Mul(grad))
}

func reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

// Standard is Lambert diffuse plus a specular lobe and a fresnel sky
// reflection, both weighted by n·l. The lobe is taken over n·l rather than
// the half vector, so for a fixed view the result never decreases as the
// surface turns toward the light.
func Standard(s Surface, view mgl32.Vec3, l Light) mgl32.Vec3 {
	ndl := max(s.Normal.Dot(l.Dir), 0)
	if ndl == 0 {
		return mgl32.Vec3{}
	}
	toEye := view.Mul(-1)
	diffuse := s.Albedo.Mul(ndl)

	shininess := 80 + (8-80)*s.Roughness
	specular := math32.Pow(ndl, shininess) * (0.1 + 0.6*(1-s.Roughness)) * ndl

	fresnel := math32.Pow(1-max(s.Normal.Dot(toEye), 0), 5)
	sky := Sky(reflect(view, s.Normal))

	c := diffuse.Add(mgl32.Vec3{specular, specular, specular}).Add(sky.Mul(fresnel * ndl))
	c[0] *= l.Color[0]
	c[1] *= l.Color[1]
	c[2] *= l.Color[2]
	return c
}

// Simple is the Lambert term scaled by (1 - roughness).
func Simple(s Surface, _ mgl32.Vec3, l Light) mgl32.Vec3 {
	ndl := max(s.Normal.Dot(l.Dir), 0)
	c := s.Albedo.Mul(ndl * (1 - s.Roughness))
	c[0] *= l.Color[0]
	c[1] *= l.Color[1]
	c[2] *= l.Color[2]
	return c
}

// Model computes outgoing radiance for a surface seen along view.
type Model func(s Surface, view mgl32.Vec3, l Light) mgl32.Vec3

// ModelFor maps a configured model name to its function. Unknown names use Standard.
func ModelFor(name string) Model {
	if name == config.LightingSimple {
		return Simple
	}
	return Standard
}

// Pass is the deferred surface lighting stage.
type Pass struct {
	radiance *renderer.RGBABuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "DeferredSurfaceLighting" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Reads: []renderer.ResourceDecl{
			{Name: renderer.GBufferDepth, Kind: renderer.KindScalar},
			{Name: renderer.GBufferNormalRoughness, Kind: renderer.KindRGBA},
			{Name: renderer.GBufferAlbedoMetalness, Kind: renderer.KindRGBA},
		},
		Writes: []renderer.ResourceDecl{
			{Name: renderer.SurfaceRadiance, Kind: renderer.KindRGBA},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	p.radiance = renderer.ReuseRGBA(p.radiance, ctx.Width, ctx.Height)
	p.radiance.Fill(mgl32.Vec4{0, 0, 0, 1})
	ctx.SetTexture(renderer.SurfaceRadiance, p.radiance)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.radiance == nil {
		return renderer.ErrNotInitialized
	}
	cfg := ctx.Config.Lighting
	light := Light{
		Dir:        raymath.SafeNormalize(ctx.SunDirRel, raymath.Up),
		Color:      mgl32.Vec3(cfg.LightColor),
		Background: mgl32.Vec3(cfg.Background),
	}
	bg := light.Background.Vec4(1)

	depth := ctx.ScalarOr(renderer.GBufferDepth, nil)
	nr := ctx.RGBAOr(renderer.GBufferNormalRoughness, nil)
	am := ctx.RGBAOr(renderer.GBufferAlbedoMetalness, nil)
	if depth == nil || nr == nil || am == nil {
		p.radiance.Fill(bg)
		ctx.SetTexture(renderer.SurfaceRadiance, p.radiance)
		return nil
	}

	shade := ModelFor(cfg.Model)
	ctx.Rows(func(y int) {
		out := p.radiance.Row(y)
		d, n, a := depth.Row(y), nr.Row(y), am.Row(y)
		for x := range out {
			if !raymath.IsFinite(d[x]) {
				out[x] = bg
				continue
			}
			s := Surface{
				Normal:    raymath.SafeNormalize(n[x].Vec3(), raymath.Up),
				Roughness: n[x].W(),
				Albedo:    a[x].Vec3(),
			}
			out[x] = shade(s, ctx.RayDirection(x, y), light).Vec4(1)
		}
	})
	ctx.SetTexture(renderer.SurfaceRadiance, p.radiance)
	return nil
}

func (p *Pass) Shutdown() error {
	p.radiance = nil
	return nil
}
