// Package atmosphere integrates single scattering along the cached
// atmosphere segment and composites it over the lit surface and clouds.
package atmosphere

import (
	"yaws/internal/config"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Density is the exponential density profile at altitude h. Altitudes below
// the surface are treated as the surface.
func Density(h, falloff float32) float32 {
	return math32.Exp(-max(h, 0) * falloff)
}

// Result is the outcome of one atmosphere march.
type Result struct {
	Scattering    mgl32.Vec3
	Transmittance float32
}

// March integrates the atmosphere between start and end. sun must be unit
// length. visit, when non-nil, sees the running transmittance after every
// sample. A zero-length segment returns full transmittance and no light.
func March(start, end, sun mgl32.Vec3, planet raymath.Body, cfg config.Atmosphere, visit func(t float32)) Result {
	res := Result{Transmittance: 1}
	dir, length := raymath.Segment(start, end)
	if length == 0 || cfg.Steps <= 0 {
		return res
	}
	step := length / float32(cfg.Steps)
	phase := max(dir.Dot(sun), 0)

	var opticalDepth, inScatter float32
	for i := 0; i < cfg.Steps; i++ {
		p := start.Add(dir.Mul((float32(i) + 0.5) * step))
		density := Density(planet.Altitude(p), cfg.DensityFalloff)
		opticalDepth += density * step * cfg.Extinction
		res.Transmittance = math32.Exp(-opticalDepth)
		inScatter += phase * density * res.Transmittance * step
		if visit != nil {
			visit(res.Transmittance)
		}
	}
	res.Scattering = mgl32.Vec3(cfg.ScatterColor).Mul(inScatter)
	return res
}

// Composite combines the terms of one pixel:
// scattering + cloud light + surface × atmosphere transmittance × cloud transmittance.
func Composite(r Result, surface, cloudLight mgl32.Vec3, cloudT float32) mgl32.Vec3 {
	return r.Scattering.Add(cloudLight).Add(surface.Mul(r.Transmittance * cloudT))
}

// Pass is the atmospheric integration stage.
type Pass struct {
	color         *renderer.RGBBuffer
	transmittance *renderer.ScalarBuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "AtmosphericIntegration" }

// Resources declares the cloud buffers optional: without the cloud pass the
// layer is treated as fully transparent.
func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Reads: []renderer.ResourceDecl{
			{Name: renderer.AtmStartWS, Kind: renderer.KindRGB},
			{Name: renderer.AtmEndWS, Kind: renderer.KindRGB},
			{Name: renderer.SurfaceRadiance, Kind: renderer.KindRGBA},
			{Name: renderer.CloudTransmittance, Kind: renderer.KindRGBA, Optional: true},
			{Name: renderer.CloudScatteredLight, Kind: renderer.KindRGBA, Optional: true},
		},
		Writes: []renderer.ResourceDecl{
			{Name: renderer.AtmosphereColor, Kind: renderer.KindRGB},
			{Name: renderer.AtmosphereTransmittance, Kind: renderer.KindScalar},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	p.color = renderer.ReuseRGB(p.color, ctx.Width, ctx.Height)
	p.transmittance = renderer.ReuseScalar(p.transmittance, ctx.Width, ctx.Height)
	p.color.Fill(mgl32.Vec3{})
	p.transmittance.Fill(1)
	p.publish(ctx)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.color == nil {
		return renderer.ErrNotInitialized
	}
	starts := ctx.RGBOr(renderer.AtmStartWS, nil)
	ends := ctx.RGBOr(renderer.AtmEndWS, nil)
	surface := ctx.RGBAOr(renderer.SurfaceRadiance, nil)
	cloudT := ctx.RGBAOr(renderer.CloudTransmittance, nil)
	cloudL := ctx.RGBAOr(renderer.CloudScatteredLight, nil)

	cfg := ctx.Config.Atmosphere
	sun := raymath.SafeNormalize(ctx.SunDirRel, raymath.Up)
	planet := raymath.Body{Center: ctx.PlanetCenterRel, Radius: ctx.PlanetRadius}
	ctx.Rows(func(y int) {
		color, trans := p.color.Row(y), p.transmittance.Row(y)
		for x := range color {
			r := Result{Transmittance: 1}
			if starts != nil && ends != nil {
				r = March(starts.At(x, y), ends.At(x, y), sun, planet, cfg, nil)
			}
			var surf, light mgl32.Vec3
			ct := float32(1)
			if surface != nil {
				surf = surface.At(x, y).Vec3()
			}
			if cloudT != nil {
				ct = cloudT.At(x, y).X()
			}
			if cloudL != nil {
				light = cloudL.At(x, y).Vec3()
			}
			color[x] = Composite(r, surf, light, ct)
			trans[x] = r.Transmittance
		}
	})
	p.publish(ctx)
	return nil
}

func (p *Pass) publish(ctx *renderer.RenderContext) {
	ctx.SetTexture(renderer.AtmosphereColor, p.color)
	ctx.SetTexture(renderer.AtmosphereTransmittance, p.transmittance)
}

func (p *Pass) Shutdown() error {
	p.color, p.transmittance = nil, nil
	return nil
}
