// Package clouds marches the cached atmosphere segment through a cloud layer
// and publishes its transmittance and single-scattered sunlight.
package clouds

import (
	"yaws/internal/config"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Density is the cloud density at altitude h: zero outside [bandMin, bandMax],
// rising linearly from 0 at the bottom of the band to 1 at the top.
func Density(h, bandMin, bandMax float32) float32 {
	if bandMax <= bandMin || h < bandMin || h > bandMax {
		return 0
	}
	return (h - bandMin) / (bandMax - bandMin)
}

// Result is the outcome of one cloud march.
type Result struct {
	Transmittance float32
	Scattered     float32
	Steps         int // samples actually taken
}

// March integrates the cloud layer between start and end. sun must be unit
// length. visit, when non-nil, sees the running transmittance after every
// sample. A zero-length segment returns full transmittance and no light.
func March(start, end, sun mgl32.Vec3, planet raymath.Body, cfg config.Clouds, visit func(t float32)) Result {
	res := Result{Transmittance: 1}
	dir, length := raymath.Segment(start, end)
	if length == 0 || cfg.Steps <= 0 {
		return res
	}
	step := length / float32(cfg.Steps)
	phase := max(dir.Dot(sun), 0)

	var opticalDepth float32
	for i := 0; i < cfg.Steps; i++ {
		p := start.Add(dir.Mul((float32(i) + 0.5) * step))
		density := Density(planet.Altitude(p), cfg.BandMin, cfg.BandMax)
		opticalDepth += density * step * cfg.Extinction
		res.Transmittance = math32.Exp(-opticalDepth)
		res.Scattered += phase * density * res.Transmittance * step
		res.Steps = i + 1
		if visit != nil {
			visit(res.Transmittance)
		}
		if res.Transmittance < cfg.Threshold {
			break
		}
	}
	return res
}

// Pass is the cloud lighting and shadow prepass.
type Pass struct {
	transmittance *renderer.RGBABuffer
	scattered     *renderer.RGBABuffer
	shadow        *renderer.ScalarBuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "CloudLighting" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Reads: []renderer.ResourceDecl{
			{Name: renderer.AtmStartWS, Kind: renderer.KindRGB},
			{Name: renderer.AtmEndWS, Kind: renderer.KindRGB},
		},
		Writes: []renderer.ResourceDecl{
			{Name: renderer.CloudTransmittance, Kind: renderer.KindRGBA},
			{Name: renderer.CloudScatteredLight, Kind: renderer.KindRGBA},
			{Name: renderer.CloudShadowMask, Kind: renderer.KindScalar},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	w, h := ctx.Width, ctx.Height
	p.transmittance = renderer.ReuseRGBA(p.transmittance, w, h)
	p.scattered = renderer.ReuseRGBA(p.scattered, w, h)
	p.shadow = renderer.ReuseScalar(p.shadow, w, h)
	p.clear()
	p.publish(ctx)
	return nil
}

// clear sets every pixel to the empty-segment result.
func (p *Pass) clear() {
	p.transmittance.Fill(mgl32.Vec4{1, 1, 1, 1})
	p.scattered.Fill(mgl32.Vec4{0, 0, 0, 1})
	p.shadow.Fill(1)
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.transmittance == nil {
		return renderer.ErrNotInitialized
	}
	starts := ctx.RGBOr(renderer.AtmStartWS, nil)
	ends := ctx.RGBOr(renderer.AtmEndWS, nil)
	if starts == nil || ends == nil {
		p.clear()
		p.publish(ctx)
		return nil
	}

	cfg := ctx.Config.Clouds
	sun := raymath.SafeNormalize(ctx.SunDirRel, raymath.Up)
	planet := raymath.Body{Center: ctx.PlanetCenterRel, Radius: ctx.PlanetRadius}
	ctx.Rows(func(y int) {
		tr, sc, sh := p.transmittance.Row(y), p.scattered.Row(y), p.shadow.Row(y)
		s, e := starts.Row(y), ends.Row(y)
		for x := range tr {
			r := March(s[x], e[x], sun, planet, cfg, nil)
			tr[x] = mgl32.Vec4{r.Transmittance, r.Transmittance, r.Transmittance, 1}
			sc[x] = mgl32.Vec4{r.Scattered, r.Scattered, r.Scattered, 1}
			sh[x] = r.Transmittance
		}
	})
	p.publish(ctx)
	return nil
}

func (p *Pass) publish(ctx *renderer.RenderContext) {
	ctx.SetTexture(renderer.CloudTransmittance, p.transmittance)
	ctx.SetTexture(renderer.CloudScatteredLight, p.scattered)
	ctx.SetTexture(renderer.CloudShadowMask, p.shadow)
}

func (p *Pass) Shutdown() error {
	p.transmittance, p.scattered, p.shadow = nil, nil, nil
	return nil
}
