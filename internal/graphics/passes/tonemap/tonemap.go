// Package tonemap maps unbounded radiance to displayable color.
package tonemap

import (
	"yaws/internal/config"
	"yaws/internal/graphics/renderer"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Operator maps one exposure-scaled channel into [0, 1).
type Operator func(x float32) float32

func Reinhard(x float32) float32 { return x / (x + 1) }

func Exponential(x float32) float32 { return 1 - math32.Exp(-x) }

// OperatorFor maps a configured name to an operator. Unknown names use Reinhard.
func OperatorFor(name string) Operator {
	if name == config.TonemapExponential {
		return Exponential
	}
	return Reinhard
}

// Channel tonemaps a single value: exposure, operator, optional gamma, then a
// clamp to [0, 1]. Negative and NaN input map to 0, +Inf to 1.
func Channel(v float32, op Operator, exposure, gamma float32) float32 {
	if !(v > 0) {
		return 0
	}
	x := v * exposure
	if math32.IsInf(x, 1) {
		return 1
	}
	c := op(x)
	if gamma > 0 {
		c = math32.Pow(c, 1/gamma)
	}
	if !(c > 0) {
		return 0
	}
	return min(c, 1)
}

// Map tonemaps an RGB color and returns it with alpha 1.
func Map(c mgl32.Vec3, cfg config.Tonemap) mgl32.Vec4 {
	op := OperatorFor(cfg.Operator)
	return mgl32.Vec4{
		Channel(c[0], op, cfg.Exposure, cfg.Gamma),
		Channel(c[1], op, cfg.Exposure, cfg.Gamma),
		Channel(c[2], op, cfg.Exposure, cfg.Gamma),
		1,
	}
}

// Pass is the composite and tonemap stage. It reads the atmosphere composite
// and falls back to the bare surface radiance when that is absent.
type Pass struct {
	final *renderer.RGBABuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "CompositeTonemap" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Reads: []renderer.ResourceDecl{
			{Name: renderer.AtmosphereColor, Kind: renderer.KindRGB, Optional: true},
			{Name: renderer.SurfaceRadiance, Kind: renderer.KindRGBA, Optional: true},
		},
		Writes: []renderer.ResourceDecl{
			{Name: renderer.FinalColor, Kind: renderer.KindRGBA},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	p.final = renderer.ReuseRGBA(p.final, ctx.Width, ctx.Height)
	p.final.Fill(mgl32.Vec4{0, 0, 0, 1})
	ctx.SetTexture(renderer.FinalColor, p.final)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.final == nil {
		return renderer.ErrNotInitialized
	}
	cfg := ctx.Config.Tonemap
	atm := ctx.RGBOr(renderer.AtmosphereColor, nil)
	surface := ctx.RGBAOr(renderer.SurfaceRadiance, nil)
	if atm == nil && surface == nil {
		p.final.Fill(mgl32.Vec4{0, 0, 0, 1})
		ctx.SetTexture(renderer.FinalColor, p.final)
		return nil
	}

	ctx.Rows(func(y int) {
		out := p.final.Row(y)
		for x := range out {
			if atm != nil {
				out[x] = Map(atm.At(x, y), cfg)
			} else {
				out[x] = Map(surface.At(x, y).Vec3(), cfg)
			}
		}
	})
	ctx.SetTexture(renderer.FinalColor, p.final)
	return nil
}

func (p *Pass) Shutdown() error {
	p.final = nil
	return nil
}
