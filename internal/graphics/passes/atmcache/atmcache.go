// Package atmcache turns the per-pixel atmosphere entry and exit distances
// into camera-relative world-space points for the volumetric passes.
package atmcache

import (
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Endpoints returns origin + dir*entry and origin + dir*exit with the camera
// as origin. Either distance being non-finite yields two zero points, which
// the raymarching passes read as an empty segment.
func Endpoints(dir mgl32.Vec3, entry, exit float32) (start, end mgl32.Vec3) {
	if !raymath.IsFinite(entry) || !raymath.IsFinite(exit) {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	return dir.Mul(entry), dir.Mul(exit)
}

// Pass is the atmospheric entry/exit cache stage.
type Pass struct {
	start *renderer.RGBBuffer
	end   *renderer.RGBBuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "AtmosphericEntryCache" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Reads: []renderer.ResourceDecl{
			{Name: renderer.DepthAtmEntry, Kind: renderer.KindScalar},
			{Name: renderer.DepthAtmExit, Kind: renderer.KindScalar},
		},
		Writes: []renderer.ResourceDecl{
			{Name: renderer.AtmStartWS, Kind: renderer.KindRGB},
			{Name: renderer.AtmEndWS, Kind: renderer.KindRGB},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	p.start = renderer.ReuseRGB(p.start, ctx.Width, ctx.Height)
	p.end = renderer.ReuseRGB(p.end, ctx.Width, ctx.Height)
	p.start.Fill(mgl32.Vec3{})
	p.end.Fill(mgl32.Vec3{})
	p.publish(ctx)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.start == nil {
		return renderer.ErrNotInitialized
	}
	entry := ctx.ScalarOr(renderer.DepthAtmEntry, nil)
	exit := ctx.ScalarOr(renderer.DepthAtmExit, nil)
	if entry == nil || exit == nil {
		p.start.Fill(mgl32.Vec3{})
		p.end.Fill(mgl32.Vec3{})
		p.publish(ctx)
		return nil
	}

	ctx.Rows(func(y int) {
		start, end := p.start.Row(y), p.end.Row(y)
		in, out := entry.Row(y), exit.Row(y)
		for x := range start {
			start[x], end[x] = Endpoints(ctx.RayDirection(x, y), in[x], out[x])
		}
	})
	p.publish(ctx)
	return nil
}

func (p *Pass) publish(ctx *renderer.RenderContext) {
	ctx.SetTexture(renderer.AtmStartWS, p.start)
	ctx.SetTexture(renderer.AtmEndWS, p.end)
}

func (p *Pass) Shutdown() error {
	p.start, p.end = nil, nil
	return nil
}
