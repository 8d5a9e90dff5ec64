// Package geometry classifies every view ray against the planet and its
// atmosphere shell and records the hit distances.
package geometry

import (
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Spheres is the geometry a ray is classified against, relative to the camera.
type Spheres struct {
	Center   mgl32.Vec3
	Planet   float32
	AtmInner float32
	AtmOuter float32
}

// Sample is the classification of one ray.
type Sample struct {
	Depth    float32 // distance to the planet, +Inf on a miss
	AtmEntry float32 // +Inf when the atmosphere is not hit
	AtmExit  float32
	Mask     uint8
}

// Classify intersects a camera ray (origin at 0) with the spheres.
func Classify(dir mgl32.Vec3, s Spheres) Sample {
	var origin mgl32.Vec3
	out := Sample{Depth: raymath.Inf, AtmEntry: raymath.Inf, AtmExit: raymath.Inf}

	outer := raymath.IntersectSphere(origin, dir, s.Center, s.AtmOuter)
	if outer.Hit && outer.Far > 0 {
		entry := max(outer.Near, 0)
		exit := outer.Far
		// Narrowed by the inner shell when it lies in front of the camera.
		inner := raymath.IntersectSphere(origin, dir, s.Center, s.AtmInner)
		if inner.Hit && inner.Near > 0 {
			entry = max(entry, inner.Near)
			exit = min(exit, inner.Far)
		}
		out.AtmEntry, out.AtmExit = entry, exit
		out.Mask |= renderer.MaskAtmosphere
	}

	planet := raymath.IntersectSphere(origin, dir, s.Center, s.Planet)
	if planet.Hit && planet.Far > 0 {
		out.Depth = max(planet.Near, 0)
		out.Mask |= renderer.MaskTerrain
	}

	if out.Mask == 0 {
		out.Mask = renderer.MaskSpace
	}
	return out
}

// Pass is the planetary depth and geometry classification stage.
type Pass struct {
	depth *renderer.ScalarBuffer
	entry *renderer.ScalarBuffer
	exit  *renderer.ScalarBuffer
	mask  *renderer.MaskBuffer
}

var _ renderer.Pass = (*Pass)(nil)

func New() *Pass { return &Pass{} }

func (p *Pass) Name() string { return "PlanetaryDepthGeometry" }

func (p *Pass) Resources() renderer.PassResources {
	return renderer.PassResources{
		Writes: []renderer.ResourceDecl{
			{Name: renderer.DepthPlanet, Kind: renderer.KindScalar},
			{Name: renderer.DepthAtmEntry, Kind: renderer.KindScalar},
			{Name: renderer.DepthAtmExit, Kind: renderer.KindScalar},
			{Name: renderer.GeometryMask, Kind: renderer.KindMask},
		},
	}
}

func (p *Pass) Init(ctx *renderer.RenderContext) error {
	w, h := ctx.Width, ctx.Height
	p.depth = renderer.ReuseScalar(p.depth, w, h)
	p.entry = renderer.ReuseScalar(p.entry, w, h)
	p.exit = renderer.ReuseScalar(p.exit, w, h)
	p.mask = renderer.ReuseMask(p.mask, w, h)
	p.depth.Fill(raymath.Inf)
	p.entry.Fill(raymath.Inf)
	p.exit.Fill(raymath.Inf)
	for i := range p.mask.Pix {
		p.mask.Pix[i] = renderer.MaskSpace
	}
	p.publish(ctx)
	return nil
}

func (p *Pass) Execute(_ float64, ctx *renderer.RenderContext) error {
	if p.depth == nil {
		return renderer.ErrNotInitialized
	}
	s := Spheres{
		Center:   ctx.PlanetCenterRel,
		Planet:   ctx.PlanetRadius,
		AtmInner: ctx.AtmInnerRadius,
		AtmOuter: ctx.AtmOuterRadius,
	}
	ctx.Rows(func(y int) {
		depth, entry, exit, mask := p.depth.Row(y), p.entry.Row(y), p.exit.Row(y), p.mask.Row(y)
		for x := range depth {
			c := Classify(ctx.RayDirection(x, y), s)
			depth[x] = c.Depth
			entry[x] = c.AtmEntry
			exit[x] = c.AtmExit
			mask[x] = c.Mask
		}
	})
	p.publish(ctx)
	return nil
}

func (p *Pass) publish(ctx *renderer.RenderContext) {
	ctx.SetTexture(renderer.DepthPlanet, p.depth)
	ctx.SetTexture(renderer.DepthAtmEntry, p.entry)
	ctx.SetTexture(renderer.DepthAtmExit, p.exit)
	ctx.SetTexture(renderer.GeometryMask, p.mask)
}

func (p *Pass) Shutdown() error {
	p.depth, p.entry, p.exit, p.mask = nil, nil, nil, nil
	return nil
}
