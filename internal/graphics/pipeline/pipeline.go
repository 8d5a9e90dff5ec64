// Package pipeline assembles the standard planet frame graph and owns the
// render context and worker pool it runs on.
package pipeline

import (
	"fmt"

	"yaws/internal/config"
	"yaws/internal/graphics/passes/atmcache"
	"yaws/internal/graphics/passes/atmosphere"
	"yaws/internal/graphics/passes/clouds"
	"yaws/internal/graphics/passes/gbuffer"
	"yaws/internal/graphics/passes/geometry"
	"yaws/internal/graphics/passes/lighting"
	"yaws/internal/graphics/passes/tonemap"
	"yaws/internal/graphics/renderer"
	"yaws/internal/kernel"

	"github.com/go-gl/mathgl/mgl32"
)

// StandardPasses returns fresh instances of the seven stages in execution order.
func StandardPasses() []renderer.Pass {
	return []renderer.Pass{
		geometry.New(),
		atmcache.New(),
		clouds.New(),
		gbuffer.New(),
		lighting.New(),
		atmosphere.New(),
		tonemap.New(),
	}
}

// NewStandard builds the seven-pass frame graph. Dependencies are validated
// here, before any frame runs.
func NewStandard() (*renderer.FrameGraph, error) {
	return renderer.NewFrameGraph(StandardPasses()...)
}

// Renderer drives one frame graph over one render context.
type Renderer struct {
	graph *renderer.FrameGraph
	ctx   *renderer.RenderContext
	pool  *kernel.Pool

	planetCenter mgl32.Vec3 // world space
	cameraPos    mgl32.Vec3
}

// New creates the context and worker pool from s, builds the standard graph
// and initializes it.
func New(s config.Settings) (*Renderer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g, err := NewStandard()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		graph: g,
		ctx:   renderer.NewRenderContext(s.Width, s.Height),
		pool:  kernel.NewPool(s.Workers),
	}
	r.ctx.Kernel = r.pool
	r.applyScene(s)

	if err := g.Init(r.ctx); err != nil {
		r.pool.Shutdown()
		return nil, fmt.Errorf("could not initialize frame graph: %w", err)
	}
	return r, nil
}

func (r *Renderer) applyScene(s config.Settings) {
	r.planetCenter = mgl32.Vec3(s.Planet.Center)
	r.ctx.PlanetRadius = s.Planet.Radius
	r.ctx.AtmInnerRadius = s.Planet.AtmInnerRadius
	r.ctx.AtmOuterRadius = s.Planet.AtmOuterRadius
	r.ctx.SetSunDirection(mgl32.Vec3(s.Planet.SunDirection))
	r.ctx.Config = s.Pipeline
	r.ctx.PlanetCenterRel = r.planetCenter.Sub(r.cameraPos)
}

// Apply switches to new settings between frames. A resolution change
// re-initializes every pass. The worker count is fixed at creation.
func (r *Renderer) Apply(s config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.applyScene(s)
	return r.Resize(s.Width, s.Height)
}

// SetCamera sets the clip-to-world matrix of a camera-relative view and the
// camera's world position, which moves the planet into the camera frame.
func (r *Renderer) SetCamera(invViewProj mgl32.Mat4, position mgl32.Vec3) {
	r.ctx.InvViewProj = invViewProj
	r.cameraPos = position
	r.ctx.PlanetCenterRel = r.planetCenter.Sub(position)
}

// SetSunDirection points the light; zero vectors fall back to straight up.
func (r *Renderer) SetSunDirection(dir mgl32.Vec3) {
	r.ctx.SetSunDirection(dir)
}

// SunDirection returns the current unit light direction.
func (r *Renderer) SunDirection() mgl32.Vec3 { return r.ctx.SunDirRel }

// Resize re-initializes the graph for a new target size.
func (r *Renderer) Resize(width, height int) error {
	return r.graph.Resize(width, height)
}

// Frame runs every pass once.
func (r *Renderer) Frame(dt float64) error {
	return r.graph.Execute(dt, r.ctx)
}

// FinalColor returns the tonemapped output of the last frame.
func (r *Renderer) FinalColor() *renderer.RGBABuffer {
	return r.ctx.RGBAOr(renderer.FinalColor, nil)
}

// Size returns the current render target size.
func (r *Renderer) Size() (int, int) { return r.ctx.Width, r.ctx.Height }

// Context exposes the render context, mainly for diagnostics.
func (r *Renderer) Context() *renderer.RenderContext { return r.ctx }

// PassOrder returns the pass names in execution order.
func (r *Renderer) PassOrder() []string { return r.graph.PassOrder() }

// Close shuts the graph down and stops the workers. Safe to call twice.
func (r *Renderer) Close() error {
	err := r.graph.Shutdown()
	r.pool.Shutdown()
	return err
}
