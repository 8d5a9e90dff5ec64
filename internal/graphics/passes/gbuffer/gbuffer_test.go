package gbuffer_test

import (
	"testing"

	"yaws/internal/graphics/passes/gbuffer"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() *renderer.RenderContext {
	ctx := renderer.NewRenderContext(1, 1)
	ctx.PlanetCenterRel = mgl32.Vec3{0, 0, -10}
	ctx.PlanetRadius = 5
	return ctx
}

func TestForwardHit(t *testing.T) {
	ctx := newContext()
	ctx.InvViewProj = mgl32.Scale3D(1, 1, -1)
	p := gbuffer.New()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))

	depth := ctx.ScalarOr(renderer.GBufferDepth, nil)
	nr := ctx.RGBAOr(renderer.GBufferNormalRoughness, nil)
	am := ctx.RGBAOr(renderer.GBufferAlbedoMetalness, nil)
	require.NotNil(t, depth)
	assert.InDelta(t, 5, depth.At(0, 0), 1e-3)
	assert.InDelta(t, 1, nr.At(0, 0).Z(), 1e-3)
	assert.GreaterOrEqual(t, nr.At(0, 0).W(), float32(0.15))
	assert.LessOrEqual(t, nr.At(0, 0).W(), float32(0.6))
	assert.InDelta(t, gbuffer.Metalness, am.At(0, 0).W(), 1e-6)
	assert.Greater(t, am.At(0, 0).Vec3().Len(), float32(0))
}

func TestMissPlaceholder(t *testing.T) {
	ctx := newContext()
	p := gbuffer.New()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))

	assert.Equal(t, raymath.Inf, ctx.ScalarOr(renderer.GBufferDepth, nil).At(0, 0))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, ctx.RGBAOr(renderer.GBufferNormalRoughness, nil).At(0, 0))
	assert.Equal(t, mgl32.Vec4{}, ctx.RGBAOr(renderer.GBufferAlbedoMetalness, nil).At(0, 0))
}

type plane struct{ z float32 }

func (p plane) Distance(v mgl32.Vec3) float32 { return v.Z() - p.z }

func TestCustomSurface(t *testing.T) {
	ctx := newContext()
	p := gbuffer.NewWithSurface(func(*renderer.RenderContext) raymath.Surface { return plane{z: 3} })
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))
	// The camera is already below the plane z = 3, so the trace stops at t = 0.
	assert.Equal(t, float32(0), ctx.ScalarOr(renderer.GBufferDepth, nil).At(0, 0))
}

func TestPlanetScaleHit(t *testing.T) {
	s := raymath.Sphere{Center: mgl32.Vec3{0, -6_371_000, 0}, Radius: 6_360_000}
	a := gbuffer.Shade(s, mgl32.Vec3{0, -1, 0}, 128, 0.0005, 1e7)
	require.True(t, raymath.IsFinite(a.Depth))
	assert.InDelta(t, 11_000, a.Depth, 0.5)
	assert.InDelta(t, 1, a.Normal.Y(), 1e-3)
}
