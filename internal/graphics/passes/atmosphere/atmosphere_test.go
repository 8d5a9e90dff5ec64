package atmosphere_test

import (
	"testing"

	"yaws/internal/config"
	"yaws/internal/graphics/passes/atmosphere"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planet = raymath.Body{Center: mgl32.Vec3{0, -6_371_000, 0}, Radius: 6_360_000}

func TestDensityProfile(t *testing.T) {
	assert.Equal(t, float32(1), atmosphere.Density(0, 0.0001))
	assert.Equal(t, float32(1), atmosphere.Density(-500, 0.0001))
	assert.InDelta(t, 0.3679, atmosphere.Density(10000, 0.0001), 1e-4)
	assert.Less(t, atmosphere.Density(20000, 0.0001), atmosphere.Density(10000, 0.0001))
}

func TestZeroLengthSegmentPassesSurfaceThrough(t *testing.T) {
	cfg := config.DefaultPipeline().Atmosphere
	p := mgl32.Vec3{0, 100, 0}
	r := atmosphere.March(p, p, mgl32.Vec3{0, 1, 0}, planet, cfg, nil)
	assert.Equal(t, float32(1), r.Transmittance)
	assert.Equal(t, mgl32.Vec3{}, r.Scattering)

	surface := mgl32.Vec3{0.2, 0.4, 0.8}
	assert.Equal(t, surface, atmosphere.Composite(r, surface, mgl32.Vec3{}, 1))
}

func TestTransmittanceMonotonic(t *testing.T) {
	cfg := config.DefaultPipeline().Atmosphere
	cfg.Extinction = 0.00002
	var seen []float32
	r := atmosphere.March(mgl32.Vec3{}, mgl32.Vec3{50_000, 20_000, 0}, mgl32.Vec3{0, 1, 0}, planet, cfg, func(t float32) {
		seen = append(seen, t)
	})
	require.Len(t, seen, cfg.Steps)
	prev := float32(1)
	for i, v := range seen {
		require.LessOrEqualf(t, v, prev, "step %d", i)
		prev = v
	}
	assert.Less(t, r.Transmittance, float32(1))
	assert.Greater(t, r.Transmittance, float32(0))
	// Scattering is tinted by the scatter color.
	assert.Greater(t, r.Scattering.Z(), r.Scattering.X())
}

func TestComposite(t *testing.T) {
	r := atmosphere.Result{Scattering: mgl32.Vec3{0.1, 0.1, 0.1}, Transmittance: 0.5}
	c := atmosphere.Composite(r, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0.2, 0.2, 0.2}, 0.5)
	assert.InDelta(t, 0.1+0.2+0.25, c.X(), 1e-6)
}

func TestPassEmptySegments(t *testing.T) {
	ctx := renderer.NewRenderContext(2, 2)
	ctx.SetTexture(renderer.AtmStartWS, renderer.NewRGBBuffer(2, 2))
	ctx.SetTexture(renderer.AtmEndWS, renderer.NewRGBBuffer(2, 2))
	surface := renderer.NewRGBABuffer(2, 2)
	surface.Fill(mgl32.Vec4{0.3, 0.2, 0.1, 1})
	ctx.SetTexture(renderer.SurfaceRadiance, surface)

	p := atmosphere.New()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))

	color := ctx.RGBOr(renderer.AtmosphereColor, nil)
	trans := ctx.ScalarOr(renderer.AtmosphereTransmittance, nil)
	require.NotNil(t, color)
	for i := range color.Pix {
		assert.Equal(t, mgl32.Vec3{0.3, 0.2, 0.1}, color.Pix[i])
		assert.Equal(t, float32(1), trans.Pix[i])
	}
}

func TestPassAppliesClouds(t *testing.T) {
	ctx := renderer.NewRenderContext(1, 1)
	surface := renderer.NewRGBABuffer(1, 1)
	surface.Fill(mgl32.Vec4{1, 1, 1, 1})
	cloudT := renderer.NewRGBABuffer(1, 1)
	cloudT.Fill(mgl32.Vec4{0.25, 0.25, 0.25, 1})
	cloudL := renderer.NewRGBABuffer(1, 1)
	cloudL.Fill(mgl32.Vec4{0.5, 0.5, 0.5, 1})
	ctx.SetTexture(renderer.SurfaceRadiance, surface)
	ctx.SetTexture(renderer.CloudTransmittance, cloudT)
	ctx.SetTexture(renderer.CloudScatteredLight, cloudL)

	p := atmosphere.New()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))
	// No segment: 0.5 cloud light + 1 × 1 × 0.25.
	assert.InDelta(t, 0.75, ctx.RGBOr(renderer.AtmosphereColor, nil).At(0, 0).X(), 1e-6)
}
