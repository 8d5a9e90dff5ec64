package geometry_test

import (
	"math/rand"
	"testing"

	"yaws/internal/graphics/passes/geometry"
	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookForward makes the single pixel of a 1x1 target look down -Z.
func lookForward() mgl32.Mat4 { return mgl32.Scale3D(1, 1, -1) }

func newContext(w, h int) *renderer.RenderContext {
	ctx := renderer.NewRenderContext(w, h)
	ctx.PlanetCenterRel = mgl32.Vec3{0, 0, -10}
	ctx.PlanetRadius = 5
	ctx.AtmInnerRadius = 5
	ctx.AtmOuterRadius = 6
	return ctx
}

func runOnce(t *testing.T, ctx *renderer.RenderContext) *geometry.Pass {
	t.Helper()
	p := geometry.New()
	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Execute(0, ctx))
	return p
}

func TestForwardRayHitsPlanet(t *testing.T) {
	ctx := newContext(1, 1)
	ctx.InvViewProj = lookForward()
	runOnce(t, ctx)

	depth := ctx.ScalarOr(renderer.DepthPlanet, nil)
	mask := ctx.MaskOr(renderer.GeometryMask, nil)
	require.NotNil(t, depth)
	require.NotNil(t, mask)
	assert.InDelta(t, 5.0, depth.At(0, 0), 1e-5)
	assert.NotZero(t, mask.At(0, 0)&renderer.MaskTerrain)
	assert.Equal(t, renderer.MaskAtmosphere|renderer.MaskTerrain, mask.At(0, 0))
}

func TestAwayRayIsSpace(t *testing.T) {
	ctx := newContext(1, 1)
	// Identity looks down +Z, away from the planet.
	runOnce(t, ctx)

	depth := ctx.ScalarOr(renderer.DepthPlanet, nil)
	mask := ctx.MaskOr(renderer.GeometryMask, nil)
	assert.Equal(t, raymath.Inf, depth.At(0, 0))
	assert.Equal(t, renderer.MaskSpace, mask.At(0, 0))
	assert.Equal(t, raymath.Inf, ctx.ScalarOr(renderer.DepthAtmEntry, nil).At(0, 0))
}

func TestAtmosphereShellSegment(t *testing.T) {
	c := geometry.Classify(mgl32.Vec3{0, 0, -1}, geometry.Spheres{
		Center:   mgl32.Vec3{0, 0, -10},
		Planet:   5,
		AtmInner: 5,
		AtmOuter: 6,
	})
	require.True(t, raymath.IsFinite(c.AtmEntry))
	require.True(t, raymath.IsFinite(c.AtmExit))
	assert.Less(t, c.AtmEntry, c.AtmExit)
	// Outer shell spans [4, 16], inner [5, 15]: entry max(4, 5), exit min(16, 15).
	assert.InDelta(t, 5, c.AtmEntry, 1e-5)
	assert.InDelta(t, 15, c.AtmExit, 1e-5)
}

func TestInnerShellBehindCameraLeavesSegment(t *testing.T) {
	// Camera inside the inner sphere: its near hit is behind, so no narrowing.
	c := geometry.Classify(mgl32.Vec3{0, 0, -1}, geometry.Spheres{
		Center:   mgl32.Vec3{0, 0, -1},
		Planet:   3,
		AtmInner: 4,
		AtmOuter: 6,
	})
	assert.Equal(t, float32(0), c.AtmEntry)
	assert.InDelta(t, 7, c.AtmExit, 1e-5)
}

func TestCameraInsideAtmosphere(t *testing.T) {
	// Looking up from inside the shell: entry clamps to the camera.
	c := geometry.Classify(mgl32.Vec3{0, 1, 0}, geometry.Spheres{
		Center:   mgl32.Vec3{0, -5.5, 0},
		Planet:   5,
		AtmInner: 5,
		AtmOuter: 6,
	})
	assert.Equal(t, float32(0), c.AtmEntry)
	assert.InDelta(t, 0.5, c.AtmExit, 1e-5)
	assert.Equal(t, renderer.MaskAtmosphere, c.Mask)
	assert.Equal(t, raymath.Inf, c.Depth)
}

func TestMaskNeverCombinesSpace(t *testing.T) {
	valid := make(map[uint8]bool)
	for _, m := range []uint8{
		renderer.MaskSpace,
		renderer.MaskAtmosphere,
		renderer.MaskTerrain,
		renderer.MaskAtmosphere | renderer.MaskTerrain,
	} {
		valid[m] = true
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		ctx := newContext(16, 12)
		ctx.PlanetCenterRel = mgl32.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
		ctx.PlanetRadius = 1 + rng.Float32()*4
		ctx.AtmInnerRadius = ctx.PlanetRadius
		// Some outer shells sit inside the planet, which yields TERRAIN alone.
		ctx.AtmOuterRadius = ctx.PlanetRadius * (0.5 + rng.Float32())
		proj := mgl32.Perspective(mgl32.DegToRad(70), 16.0/12.0, 0.1, 100)
		view := mgl32.HomogRotate3DY(rng.Float32() * 6.28).Mul4(mgl32.HomogRotate3DX(rng.Float32()*3 - 1.5))
		ctx.InvViewProj = proj.Mul4(view).Inv()
		runOnce(t, ctx)

		mask := ctx.MaskOr(renderer.GeometryMask, nil)
		depth := ctx.ScalarOr(renderer.DepthPlanet, nil)
		for j, m := range mask.Pix {
			require.Truef(t, valid[m], "case %d pixel %d mask %08b", i, j, m)
			if m&renderer.MaskTerrain != 0 {
				require.True(t, raymath.IsFinite(depth.Pix[j]))
				require.GreaterOrEqual(t, depth.Pix[j], float32(0))
			} else {
				require.Equal(t, raymath.Inf, depth.Pix[j])
			}
		}
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	ctx := newContext(24, 16)
	ctx.InvViewProj = mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 100).Inv()
	p := runOnce(t, ctx)
	first := append([]float32(nil), ctx.ScalarOr(renderer.DepthPlanet, nil).Pix...)
	require.NoError(t, p.Execute(0, ctx))
	assert.Equal(t, first, ctx.ScalarOr(renderer.DepthPlanet, nil).Pix)
}

func TestShutdownIsIdempotent(t *testing.T) {
	p := geometry.New()
	assert.NoError(t, p.Shutdown())
	assert.ErrorIs(t, p.Execute(0, newContext(1, 1)), renderer.ErrNotInitialized)
	assert.NoError(t, p.Shutdown())
}

func BenchmarkGeometry(b *testing.B) {
	ctx := newContext(320, 200)
	ctx.InvViewProj = mgl32.Perspective(mgl32.DegToRad(60), 1.6, 0.1, 100).Inv()
	p := geometry.New()
	if err := p.Init(ctx); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Execute(0, ctx)
	}
}
