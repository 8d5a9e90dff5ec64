package camera_test

import (
	"testing"

	"yaws/internal/graphics/camera"
	"yaws/internal/graphics/raymath"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDeltaf(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestDefaultOrientation(t *testing.T) {
	c := camera.New(900, 600)
	assert.Equal(t, float32(1.5), c.AspectRatio)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Front())
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Right())
}

func TestPitchClamped(t *testing.T) {
	c := camera.New(10, 10)
	c.Rotate(0, 10)
	assert.Equal(t, float32(camera.MaxPitch), c.Pitch)
	c.Rotate(0, -20)
	assert.Equal(t, float32(-camera.MaxPitch), c.Pitch)
	assert.False(t, math32.IsNaN(c.Front().Len()))
}

func TestZeroSizeKeepsAspect(t *testing.T) {
	c := camera.New(0, 0)
	assert.Equal(t, float32(1), c.AspectRatio)
	c.SetAspect(200, 100)
	c.SetAspect(200, 0)
	assert.Equal(t, float32(2), c.AspectRatio)
}

func TestMove(t *testing.T) {
	c := camera.New(10, 10)
	c.Move(2, 3, 1)
	assertVec(t, mgl32.Vec3{3, 1, -2}, c.Position)
}

func TestInvViewProjCenterRayIsFront(t *testing.T) {
	c := camera.New(900, 600)
	c.Position = mgl32.Vec3{100, 200, 300}
	c.Rotate(0.7, -0.4)
	dir := raymath.UnprojectDirection(c.InvViewProj(), 0, 0)
	assertVec(t, c.Front(), dir)
}
