// Package camera provides the free-flying view used by the windowed app.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch keeps the camera just short of looking straight up or down.
const MaxPitch = 0.499 * math32.Pi

// Camera is a free-flying camera. Position is kept in world space but the
// view matrix only rotates; the renderer moves the planet instead.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // radians, 0 looks down -Z
	Pitch    float32 // radians, positive looks up

	AspectRatio float32
	FOV         float32 // degrees
	NearPlane   float32
	FarPlane    float32
}

func New(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetAspect(width, height)
	return c
}

// SetAspect updates the aspect ratio; a zero height leaves it unchanged.
func (c *Camera) SetAspect(width, height int) {
	if height <= 0 || width <= 0 {
		if c.AspectRatio == 0 {
			c.AspectRatio = 1
		}
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Rotate adds yaw and pitch deltas and clamps the pitch.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw = math32.Mod(c.Yaw+dYaw, 2*math32.Pi)
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return mgl32.Vec3{sy * cp, sp, -cy * cp}
}

// Right returns the unit right vector in the horizontal plane.
func (c *Camera) Right() mgl32.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	return mgl32.Vec3{cy, 0, sy}
}

// Move translates the camera along its own axes.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Front().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// GetViewMatrix returns the rotation-only view matrix.
func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(mgl32.Vec3{}, c.Front(), mgl32.Vec3{0, 1, 0})
}

// InvViewProj is the clip-to-camera-relative-world matrix fed to the renderer.
func (c *Camera) InvViewProj() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix()).Inv()
}
