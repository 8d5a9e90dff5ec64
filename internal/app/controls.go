// Package app runs the render loop: it steers the camera and sun, applies
// config reloads between frames and writes snapshots and recordings.
package app

import (
	"yaws/internal/graphics/camera"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	MoveSpeed        = 500.0 // m/s
	BoostFactor      = 20.0
	MouseSensitivity = 0.002 // rad per pixel
	SunSpeed         = 0.5   // rad/s
)

// Intent is one frame of user input, independent of the window system.
// Axes are in [-1, 1].
type Intent struct {
	Forward, Right, Up float32
	Boost              bool
	Sun                float32 // +1 rotates the sun one way, -1 the other
	LookX, LookY       float64 // cursor delta in pixels
}

// Steer moves and turns cam and returns the rotated sun direction.
func (in Intent) Steer(cam *camera.Camera, sun mgl32.Vec3, dt float64) mgl32.Vec3 {
	step := float32(MoveSpeed * dt)
	if in.Boost {
		step *= BoostFactor
	}
	if in.Forward != 0 || in.Right != 0 || in.Up != 0 {
		cam.Move(in.Forward*step, in.Right*step, in.Up*step)
	}
	if in.LookX != 0 || in.LookY != 0 {
		cam.Rotate(float32(in.LookX*MouseSensitivity), float32(-in.LookY*MouseSensitivity))
	}
	if in.Sun != 0 {
		sun = RotateSun(sun, in.Sun*float32(SunSpeed*dt))
	}
	return sun
}

// RotateSun turns dir about the vertical axis by angle radians.
func RotateSun(dir mgl32.Vec3, angle float32) mgl32.Vec3 {
	s, c := math32.Sincos(angle)
	return mgl32.Vec3{
		dir[0]*c + dir[2]*s,
		dir[1],
		-dir[0]*s + dir[2]*c,
	}
}
