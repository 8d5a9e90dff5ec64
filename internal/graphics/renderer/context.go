package renderer

import (
	"yaws/internal/config"
	"yaws/internal/graphics/raymath"
	"yaws/internal/kernel"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext is the per-frame state shared by every pass of one frame
// graph. The caller updates the camera and sun fields between frames; the
// passes read them and exchange buffers through the resource table.
//
// There is no locking: passes run one at a time and each resource has a
// single writer per frame.
type RenderContext struct {
	Width, Height int

	// InvViewProj maps clip space to the camera-relative world frame.
	InvViewProj mgl32.Mat4
	// SunDirRel points toward the light. Use SetSunDirection to keep it unit length.
	SunDirRel mgl32.Vec3

	PlanetCenterRel mgl32.Vec3
	PlanetRadius    float32
	AtmInnerRadius  float32
	AtmOuterRadius  float32

	// Time is the accumulated frame time in seconds.
	Time float64

	// Config holds the per-pass parameters.
	Config config.Pipeline

	// Kernel runs per-row work; nil runs rows serially.
	Kernel *kernel.Pool

	resources map[ResourceName]Buffer
}

// NewRenderContext returns a context with identity camera, sun straight up,
// and a unit planet at the origin.
func NewRenderContext(width, height int) *RenderContext {
	return &RenderContext{
		Width:          width,
		Height:         height,
		InvViewProj:    mgl32.Ident4(),
		SunDirRel:      raymath.Up,
		PlanetRadius:   1.0,
		AtmInnerRadius: 1.0,
		AtmOuterRadius: 1.1,
		Config:         config.DefaultPipeline(),
		resources:      make(map[ResourceName]Buffer),
	}
}

// SetSunDirection stores dir normalized; a zero vector falls back to straight up.
func (c *RenderContext) SetSunDirection(dir mgl32.Vec3) {
	c.SunDirRel = raymath.SafeNormalize(dir, raymath.Up)
}

// UpdateTime advances the accumulated time.
func (c *RenderContext) UpdateTime(dt float64) {
	c.Time += dt
}

// SetTexture inserts or overwrites a named resource.
func (c *RenderContext) SetTexture(name ResourceName, buf Buffer) {
	if c.resources == nil {
		c.resources = make(map[ResourceName]Buffer)
	}
	c.resources[name] = buf
}

// Texture returns the named resource, or def when it is absent.
func (c *RenderContext) Texture(name ResourceName, def Buffer) Buffer {
	if buf, ok := c.resources[name]; ok && buf != nil {
		return buf
	}
	return def
}

// HasTexture reports whether name is currently bound.
func (c *RenderContext) HasTexture(name ResourceName) bool {
	buf, ok := c.resources[name]
	return ok && buf != nil
}

// RemoveTexture unbinds name.
func (c *RenderContext) RemoveTexture(name ResourceName) {
	delete(c.resources, name)
}

// usable reports whether buf can be read as kind at the current resolution.
func (c *RenderContext) usable(name ResourceName, buf Buffer, kind ResourceKind) bool {
	if buf == nil {
		return false
	}
	if buf.Kind() != kind {
		Logger().Warn("resource kind mismatch", "resource", string(name), "want", kind.String(), "got", buf.Kind().String())
		return false
	}
	if w, h := buf.Size(); w != c.Width || h != c.Height {
		Logger().Warn("resource size mismatch", "resource", string(name), "width", w, "height", h)
		return false
	}
	return true
}

// ScalarOr returns the named scalar buffer, or def when it is missing, of
// another kind, or sized for a different resolution.
func (c *RenderContext) ScalarOr(name ResourceName, def *ScalarBuffer) *ScalarBuffer {
	buf := c.resources[name]
	if !c.usable(name, buf, KindScalar) {
		return def
	}
	return buf.(*ScalarBuffer)
}

// RGBOr is ScalarOr for RGB buffers.
func (c *RenderContext) RGBOr(name ResourceName, def *RGBBuffer) *RGBBuffer {
	buf := c.resources[name]
	if !c.usable(name, buf, KindRGB) {
		return def
	}
	return buf.(*RGBBuffer)
}

// RGBAOr is ScalarOr for RGBA buffers.
func (c *RenderContext) RGBAOr(name ResourceName, def *RGBABuffer) *RGBABuffer {
	buf := c.resources[name]
	if !c.usable(name, buf, KindRGBA) {
		return def
	}
	return buf.(*RGBABuffer)
}

// MaskOr is ScalarOr for mask buffers.
func (c *RenderContext) MaskOr(name ResourceName, def *MaskBuffer) *MaskBuffer {
	buf := c.resources[name]
	if !c.usable(name, buf, KindMask) {
		return def
	}
	return buf.(*MaskBuffer)
}

// RayDirection reconstructs the view ray through the center of pixel (x, y).
func (c *RenderContext) RayDirection(x, y int) mgl32.Vec3 {
	return raymath.ReconstructDirection(c.InvViewProj, x, y, c.Width, c.Height)
}

// Rows runs fn for every image row, in parallel when a kernel pool is attached.
func (c *RenderContext) Rows(fn func(y int)) {
	c.Kernel.Rows(c.Height, fn)
}
