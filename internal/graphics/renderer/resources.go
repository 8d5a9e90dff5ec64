package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ResourceKind tags the element type of a per-pixel buffer.
type ResourceKind int

const (
	KindScalar ResourceKind = iota
	KindRGB
	KindRGBA
	KindMask
)

func (k ResourceKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRGB:
		return "rgb"
	case KindRGBA:
		return "rgba"
	case KindMask:
		return "mask"
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// ResourceName is a well-known key in the render context resource table.
type ResourceName string

const (
	DepthPlanet   ResourceName = "depth_planet"
	DepthAtmEntry ResourceName = "depth_atm_entry"
	DepthAtmExit  ResourceName = "depth_atm_exit"
	GeometryMask  ResourceName = "geometry_mask"

	AtmStartWS ResourceName = "atm_start_ws"
	AtmEndWS   ResourceName = "atm_end_ws"

	CloudTransmittance  ResourceName = "cloud_transmittance"
	CloudScatteredLight ResourceName = "cloud_scattered_light"
	CloudShadowMask     ResourceName = "cloud_shadow_mask"

	GBufferDepth            ResourceName = "gbuffer_depth"
	GBufferNormalRoughness  ResourceName = "gbuffer_normal_roughness"
	GBufferAlbedoMetalness  ResourceName = "gbuffer_albedo_metalness"
	SurfaceRadiance         ResourceName = "surface_radiance"
	AtmosphereColor         ResourceName = "atmosphere_color"
	AtmosphereTransmittance ResourceName = "atmosphere_transmittance"
	FinalColor              ResourceName = "final_color"
)

// Geometry classification bits stored in GeometryMask.
const (
	MaskAtmosphere uint8 = 1
	MaskTerrain    uint8 = 2
	MaskWater      uint8 = 4 // reserved, never written
	MaskSpace      uint8 = 8
)

// ResourceDecl declares one resource a pass reads or writes.
type ResourceDecl struct {
	Name ResourceName
	Kind ResourceKind
	// Optional reads may be absent from the graph; the pass falls back to a default.
	Optional bool
}

// PassResources lists the declared inputs and outputs of a pass.
type PassResources struct {
	Reads  []ResourceDecl
	Writes []ResourceDecl
}

// Buffer is a per-pixel resource handle.
type Buffer interface {
	Kind() ResourceKind
	Size() (width, height int)
}

// ScalarBuffer holds one float32 per pixel, row-major, row 0 at the top.
type ScalarBuffer struct {
	Width, Height int
	Pix           []float32
}

func NewScalarBuffer(width, height int) *ScalarBuffer {
	return &ScalarBuffer{Width: width, Height: height, Pix: make([]float32, width*height)}
}

func (b *ScalarBuffer) Kind() ResourceKind  { return KindScalar }
func (b *ScalarBuffer) Size() (int, int)    { return b.Width, b.Height }
func (b *ScalarBuffer) At(x, y int) float32 { return b.Pix[y*b.Width+x] }
func (b *ScalarBuffer) Set(x, y int, v float32) {
	b.Pix[y*b.Width+x] = v
}

// Fill sets every pixel to v.
func (b *ScalarBuffer) Fill(v float32) {
	for i := range b.Pix {
		b.Pix[i] = v
	}
}

// Row returns the pixels of row y.
func (b *ScalarBuffer) Row(y int) []float32 { return b.Pix[y*b.Width : (y+1)*b.Width] }

// RGBBuffer holds one RGB (or XYZ position) triple per pixel.
type RGBBuffer struct {
	Width, Height int
	Pix           []mgl32.Vec3
}

func NewRGBBuffer(width, height int) *RGBBuffer {
	return &RGBBuffer{Width: width, Height: height, Pix: make([]mgl32.Vec3, width*height)}
}

func (b *RGBBuffer) Kind() ResourceKind     { return KindRGB }
func (b *RGBBuffer) Size() (int, int)       { return b.Width, b.Height }
func (b *RGBBuffer) At(x, y int) mgl32.Vec3 { return b.Pix[y*b.Width+x] }
func (b *RGBBuffer) Set(x, y int, v mgl32.Vec3) {
	b.Pix[y*b.Width+x] = v
}

func (b *RGBBuffer) Fill(v mgl32.Vec3) {
	for i := range b.Pix {
		b.Pix[i] = v
	}
}

func (b *RGBBuffer) Row(y int) []mgl32.Vec3 { return b.Pix[y*b.Width : (y+1)*b.Width] }

// RGBABuffer holds four float32 channels per pixel.
type RGBABuffer struct {
	Width, Height int
	Pix           []mgl32.Vec4
}

func NewRGBABuffer(width, height int) *RGBABuffer {
	return &RGBABuffer{Width: width, Height: height, Pix: make([]mgl32.Vec4, width*height)}
}

func (b *RGBABuffer) Kind() ResourceKind     { return KindRGBA }
func (b *RGBABuffer) Size() (int, int)       { return b.Width, b.Height }
func (b *RGBABuffer) At(x, y int) mgl32.Vec4 { return b.Pix[y*b.Width+x] }
func (b *RGBABuffer) Set(x, y int, v mgl32.Vec4) {
	b.Pix[y*b.Width+x] = v
}

func (b *RGBABuffer) Fill(v mgl32.Vec4) {
	for i := range b.Pix {
		b.Pix[i] = v
	}
}

func (b *RGBABuffer) Row(y int) []mgl32.Vec4 { return b.Pix[y*b.Width : (y+1)*b.Width] }

// MaskBuffer holds an 8-bit classification mask per pixel.
type MaskBuffer struct {
	Width, Height int
	Pix           []uint8
}

func NewMaskBuffer(width, height int) *MaskBuffer {
	return &MaskBuffer{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

func (b *MaskBuffer) Kind() ResourceKind    { return KindMask }
func (b *MaskBuffer) Size() (int, int)      { return b.Width, b.Height }
func (b *MaskBuffer) At(x, y int) uint8     { return b.Pix[y*b.Width+x] }
func (b *MaskBuffer) Set(x, y int, v uint8) { b.Pix[y*b.Width+x] = v }
func (b *MaskBuffer) Row(y int) []uint8     { return b.Pix[y*b.Width : (y+1)*b.Width] }

// ReuseScalar returns b when it already has the requested size, otherwise a new buffer.
// Passes call the Reuse helpers from Init so a repeated Init (resize) only
// reallocates when the resolution actually changed.
func ReuseScalar(b *ScalarBuffer, width, height int) *ScalarBuffer {
	if b != nil && b.Width == width && b.Height == height {
		return b
	}
	return NewScalarBuffer(width, height)
}

func ReuseRGB(b *RGBBuffer, width, height int) *RGBBuffer {
	if b != nil && b.Width == width && b.Height == height {
		return b
	}
	return NewRGBBuffer(width, height)
}

func ReuseRGBA(b *RGBABuffer, width, height int) *RGBABuffer {
	if b != nil && b.Width == width && b.Height == height {
		return b
	}
	return NewRGBABuffer(width, height)
}

func ReuseMask(b *MaskBuffer, width, height int) *MaskBuffer {
	if b != nil && b.Width == width && b.Height == height {
		return b
	}
	return NewMaskBuffer(width, height)
}
