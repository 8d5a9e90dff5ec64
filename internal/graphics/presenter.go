package graphics

import (
	"yaws/internal/graphics/renderer"
	"yaws/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const presentVert = `#version 410 core
layout (location = 0) in vec2 aPos;
out vec2 vUV;
void main() {
    // Buffer row 0 is the top of the image.
    vUV = vec2(aPos.x * 0.5 + 0.5, 0.5 - aPos.y * 0.5);
    gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const presentFrag = `#version 410 core
in vec2 vUV;
out vec4 FragColor;
uniform sampler2D finalColor;
void main() {
    FragColor = texture(finalColor, vUV);
}
`

var quadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// Presenter blits the tonemapped frame to the default framebuffer.
type Presenter struct {
	shader  *Shader
	vao     uint32
	vbo     uint32
	texture uint32

	texW, texH int
}

func NewPresenter() *Presenter {
	return &Presenter{}
}

// Init needs a current GL context.
func (p *Presenter) Init() error {
	var err error
	p.shader, err = NewShader(presentVert, presentFrag)
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Present uploads img and draws it over a viewport of fbW x fbH pixels.
// A nil or empty image clears to black.
func (p *Presenter) Present(img *renderer.RGBABuffer, fbW, fbH int) {
	defer profiling.Track("present")()

	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if img == nil || len(img.Pix) == 0 {
		return
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	w, h := img.Size()
	if w != p.texW || h != p.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(w), int32(h), 0, gl.RGBA, gl.FLOAT, gl.Ptr(img.Pix))
		p.texW, p.texH = w, h
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.FLOAT, gl.Ptr(img.Pix))
	}

	p.shader.Use()
	p.shader.SetInt("finalColor", 0)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (p *Presenter) Dispose() {
	if p.texture != 0 {
		gl.DeleteTextures(1, &p.texture)
		p.texture = 0
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
	if p.shader != nil {
		p.shader.Delete()
		p.shader = nil
	}
}
