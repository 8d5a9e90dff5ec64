package output_test

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"yaws/internal/graphics/raymath"
	"yaws/internal/graphics/renderer"
	"yaws/internal/output"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func frame(w, h int) *renderer.RGBABuffer {
	buf := renderer.NewRGBABuffer(w, h)
	buf.Fill(mgl32.Vec4{0, 0, 0, 1})
	buf.Set(0, 0, mgl32.Vec4{1, 0.5, 0, 1})
	buf.Set(w-1, h-1, mgl32.Vec4{-1, 2, raymath.Inf, 1})
	return buf
}

func TestToNRGBA(t *testing.T) {
	img, err := output.ToNRGBA(frame(4, 3))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	c := img.NRGBAAt(0, 0)
	assert.Equal(t, []uint8{255, 128, 0, 255}, []uint8{c.R, c.G, c.B, c.A})
	c = img.NRGBAAt(3, 2)
	assert.Equal(t, []uint8{0, 255, 255, 255}, []uint8{c.R, c.G, c.B, c.A})

	_, err = output.ToNRGBA(nil)
	assert.ErrorIs(t, err, output.ErrEmptyFrame)
}

func TestRGB24(t *testing.T) {
	buf := frame(2, 2)
	out := output.RGB24(buf, nil)
	require.Len(t, out, 12)
	assert.Equal(t, []byte{255, 128, 0}, out[:3])
	assert.Equal(t, []byte{0, 0, 0}, out[3:6])

	reused := output.RGB24(buf, make([]byte, 0, 64))
	assert.Len(t, reused, 12)
	assert.Equal(t, 64, cap(reused))
}

func TestScale(t *testing.T) {
	img, err := output.ToNRGBA(frame(8, 4))
	require.NoError(t, err)

	assert.Same(t, image.Image(img), output.Scale(img, 0, 0))
	assert.Equal(t, image.Rect(0, 0, 4, 2), output.Scale(img, 4, 0).Bounds())
	assert.Equal(t, image.Rect(0, 0, 16, 8), output.Scale(img, 0, 8).Bounds())
	assert.Equal(t, image.Rect(0, 0, 3, 3), output.Scale(img, 3, 3).Bounds())
}

func TestEncodeFormats(t *testing.T) {
	img, err := output.ToNRGBA(frame(5, 3))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, output.Encode(&buf, img, ".TIFF"))
	decoded, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, output.Encode(&buf, img, ".bmp"))
	decoded, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, output.Encode(&buf, img, ".unknown"))
	assert.Equal(t, "\x89PNG", buf.String()[:4])
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", "frame.png")
	require.NoError(t, output.Snapshot(path, frame(6, 4), 3, 0))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)

	assert.ErrorIs(t, output.Snapshot(path, nil, 0, 0), output.ErrEmptyFrame)
}

func TestRecordStreamArgs(t *testing.T) {
	args := output.RecordStream("out.mp4", 320, 200, 30).GetArgs()
	assert.Contains(t, args, "rawvideo")
	assert.Contains(t, args, "rgb24")
	assert.Contains(t, args, "320x200")
	assert.Contains(t, args, "pipe:")
	assert.Contains(t, args, "out.mp4")
}

func TestRecorderRejectsBadSize(t *testing.T) {
	_, err := output.NewRecorder("out.mp4", 0, 10, 30)
	assert.ErrorIs(t, err, renderer.ErrInvalidSize)
}
