package output

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"yaws/internal/graphics/renderer"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	ErrFrameSize      = errors.New("output: frame size does not match recording")
	ErrRecorderClosed = errors.New("output: recorder closed")
)

// RGB24 packs a tonemapped frame as rows of 8-bit RGB triples, reusing dst
// when it is large enough.
func RGB24(buf *renderer.RGBABuffer, dst []byte) []byte {
	w, h := buf.Size()
	n := w * h * 3
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	i := 0
	for _, c := range buf.Pix {
		dst[i] = toByte(c[0])
		dst[i+1] = toByte(c[1])
		dst[i+2] = toByte(c[2])
		i += 3
	}
	return dst
}

// RecordStream builds the ffmpeg invocation that reads raw rgb24 frames from
// stdin and encodes them to path.
func RecordStream(path string, width, height, fps int) *ffmpeg.Stream {
	inputArgs := ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgb24",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fmt.Sprint(fps),
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"vf":      "scale=trunc(iw/2)*2:trunc(ih/2)*2",
	}
	return ffmpeg.Input("pipe:", inputArgs).
		Output(path, outputArgs).
		OverWriteOutput()
}

// Recorder streams frames into an ffmpeg process.
type Recorder struct {
	mu     sync.Mutex
	w, h   int
	pipe   *io.PipeWriter
	errc   chan error
	buf    []byte
	frames int
	closed bool
}

// NewRecorder starts ffmpeg writing to path. Every frame must be width x height.
func NewRecorder(path string, width, height, fps int) (*Recorder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", renderer.ErrInvalidSize, width, height)
	}
	if fps <= 0 {
		fps = 60
	}
	pr, pw := io.Pipe()
	cmd := RecordStream(path, width, height, fps).WithInput(pr).ErrorToStdOut()

	r := &Recorder{w: width, h: height, pipe: pw, errc: make(chan error, 1)}
	go func() {
		err := cmd.Run()
		// Unblock a writer stuck on a dead process.
		pr.CloseWithError(io.ErrClosedPipe)
		r.errc <- err
	}()
	return r, nil
}

// WriteFrame sends one frame to the encoder.
func (r *Recorder) WriteFrame(buf *renderer.RGBABuffer) error {
	if buf == nil {
		return ErrEmptyFrame
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	if w, h := buf.Size(); w != r.w || h != r.h {
		return fmt.Errorf("%w: got %dx%d, recording %dx%d", ErrFrameSize, w, h, r.w, r.h)
	}
	r.buf = RGB24(buf, r.buf)
	if _, err := r.pipe.Write(r.buf); err != nil {
		return fmt.Errorf("could not write frame %d to ffmpeg: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns how many frames were written.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close ends the stream and waits for ffmpeg to finish. Safe to call twice.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.pipe.Close()
	r.mu.Unlock()

	if err := <-r.errc; err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
