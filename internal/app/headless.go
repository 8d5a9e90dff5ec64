package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"yaws/internal/graphics/camera"
	"yaws/internal/graphics/pipeline"
	"yaws/internal/graphics/renderer"
	"yaws/internal/output"
	"yaws/internal/profiling"
)

// FrameSink receives finished frames; *output.Recorder is one.
type FrameSink interface {
	WriteFrame(buf *renderer.RGBABuffer) error
	Close() error
}

// Options control a run.
type Options struct {
	Frames int // headless frame count; 0 runs until ctx is cancelled
	FPS    int // simulated rate for headless dt and recordings

	Snapshot       string // written after the last frame, or on F12
	SnapshotWidth  int
	SnapshotHeight int

	Record string    // video path; empty disables recording
	Sink   FrameSink // used instead of Record when set
}

// HeadlessFromEnv reports whether HEADLESS is set to 1, true or yes.
func HeadlessFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("HEADLESS"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (o Options) dt() float64 {
	if o.FPS <= 0 {
		return 1.0 / 60
	}
	return 1.0 / float64(o.FPS)
}

// RunHeadless renders frames without a window at a fixed time step. A
// recording that fails mid-run, e.g. after a reload changed the resolution,
// is stopped and the run continues.
func RunHeadless(ctx context.Context, r *pipeline.Renderer, cam *camera.Camera, opts Options, reload *Reloader) error {
	sink := opts.Sink
	if sink == nil && opts.Record != "" {
		w, h := r.Size()
		rec, err := output.NewRecorder(opts.Record, w, h, opts.FPS)
		if err != nil {
			return err
		}
		sink = rec
	}

	h := &headless{r: r, cam: cam, opts: opts, reload: reload, sink: sink}
	err := h.loop(ctx)
	if cerr := h.stopRecording(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if opts.Snapshot != "" {
		if err := output.Snapshot(opts.Snapshot, r.FinalColor(), opts.SnapshotWidth, opts.SnapshotHeight); err != nil {
			return err
		}
		log.Printf("snapshot written to %s", opts.Snapshot)
	}
	return nil
}

type headless struct {
	r      *pipeline.Renderer
	cam    *camera.Camera
	opts   Options
	reload *Reloader
	sink   FrameSink
	frames int // written to sink
}

func (h *headless) stopRecording() error {
	if h.sink == nil {
		return nil
	}
	err := h.sink.Close()
	if err == nil {
		log.Printf("recorded %d frames", h.frames)
	}
	h.sink = nil
	return err
}

func (h *headless) loop(ctx context.Context) error {
	stats := NewFrameStats()
	dt := h.opts.dt()
	for i := 0; h.opts.Frames <= 0 || i < h.opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			log.Printf("headless run stopped after %d frames", i)
			return nil
		}

		profiling.ResetFrame()
		start := time.Now()
		if _, err := h.reload.Apply(h.r); err != nil {
			return err
		}
		h.cam.SetAspect(h.r.Size())
		h.r.SetCamera(h.cam.InvViewProj(), h.cam.Position)
		if err := h.r.Frame(dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if h.sink != nil {
			if err := h.sink.WriteFrame(h.r.FinalColor()); err != nil {
				log.Printf("recording stopped: %v", err)
				if cerr := h.stopRecording(); cerr != nil {
					log.Printf("recording failed: %v", cerr)
				}
			} else {
				h.frames++
			}
		}
		stats.Record(time.Since(start))
	}
	return nil
}
