// Package viewer is the interactive GLFW front end of the renderer.
package viewer

import (
	"context"
	"log"
	"time"

	"yaws/internal/app"
	"yaws/internal/graphics"
	"yaws/internal/graphics/camera"
	"yaws/internal/graphics/pipeline"
	"yaws/internal/input"
	"yaws/internal/output"
	"yaws/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// NewWindow opens a GL 4.1 core window. glfw.Init must have been called on
// the locked main thread.
func NewWindow(width, height int, title string) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, err
	}

	// Disable V-Sync; we'll use our own FPS limiter
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

// Viewer owns the window side of a run: input, presentation and resizes.
type Viewer struct {
	window    *glfw.Window
	input     *input.InputManager
	presenter *graphics.Presenter
	renderer  *pipeline.Renderer
	camera    *camera.Camera
	reload    *app.Reloader
	opts      app.Options

	limiter  *app.FPSLimiter
	stats    *app.FrameStats
	recorder *output.Recorder
	lastTime time.Time

	// Latest window size reported by GLFW, applied between frames.
	pendingW, pendingH int
	resized            bool
}

func New(window *glfw.Window, r *pipeline.Renderer, cam *camera.Camera, opts app.Options, reload *app.Reloader) (*Viewer, error) {
	v := &Viewer{
		window:    window,
		input:     input.NewInputManager(),
		presenter: graphics.NewPresenter(),
		renderer:  r,
		camera:    cam,
		reload:    reload,
		opts:      opts,
		limiter:   app.NewFPSLimiter(),
		stats:     app.NewFrameStats(),
		lastTime:  time.Now(),
	}
	if err := v.presenter.Init(); err != nil {
		return nil, err
	}
	if opts.Record != "" {
		w, h := r.Size()
		rec, err := output.NewRecorder(opts.Record, w, h, opts.FPS)
		if err != nil {
			v.presenter.Dispose()
			return nil, err
		}
		v.recorder = rec
	}

	v.input.Attach(window)
	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		v.pendingW, v.pendingH = width, height
		v.resized = true
	})
	return v, nil
}

// Run loops until the window closes, Escape is pressed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	for !v.window.ShouldClose() && ctx.Err() == nil {
		if err := v.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) tick() error {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(v.lastTime).Seconds()
	v.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	if v.input.JustPressed(input.ActionQuit) {
		v.window.SetShouldClose(true)
	}

	if _, err := v.reload.Apply(v.renderer); err != nil {
		return err
	}
	idle := v.window.GetAttrib(glfw.Iconified) == glfw.True
	if v.resized {
		v.resized = false
		if v.pendingW > 0 && v.pendingH > 0 {
			if err := v.renderer.Resize(v.pendingW, v.pendingH); err != nil {
				return err
			}
		}
	}

	if !idle {
		if err := v.renderFrame(dt); err != nil {
			return err
		}
	}

	v.input.PostUpdate()
	v.stats.Record(time.Since(now) - profiling.SumWithPrefix("glfw."))
	v.limiter.Wait(idle)
	return nil
}

func (v *Viewer) intent() app.Intent {
	axis := func(pos, neg input.Action) float32 {
		var a float32
		if v.input.IsActive(pos) {
			a++
		}
		if v.input.IsActive(neg) {
			a--
		}
		return a
	}
	dx, dy := v.input.MouseDelta()
	return app.Intent{
		Forward: axis(input.ActionMoveForward, input.ActionMoveBackward),
		Right:   axis(input.ActionMoveRight, input.ActionMoveLeft),
		Up:      axis(input.ActionMoveUp, input.ActionMoveDown),
		Boost:   v.input.IsActive(input.ActionBoost),
		Sun:     axis(input.ActionSunRight, input.ActionSunLeft),
		LookX:   dx,
		LookY:   dy,
	}
}

func (v *Viewer) renderFrame(dt float64) error {
	sun := v.intent().Steer(v.camera, v.renderer.SunDirection(), dt)
	v.renderer.SetSunDirection(sun)
	v.camera.SetAspect(v.renderer.Size())
	v.renderer.SetCamera(v.camera.InvViewProj(), v.camera.Position)

	if err := v.renderer.Frame(dt); err != nil {
		return err
	}
	final := v.renderer.FinalColor()

	fbW, fbH := v.window.GetFramebufferSize()
	v.presenter.Present(final, fbW, fbH)

	if v.input.JustPressed(input.ActionSnapshot) {
		path := app.SnapshotPath(v.opts.Snapshot, time.Now())
		if err := output.Snapshot(path, final, v.opts.SnapshotWidth, v.opts.SnapshotHeight); err != nil {
			log.Printf("snapshot failed: %v", err)
		} else {
			log.Printf("snapshot written to %s", path)
		}
	}
	if v.recorder != nil {
		if err := v.recorder.WriteFrame(final); err != nil {
			log.Printf("recording stopped: %v", err)
			v.closeRecorder()
		}
	}

	func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
	return nil
}

func (v *Viewer) closeRecorder() {
	if v.recorder == nil {
		return
	}
	if err := v.recorder.Close(); err != nil {
		log.Printf("recording failed: %v", err)
	} else {
		log.Printf("recorded %d frames to %s", v.recorder.Frames(), v.opts.Record)
	}
	v.recorder = nil
}

// Close releases GL resources and finishes any recording. The window and
// renderer belong to the caller.
func (v *Viewer) Close() {
	v.closeRecorder()
	v.presenter.Dispose()
}
