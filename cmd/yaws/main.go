package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"yaws/internal/app"
	"yaws/internal/app/viewer"
	"yaws/internal/config"
	"yaws/internal/graphics/camera"
	"yaws/internal/graphics/pipeline"
	"yaws/internal/graphics/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

// Initial view: level with the horizon, tilted down onto the planet.
const startPitch = -0.35

func main() {
	var (
		configPath = flag.String("config", "", "TOML settings file")
		watch      = flag.Bool("watch", true, "reload the settings file when it changes")
		headless   = flag.Bool("headless", false, "render without a window (also HEADLESS=1)")
		frames     = flag.Int("frames", 1, "headless frame count, 0 runs until interrupted")
		width      = flag.Int("width", 0, "override render width")
		height     = flag.Int("height", 0, "override render height")
		workers    = flag.Int("workers", -1, "override worker count, 0 uses every CPU")
		fps        = flag.Int("fps", -1, "override the frame cap, 0 is uncapped")
		snapshot   = flag.String("snapshot", "", "snapshot path (.png, .tif, .bmp)")
		snapW      = flag.Int("snapshot-width", 0, "resample snapshots to this width")
		snapH      = flag.Int("snapshot-height", 0, "resample snapshots to this height")
		record     = flag.String("record", "", "encode every frame to this video file with ffmpeg")
		verbose    = flag.Bool("v", false, "log frame graph activity")
	)
	flag.Parse()

	if *verbose {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	settings := config.Default()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("could not load config: %v", err)
		}
		settings = s
	}
	if *width > 0 {
		settings.Width = *width
	}
	if *height > 0 {
		settings.Height = *height
	}
	if *workers >= 0 {
		settings.Workers = *workers
	}
	if *fps >= 0 {
		settings.FPSLimit = *fps
	}
	if err := config.Set(settings); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	opts := app.Options{
		Frames:         *frames,
		FPS:            settings.FPSLimit,
		Snapshot:       *snapshot,
		SnapshotWidth:  *snapW,
		SnapshotHeight: *snapH,
		Record:         *record,
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}

	r, err := pipeline.New(settings)
	if err != nil {
		log.Fatalf("could not create renderer: %v", err)
	}
	log.Printf("frame graph: %v", r.PassOrder())

	cam := camera.New(settings.Width, settings.Height)
	cam.Pitch = startPitch

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	// Signals cancel the loop; the process exits once main has cleaned up.
	closer.Bind(func() {
		cancel()
		<-done
	})

	reload := app.NewReloader()
	if *configPath != "" && *watch {
		go func() {
			if err := config.Watch(ctx, *configPath, reload.Offer); err != nil {
				log.Printf("config watch disabled: %v", err)
			}
		}()
	}

	if *headless || app.HeadlessFromEnv() {
		err = app.RunHeadless(ctx, r, cam, opts, reload)
	} else {
		err = runWindowed(ctx, r, cam, settings, opts, reload)
	}

	if cerr := r.Close(); cerr != nil {
		log.Printf("shutdown: %v", cerr)
	}
	close(done)
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Close()
}

func runWindowed(ctx context.Context, r *pipeline.Renderer, cam *camera.Camera, s config.Settings, opts app.Options, reload *app.Reloader) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	window, err := viewer.NewWindow(s.Width, s.Height, "yaws")
	if err != nil {
		return err
	}
	defer window.Destroy()

	v, err := viewer.New(window, r, cam, opts, reload)
	if err != nil {
		return err
	}
	defer v.Close()
	return v.Run(ctx)
}
