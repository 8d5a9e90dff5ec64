package app_test

import (
	"context"
	"errors"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"yaws/internal/app"
	"yaws/internal/config"
	"yaws/internal/graphics/camera"
	"yaws/internal/graphics/pipeline"
	"yaws/internal/graphics/renderer"
	"yaws/internal/output"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessFromEnv(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "TRUE": true, " yes ": true,
		"0": false, "no": false, "": false,
	} {
		t.Setenv("HEADLESS", value)
		assert.Equalf(t, want, app.HeadlessFromEnv(), "HEADLESS=%q", value)
	}
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, 144, app.EffectiveLimit(144, false))
	assert.Equal(t, 0, app.EffectiveLimit(0, false))
	assert.Equal(t, app.IdleFPS, app.EffectiveLimit(0, true))
	assert.Equal(t, app.IdleFPS, app.EffectiveLimit(144, true))
	assert.Equal(t, 10, app.EffectiveLimit(10, true))
}

func TestLimiterUncappedReturnsImmediately(t *testing.T) {
	l := app.NewFPSLimiter()
	start := time.Now()
	for i := 0; i < 100; i++ {
		l.WaitFor(0)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSteer(t *testing.T) {
	cam := camera.New(10, 10)
	sun := mgl32.Vec3{1, 0, 0}

	sun = app.Intent{Forward: 1}.Steer(cam, sun, 0.1)
	assert.InDelta(t, -50, cam.Position.Z(), 1e-3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, sun)

	app.Intent{Up: 1, Boost: true}.Steer(cam, sun, 0.1)
	assert.InDelta(t, 1000, cam.Position.Y(), 1e-3)

	app.Intent{LookY: 100}.Steer(cam, sun, 0.1)
	assert.InDelta(t, -0.2, cam.Pitch, 1e-6)

	rotated := app.Intent{Sun: 1}.Steer(cam, sun, 1)
	assert.InDelta(t, 1, rotated.Len(), 1e-6)
	assert.InDelta(t, math32.Cos(app.SunSpeed), rotated.X(), 1e-6)
}

func TestRotateSunKeepsElevation(t *testing.T) {
	dir := mgl32.Vec3{0.3, 0.6, -0.7}.Normalize()
	r := app.RotateSun(dir, 1.3)
	assert.Equal(t, dir.Y(), r.Y())
	assert.InDelta(t, dir.Len(), r.Len(), 1e-6)
}

func TestSnapshotPath(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC)
	assert.Equal(t, "yaws-20240506-070809.010.png", app.SnapshotPath("", now))
	assert.Equal(t, "shots/planet-20240506-070809.010.tiff", app.SnapshotPath("shots/planet.tiff", now))
}

type fakeTarget struct {
	applied []config.Settings
	err     error
}

func (f *fakeTarget) Apply(s config.Settings) error {
	f.applied = append(f.applied, s)
	return f.err
}

func TestReloaderKeepsNewest(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, config.Set(config.Default())) })

	rl := app.NewReloader()
	target := &fakeTarget{}
	changed, err := rl.Apply(target)
	require.NoError(t, err)
	assert.False(t, changed)

	a, b := config.Default(), config.Default()
	a.FPSLimit, b.FPSLimit = 30, 90
	rl.Offer(a)
	rl.Offer(b)
	changed, err = rl.Apply(target)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, target.applied, 1)
	assert.Equal(t, 90, target.applied[0].FPSLimit)
	assert.Equal(t, 90, config.GetFPSLimit())

	changed, _ = rl.Apply(target)
	assert.False(t, changed)
}

func TestReloaderDropsInvalid(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, config.Set(config.Default())) })

	rl := app.NewReloader()
	target := &fakeTarget{}
	bad := config.Default()
	bad.Width = 0
	rl.Offer(bad)
	changed, err := rl.Apply(target)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, target.applied)

	boom := errors.New("boom")
	target.err = boom
	rl.Offer(config.Default())
	_, err = rl.Apply(target)
	assert.ErrorIs(t, err, boom)
}

func smallRenderer(t *testing.T) (*pipeline.Renderer, *camera.Camera) {
	t.Helper()
	s := config.Default()
	s.Width, s.Height = 24, 16
	s.Workers = 2
	r, err := pipeline.New(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	cam := camera.New(s.Width, s.Height)
	cam.Pitch = -0.35
	return r, cam
}

func TestRunHeadlessWritesSnapshot(t *testing.T) {
	r, cam := smallRenderer(t)
	path := filepath.Join(t.TempDir(), "out.png")
	opts := app.Options{Frames: 2, FPS: 30, Snapshot: path}
	require.NoError(t, app.RunHeadless(context.Background(), r, cam, opts, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
	assert.InDelta(t, 2.0/30, r.Context().Time, 1e-9)
}

func TestRunHeadlessAppliesReload(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, config.Set(config.Default())) })

	r, cam := smallRenderer(t)
	rl := app.NewReloader()
	s := config.Default()
	s.Width, s.Height = 12, 8
	rl.Offer(s)
	require.NoError(t, app.RunHeadless(context.Background(), r, cam, app.Options{Frames: 1}, rl))

	w, h := r.FinalColor().Size()
	assert.Equal(t, 12, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, float32(1.5), cam.AspectRatio)
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	r, cam := smallRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.RunHeadless(ctx, r, cam, app.Options{Frames: 0}, nil))
	assert.Zero(t, r.Context().Time)
}

// sizedSink accepts frames of one size, like an ffmpeg recording.
type sizedSink struct {
	w, h    int
	written int
	closed  int
}

func (s *sizedSink) WriteFrame(buf *renderer.RGBABuffer) error {
	if w, h := buf.Size(); w != s.w || h != s.h {
		return output.ErrFrameSize
	}
	s.written++
	return nil
}

func (s *sizedSink) Close() error {
	s.closed++
	return nil
}

func TestRecordingStopsWhenReloadResizes(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, config.Set(config.Default())) })

	r, cam := smallRenderer(t)
	sink := &sizedSink{w: 24, h: 16}
	rl := app.NewReloader()
	opts := app.Options{Frames: 3, Sink: sink, Snapshot: filepath.Join(t.TempDir(), "last.png")}

	// First frame records at the original size.
	require.NoError(t, app.RunHeadless(context.Background(), r, cam, app.Options{Frames: 1, Sink: sink}, rl))
	assert.Equal(t, 1, sink.written)
	assert.Equal(t, 1, sink.closed)

	sink.closed = 0
	s := config.Default()
	s.Width, s.Height = 12, 8
	rl.Offer(s)
	require.NoError(t, app.RunHeadless(context.Background(), r, cam, opts, rl))
	assert.Equal(t, 1, sink.written)
	assert.Equal(t, 1, sink.closed)
	assert.FileExists(t, opts.Snapshot)
	assert.InDelta(t, 4.0/60, r.Context().Time, 1e-9)
}
