package config

import (
	"fmt"
	"sync"
)

// Tonemap operators understood by the composite pass.
const (
	TonemapReinhard    = "reinhard"
	TonemapExponential = "exponential"
)

// Surface lighting models understood by the deferred lighting pass.
const (
	LightingStandard = "standard"
	LightingSimple   = "simple"
)

// Planet describes the sphere geometry of the rendered body.
type Planet struct {
	Center         [3]float32 `toml:"center"`
	Radius         float32    `toml:"radius"`
	AtmInnerRadius float32    `toml:"atm_inner_radius"`
	AtmOuterRadius float32    `toml:"atm_outer_radius"`
	SunDirection   [3]float32 `toml:"sun_direction"`
}

// Clouds configures the cloud-layer prepass.
type Clouds struct {
	Steps int `toml:"steps"`
	// Altitude band above the planet surface where density is non-zero.
	BandMin    float32 `toml:"band_min"`
	BandMax    float32 `toml:"band_max"`
	Extinction float32 `toml:"extinction"`
	// March stops once transmittance falls below this value.
	Threshold float32 `toml:"threshold"`
}

// Atmosphere configures the volumetric scattering integration.
type Atmosphere struct {
	Steps          int        `toml:"steps"`
	DensityFalloff float32    `toml:"density_falloff"`
	Extinction     float32    `toml:"extinction"`
	ScatterColor   [3]float32 `toml:"scatter_color"`
}

// Surface configures sphere tracing of the solid surface.
type Surface struct {
	MaxSteps    int     `toml:"max_steps"`
	HitEpsilon  float32 `toml:"hit_epsilon"`
	MaxDistance float32 `toml:"max_distance"`
}

// Lighting configures the deferred surface lighting pass.
type Lighting struct {
	Model      string     `toml:"model"`
	LightColor [3]float32 `toml:"light_color"`
	Background [3]float32 `toml:"background"`
}

// Tonemap configures the composite pass.
type Tonemap struct {
	Operator string  `toml:"operator"`
	Exposure float32 `toml:"exposure"`
	// Gamma <= 0 disables gamma correction.
	Gamma float32 `toml:"gamma"`
}

// Pipeline groups the per-pass parameters read from the render context.
type Pipeline struct {
	Clouds     Clouds     `toml:"clouds"`
	Atmosphere Atmosphere `toml:"atmosphere"`
	Surface    Surface    `toml:"surface"`
	Lighting   Lighting   `toml:"lighting"`
	Tonemap    Tonemap    `toml:"tonemap"`
}

// Settings is the full renderer configuration.
type Settings struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	FPSLimit int      `toml:"fps_limit"`
	Workers  int      `toml:"workers"`
	Planet   Planet   `toml:"planet"`
	Pipeline Pipeline `toml:"pipeline"`
}

// DefaultPipeline returns the canonical pass parameters.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Clouds: Clouds{
			Steps:      32,
			BandMin:    1000,
			BandMax:    4000,
			Extinction: 0.05,
			Threshold:  0.05,
		},
		Atmosphere: Atmosphere{
			Steps:          48,
			DensityFalloff: 0.0001,
			Extinction:     0.02,
			ScatterColor:   [3]float32{0.35, 0.6, 1.0},
		},
		Surface: Surface{
			MaxSteps:    128,
			HitEpsilon:  0.0005,
			MaxDistance: 1e7,
		},
		Lighting: Lighting{
			Model:      LightingStandard,
			LightColor: [3]float32{1.0, 0.95, 0.9},
		},
		Tonemap: Tonemap{
			Operator: TonemapReinhard,
			Exposure: 1.2,
			Gamma:    2.2,
		},
	}
}

// Default returns settings for an Earth-sized planet with the camera 11 km
// above the surface, over the cloud layer.
func Default() Settings {
	return Settings{
		Width:    900,
		Height:   600,
		FPSLimit: 60,
		Workers:  0,
		Planet: Planet{
			Center:         [3]float32{0, -6_371_000, 0},
			Radius:         6_360_000,
			AtmInnerRadius: 6_360_000,
			AtmOuterRadius: 6_420_000,
			SunDirection:   [3]float32{0.3, 0.6, -0.7},
		},
		Pipeline: DefaultPipeline(),
	}
}

// Validate checks the settings for values the passes cannot work with.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", s.Width, s.Height)
	}
	if s.Planet.Radius <= 0 {
		return fmt.Errorf("planet radius must be positive, got %g", s.Planet.Radius)
	}
	if s.Planet.AtmOuterRadius < s.Planet.AtmInnerRadius {
		return fmt.Errorf("atmosphere outer radius %g below inner radius %g",
			s.Planet.AtmOuterRadius, s.Planet.AtmInnerRadius)
	}
	return s.Pipeline.Validate()
}

// Validate checks the per-pass parameters.
func (p Pipeline) Validate() error {
	if p.Clouds.Steps <= 0 || p.Atmosphere.Steps <= 0 || p.Surface.MaxSteps <= 0 {
		return fmt.Errorf("march step counts must be positive (clouds %d, atmosphere %d, surface %d)",
			p.Clouds.Steps, p.Atmosphere.Steps, p.Surface.MaxSteps)
	}
	if p.Clouds.BandMax < p.Clouds.BandMin {
		return fmt.Errorf("cloud band max %g below min %g", p.Clouds.BandMax, p.Clouds.BandMin)
	}
	switch p.Tonemap.Operator {
	case TonemapReinhard, TonemapExponential:
	default:
		return fmt.Errorf("unknown tonemap operator %q", p.Tonemap.Operator)
	}
	switch p.Lighting.Model {
	case LightingStandard, LightingSimple:
	default:
		return fmt.Errorf("unknown lighting model %q", p.Lighting.Model)
	}
	return nil
}

// global store, same access pattern as the rest of the app: readers take
// copies, writers replace under the lock.

var (
	mu      sync.RWMutex
	current = Default()
)

// Current returns a copy of the active settings.
func Current() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the active settings after validation.
func Set(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	mu.Lock()
	current = s
	mu.Unlock()
	return nil
}

// GetFPSLimit returns the frame cap; 0 means uncapped.
func GetFPSLimit() int {
	mu.RLock()
	defer mu.RUnlock()
	return current.FPSLimit
}

// SetFPSLimit sets the frame cap, clamped to [0, 1000].
func SetFPSLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}
	mu.Lock()
	current.FPSLimit = limit
	mu.Unlock()
}
