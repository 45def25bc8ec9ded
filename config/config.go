// Package config provides configuration loading and access for the controller runtime.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid config")

// View modes understood by the controller and camera rig.
const (
	ViewFirstPerson = "firstPerson"
	ViewThirdPerson = "thirdPerson"
)

// Config holds all runtime configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Controller ControllerConfig `yaml:"controller"`
	Probe      ProbeConfig      `yaml:"probe"`
	Camera     CameraConfig     `yaml:"camera"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scene      SceneConfig      `yaml:"scene"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds world simulation parameters.
type PhysicsConfig struct {
	Gravity     [3]float64 `yaml:"gravity"`      // World gravity vector (m/s^2)
	FixedDT     float64    `yaml:"fixed_dt"`     // Seconds per simulation tick
	MaxSubsteps int        `yaml:"max_substeps"` // Simulation ticks allowed per frame before time is dropped
	Paused      bool       `yaml:"paused"`
}

// ControllerConfig holds player controller parameters.
type ControllerConfig struct {
	ID               string  `yaml:"id"`                // Registry id the controller binds to
	View             string  `yaml:"view"`              // firstPerson | thirdPerson
	Inertia          bool    `yaml:"inertia"`           // Inertial motion model instead of direct
	Acceleration     float64 `yaml:"acceleration"`      // Inertial blend rate with input (1/s)
	Deceleration     float64 `yaml:"deceleration"`      // Inertial blend rate without input (1/s)
	Crouch           bool    `yaml:"crouch"`            // Enable crouching
	CrouchKey        string  `yaml:"crouch_key"`        // Key code name, e.g. KeyC
	CrouchDepth      float64 `yaml:"crouch_depth"`      // Eye height ratio while crouched [0, 1]
	MouseSensitivity float64 `yaml:"mouse_sensitivity"` // Radians per pixel of mouse motion
	MaxPitch         float64 `yaml:"max_pitch"`         // Pitch clamp in radians
}

// ProbeConfig holds ground probe parameters.
type ProbeConfig struct {
	Margin           float64 `yaml:"margin"`             // Extra ray length below the collider (world units)
	MaxVerticalSpeed float64 `yaml:"max_vertical_speed"` // |vy| below this counts as standing
}

// CameraConfig holds camera rig parameters.
type CameraConfig struct {
	EyeRatio            float64 `yaml:"eye_ratio"`             // Eye offset as a fraction of half height
	EyeSmoothing        float64 `yaml:"eye_smoothing"`         // Eye offset blend rate (1/s)
	FollowRate          float64 `yaml:"follow_rate"`           // Camera position blend rate (1/s)
	ThirdPersonDistance float64 `yaml:"third_person_distance"` // Orbit distance in actor heights
	ThirdPersonFocus    float64 `yaml:"third_person_focus"`    // Focus height as a fraction of eye offset
	FOV                 float64 `yaml:"fov"`                   // Vertical field of view (degrees)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Simulation seconds per telemetry.csv row
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
	RecordTicks bool    `yaml:"record_ticks"` // Write ticks.csv when an output dir is set
}

// LoggingConfig holds slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// SceneConfig locates the declarative scene description.
type SceneConfig struct {
	Path string `yaml:"path"` // Empty = built-in demo scene
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GravityMagnitude float64 // |Physics.Gravity|
	TicksPerSecond   float64 // 1 / Physics.FixedDT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks values the runtime cannot work around.
func (c *Config) Validate() error {
	if c.Physics.FixedDT <= 0 {
		return fmt.Errorf("%w: physics.fixed_dt must be positive, got %v", ErrInvalid, c.Physics.FixedDT)
	}
	if c.Physics.MaxSubsteps < 1 {
		return fmt.Errorf("%w: physics.max_substeps must be at least 1, got %d", ErrInvalid, c.Physics.MaxSubsteps)
	}
	switch c.Controller.View {
	case ViewFirstPerson, ViewThirdPerson:
	default:
		return fmt.Errorf("%w: controller.view %q is not %s or %s", ErrInvalid, c.Controller.View, ViewFirstPerson, ViewThirdPerson)
	}
	if c.Controller.CrouchDepth < 0 || c.Controller.CrouchDepth > 1 {
		return fmt.Errorf("%w: controller.crouch_depth must be in [0, 1], got %v", ErrInvalid, c.Controller.CrouchDepth)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	g := c.Physics.Gravity
	c.Derived.GravityMagnitude = math.Sqrt(g[0]*g[0] + g[1]*g[1] + g[2]*g[2])
	c.Derived.TicksPerSecond = 1 / c.Physics.FixedDT
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
