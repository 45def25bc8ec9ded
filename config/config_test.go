package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Controller.View != ViewFirstPerson {
		t.Errorf("view = %q, want %q", cfg.Controller.View, ViewFirstPerson)
	}
	if cfg.Controller.Acceleration != 10 || cfg.Controller.Deceleration != 10 {
		t.Errorf("inertial rates = (%v, %v), want (10, 10)", cfg.Controller.Acceleration, cfg.Controller.Deceleration)
	}
	if cfg.Controller.CrouchDepth != 0.5 {
		t.Errorf("crouch depth = %v, want 0.5", cfg.Controller.CrouchDepth)
	}
	if cfg.Probe.Margin != 0.1 || cfg.Probe.MaxVerticalSpeed != 0.5 {
		t.Errorf("probe = %+v, want margin 0.1 and max vertical speed 0.5", cfg.Probe)
	}
	if cfg.Camera.EyeRatio != 0.9 || cfg.Camera.ThirdPersonDistance != 3 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if got := cfg.Derived.GravityMagnitude; got < 9.8099 || got > 9.8101 {
		t.Errorf("gravity magnitude = %v, want 9.81", got)
	}
	if got := cfg.Derived.TicksPerSecond; got < 59.99 || got > 60.01 {
		t.Errorf("ticks per second = %v, want 60", got)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeFile(t, "controller:\n  view: thirdPerson\n  inertia: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Controller.View != ViewThirdPerson {
		t.Errorf("view = %q, want %q", cfg.Controller.View, ViewThirdPerson)
	}
	if !cfg.Controller.Inertia {
		t.Error("inertia should be enabled by user file")
	}
	// Untouched fields keep defaults
	if cfg.Controller.Acceleration != 10 {
		t.Errorf("acceleration = %v, want default 10", cfg.Controller.Acceleration)
	}
	if cfg.Physics.MaxSubsteps != 5 {
		t.Errorf("max substeps = %d, want default 5", cfg.Physics.MaxSubsteps)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero dt", "physics:\n  fixed_dt: 0\n"},
		{"no substeps", "physics:\n  max_substeps: 0\n"},
		{"unknown view", "controller:\n  view: topDown\n"},
		{"crouch depth above one", "controller:\n  crouch_depth: 1.5\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.content))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrInvalid) {
		t.Errorf("missing file should not be reported as ErrInvalid: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Controller.View = ViewThirdPerson
	cfg.Controller.CrouchDepth = 0.3

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Controller != cfg.Controller {
		t.Errorf("controller = %+v, want %+v", loaded.Controller, cfg.Controller)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() { global = saved }()

	defer func() {
		if recover() == nil {
			t.Error("Cfg() should panic before Init()")
		}
	}()
	Cfg()
}

func TestMustInit(t *testing.T) {
	saved := global
	defer func() { global = saved }()

	MustInit("")
	if Cfg().Physics.FixedDT <= 0 {
		t.Errorf("fixed_dt = %v, want positive default", Cfg().Physics.FixedDT)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustInit should panic on a missing file")
		}
	}()
	MustInit(filepath.Join(t.TempDir(), "missing.yaml"))
}
