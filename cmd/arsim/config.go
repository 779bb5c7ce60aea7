package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the arsim application configuration, read from YAML once at
// startup. Flags override individual fields.
type AppConfig struct {
	ScenePath string `yaml:"scene"`

	Listen struct {
		Metrics string `yaml:"metrics"`
		Overlay string `yaml:"overlay"`
	} `yaml:"listen"`

	Frame struct {
		Interval    time.Duration `yaml:"interval"`
		Duration    time.Duration `yaml:"duration"`
		Accelerated bool          `yaml:"accelerated"`
	} `yaml:"frame"`

	// AnchorLatencyFrames is how many frames a simulated anchor creation
	// takes to resolve.
	AnchorLatencyFrames int `yaml:"anchor_latency_frames"`

	Walk struct {
		Lat        float64 `yaml:"lat"`
		Lon        float64 `yaml:"lon"`
		BearingDeg float64 `yaml:"bearing_deg"`
		StepM      float64 `yaml:"step_m"`
		// EveryNFrames throttles GPS updates to one per N frames, since
		// real fixes arrive far below display rate.
		EveryNFrames int `yaml:"every_n_frames"`
	} `yaml:"walk"`
}

// DefaultAppConfig returns the built-in defaults.
func DefaultAppConfig() AppConfig {
	var cfg AppConfig
	cfg.ScenePath = "configs/scene.json"
	cfg.Listen.Metrics = ":9090"
	cfg.Listen.Overlay = ":8080"
	cfg.Frame.Interval = 16 * time.Millisecond
	cfg.Frame.Duration = 30 * time.Second
	cfg.Frame.Accelerated = true
	cfg.AnchorLatencyFrames = 3
	cfg.Walk.StepM = 1.0
	cfg.Walk.EveryNFrames = 30
	return cfg
}

// LoadAppConfig reads YAML from path over the defaults. A missing file is
// fine; the defaults stand.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Walk.EveryNFrames <= 0 {
		cfg.Walk.EveryNFrames = 1
	}
	return cfg, nil
}
