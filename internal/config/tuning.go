// Package config loads the JSON tuning file that overrides the transit
// model's resolution and evaluation defaults. All fields are pointers so a
// partial file only overrides what it names; everything else keeps the
// compiled-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stellar-data/transit.report/internal/transit"
)

// TuningConfig is the root tuning document. The schema mirrors the
// transit.Config knobs plus the evaluation scheduling switches.
type TuningConfig struct {
	// Z-grid resolution
	ZCut  *float64 `json:"zcut,omitempty"`
	NIn   *int     `json:"nin,omitempty"`
	NEdge *int     `json:"nedge,omitempty"`

	// Weight-table resolution
	NG   *int     `json:"ng,omitempty"`
	NK   *int     `json:"nk,omitempty"`
	KMin *float64 `json:"kmin,omitempty"`
	KMax *float64 `json:"kmax,omitempty"`

	// Branch selection and scheduling
	SmallPlanetLimit *float64 `json:"small_planet_limit,omitempty"`
	Parallel         *bool    `json:"parallel,omitempty"`
	Workers          *int     `json:"workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set fields hold usable values.
func (c *TuningConfig) Validate() error {
	if c.ZCut != nil && (*c.ZCut <= 0 || *c.ZCut >= 1) {
		return fmt.Errorf("zcut must be in (0,1), got %f", *c.ZCut)
	}
	if c.NIn != nil && *c.NIn < 2 {
		return fmt.Errorf("nin must be at least 2, got %d", *c.NIn)
	}
	if c.NEdge != nil && *c.NEdge < 2 {
		return fmt.Errorf("nedge must be at least 2, got %d", *c.NEdge)
	}
	if c.NG != nil && *c.NG < 2 {
		return fmt.Errorf("ng must be at least 2, got %d", *c.NG)
	}
	if c.NK != nil && *c.NK < 0 {
		return fmt.Errorf("nk must be non-negative, got %d", *c.NK)
	}
	if c.KMin != nil && c.KMax != nil && *c.KMin >= *c.KMax {
		return fmt.Errorf("kmin %f must be below kmax %f", *c.KMin, *c.KMax)
	}
	if c.SmallPlanetLimit != nil && *c.SmallPlanetLimit < 0 {
		return fmt.Errorf("small_planet_limit must be non-negative, got %f", *c.SmallPlanetLimit)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// Apply overlays the set fields onto a transit.Config.
func (c *TuningConfig) Apply(cfg *transit.Config) {
	if c.ZCut != nil {
		cfg.ZCut = *c.ZCut
	}
	if c.NIn != nil {
		cfg.NIn = *c.NIn
	}
	if c.NEdge != nil {
		cfg.NEdge = *c.NEdge
	}
	if c.NG != nil {
		cfg.NG = *c.NG
	}
	if c.NK != nil {
		cfg.NK = *c.NK
	}
	if c.KMin != nil {
		cfg.KLims[0] = *c.KMin
	}
	if c.KMax != nil {
		cfg.KLims[1] = *c.KMax
	}
	if c.SmallPlanetLimit != nil {
		cfg.SmallPlanetLimit = *c.SmallPlanetLimit
	}
	if c.Parallel != nil {
		cfg.Parallel = *c.Parallel
	}
	if c.Workers != nil {
		cfg.Workers = *c.Workers
	}
}

// ModelConfig returns the transit model configuration with the tuning
// overrides applied to the defaults.
func (c *TuningConfig) ModelConfig() transit.Config {
	cfg := transit.DefaultConfig()
	c.Apply(&cfg)
	return cfg
}
