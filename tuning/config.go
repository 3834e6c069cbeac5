// Package tuning holds the immutable configuration table camera decode
// paths consume, following the same plain-struct-with-a-defaults-constructor
// shape as jpeg2000.EncodeParams/DefaultEncodeParams.
package tuning

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is built once via Default() (or Load from YAML) and then treated as
// read-only for the lifetime of a decode session; nothing in the decode
// pipeline mutates it.
type Config struct {
	// SymbolThreshold gates the camera-path symbol detector: a corner reads
	// 1 when its luma exceeds center*SymbolThreshold. The GIF/lossless path
	// ignores this entirely and always uses center*0.5+20 (spec §9 Open
	// Question #5) — see frame.DetectCell.
	SymbolThreshold float64 `yaml:"symbol_threshold"`

	// EnableWhiteBalance applies a Von Kries diagonal correction from the
	// finders' white samples before color matching.
	EnableWhiteBalance bool `yaml:"enable_white_balance"`

	// UseRelativeColor matches colors by channel-difference triples instead
	// of raw RGB distance.
	UseRelativeColor bool `yaml:"use_relative_color"`

	// QuadrantOffset is the sample-point position inside a cell, as a
	// fraction of cell size, mirroring the fraction frame.quadrantOffset
	// computes for rendering.
	QuadrantOffset float64 `yaml:"quadrant_offset"`

	// UseHashDetection enables the two-pass average-hash symbol detector
	// with drift tracking (spec §4.F.4). When false, decode uses the
	// single fixed-center sample the GIF path uses.
	UseHashDetection bool `yaml:"use_hash_detection"`

	// EnableLabFailover allows a CIELAB retry when the first color-matching
	// pass fails the quality gate.
	EnableLabFailover bool `yaml:"use_lab_color"`
}

// Default returns the tuning table of spec §3 with its documented defaults.
func Default() Config {
	return Config{
		SymbolThreshold:    0.85,
		EnableWhiteBalance: true,
		UseRelativeColor:   true,
		QuadrantOffset:     0.28,
		UseHashDetection:   true,
		EnableLabFailover:  true,
	}
}

// Load reads a YAML tuning file, starting from Default() and overriding
// whichever fields the file sets. Persisting the tuning table is not
// required by the core (spec §6 "Persisted state"), but supporting it keeps
// the camera pipeline's knobs out of recompiled binaries for anyone
// operating it as a long-running service.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
