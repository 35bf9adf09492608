package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/montyhall
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Watched lists the files whose changes should trigger a reload.
func (p Paths) Watched(profile string) []string {
	if profile == "" {
		return []string{p.DefaultPath()}
	}
	return []string{p.DefaultPath(), p.ProfilePath(profile)}
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the file layout the loader reads from.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and normalizes the settings for profile.
func (l *Loader) Load(profile string) (Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Settings{}, err
	}
	return Normalize(raw)
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set fields in b win.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// simulator
	if b.Simulator.DefaultTrials != nil {
		out.Simulator.DefaultTrials = b.Simulator.DefaultTrials
	}
	if b.Simulator.MaxTrials != nil {
		out.Simulator.MaxTrials = b.Simulator.MaxTrials
		// a lowered cap drags the inherited default down with it
		if b.Simulator.DefaultTrials == nil && out.Simulator.DefaultTrials != nil &&
			*out.Simulator.DefaultTrials > *b.Simulator.MaxTrials {
			limit := *b.Simulator.MaxTrials
			out.Simulator.DefaultTrials = &limit
		}
	}
	if b.Simulator.DefaultStrategy != "" {
		out.Simulator.DefaultStrategy = b.Simulator.DefaultStrategy
	}
	if b.Simulator.Workers != nil {
		out.Simulator.Workers = b.Simulator.Workers
	}

	// history
	switch {
	case out.History == nil && b.History != nil:
		c := *b.History
		out.History = &c
	case out.History != nil && b.History != nil:
		c := *out.History
		if b.History.Size != nil {
			c.Size = b.History.Size
		}
		out.History = &c
	}

	// rng
	switch {
	case out.RNG == nil && b.RNG != nil:
		c := *b.RNG
		out.RNG = &c
	case out.RNG != nil && b.RNG != nil:
		c := *out.RNG
		if b.RNG.Seed != nil {
			c.Seed = b.RNG.Seed
		}
		out.RNG = &c
	}

	// sessions
	switch {
	case out.Sessions == nil && b.Sessions != nil:
		c := *b.Sessions
		out.Sessions = &c
	case out.Sessions != nil && b.Sessions != nil:
		c := *out.Sessions
		if b.Sessions.Max != nil {
			c.Max = b.Sessions.Max
		}
		if b.Sessions.IdleTTL != "" {
			c.IdleTTL = b.Sessions.IdleTTL
		}
		out.Sessions = &c
	}

	return out
}
