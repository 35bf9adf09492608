// types.go
package config

import (
	"time"

	"github.com/xtding233/montyhall/internal/monty"
)

// Raw config loaded from YAML; pointers distinguish "unset" from zero.
type RawConfig struct {
	Version   string          `yaml:"version"`
	Simulator SimulatorConfig `yaml:"simulator"`
	History   *HistoryConfig  `yaml:"history,omitempty"`
	RNG       *RNGConfig      `yaml:"rng,omitempty"`
	Sessions  *SessionsConfig `yaml:"sessions,omitempty"`
	Notes     string          `yaml:"notes,omitempty"`
}

type SimulatorConfig struct {
	DefaultTrials   *int   `yaml:"default_trials"`
	MaxTrials       *int   `yaml:"max_trials"`
	DefaultStrategy string `yaml:"default_strategy,omitempty"` // "switch" | "keep"
	Workers         *int   `yaml:"workers,omitempty"`
}
type HistoryConfig struct {
	Size *int `yaml:"size"`
}
type RNGConfig struct {
	Seed *uint64 `yaml:"seed"` // 0 => crypto source
}
type SessionsConfig struct {
	Max     *int   `yaml:"max"`
	IdleTTL string `yaml:"idle_ttl,omitempty"` // time.ParseDuration syntax
}

// Settings are the normalized values the host runs with.
type Settings struct {
	DefaultTrials   int
	MaxTrials       int
	DefaultStrategy monty.Strategy
	Workers         int
	HistorySize     int
	Seed            uint64
	MaxSessions     int
	SessionIdleTTL  time.Duration
	Version         string // effective config version for logging
}

// DefaultSettings mirrors the classic single-page game: 100 trials by
// default, capped at 1000, switch strategy, ten remembered results.
func DefaultSettings() Settings {
	return Settings{
		DefaultTrials:   100,
		MaxTrials:       1000,
		DefaultStrategy: monty.StrategySwitch,
		Workers:         1,
		HistorySize:     10,
		MaxSessions:     1000,
		SessionIdleTTL:  30 * time.Minute,
	}
}
