package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/xtding233/montyhall/internal/monty"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	sim := cfg.Simulator
	if sim.DefaultTrials != nil && *sim.DefaultTrials < 1 {
		errs = append(errs, "simulator.default_trials must be >= 1")
	}
	if sim.MaxTrials != nil && *sim.MaxTrials < 1 {
		errs = append(errs, "simulator.max_trials must be >= 1")
	}
	if sim.DefaultTrials != nil && sim.MaxTrials != nil && *sim.DefaultTrials > *sim.MaxTrials {
		errs = append(errs, "simulator.default_trials must not exceed simulator.max_trials")
	}
	if sim.DefaultStrategy != "" {
		if _, err := monty.ParseStrategy(sim.DefaultStrategy); err != nil {
			errs = append(errs, "simulator.default_strategy must be one of: switch, keep")
		}
	}
	if sim.Workers != nil && *sim.Workers < 1 {
		errs = append(errs, "simulator.workers must be >= 1")
	}

	if cfg.History != nil && cfg.History.Size != nil && *cfg.History.Size < 1 {
		errs = append(errs, "history.size must be >= 1")
	}

	if cfg.Sessions != nil {
		if cfg.Sessions.Max != nil && *cfg.Sessions.Max < 1 {
			errs = append(errs, "sessions.max must be >= 1")
		}
		if cfg.Sessions.IdleTTL != "" {
			d, err := time.ParseDuration(cfg.Sessions.IdleTTL)
			if err != nil {
				errs = append(errs, fmt.Sprintf("sessions.idle_ttl: %v", err))
			} else if d <= 0 {
				errs = append(errs, "sessions.idle_ttl must be positive")
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Normalize validates cfg and fills unset fields from DefaultSettings.
func Normalize(cfg RawConfig) (Settings, error) {
	if err := ValidateRaw(cfg); err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	s.Version = cfg.Version

	sim := cfg.Simulator
	if sim.MaxTrials != nil {
		s.MaxTrials = *sim.MaxTrials
	}
	if sim.DefaultTrials != nil {
		s.DefaultTrials = *sim.DefaultTrials
	}
	// a lowered cap drags the inherited default down with it
	if s.DefaultTrials > s.MaxTrials {
		s.DefaultTrials = s.MaxTrials
	}
	if sim.DefaultStrategy != "" {
		s.DefaultStrategy, _ = monty.ParseStrategy(sim.DefaultStrategy)
	}
	if sim.Workers != nil {
		s.Workers = *sim.Workers
	}
	if cfg.History != nil && cfg.History.Size != nil {
		s.HistorySize = *cfg.History.Size
	}
	if cfg.RNG != nil && cfg.RNG.Seed != nil {
		s.Seed = *cfg.RNG.Seed
	}
	if cfg.Sessions != nil {
		if cfg.Sessions.Max != nil {
			s.MaxSessions = *cfg.Sessions.Max
		}
		if cfg.Sessions.IdleTTL != "" {
			s.SessionIdleTTL, _ = time.ParseDuration(cfg.Sessions.IdleTTL)
		}
	}
	return s, nil
}
