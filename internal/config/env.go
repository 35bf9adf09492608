package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Process holds listener and file settings read from the environment and
// command-line flags.
type Process struct {
	HTTPAddr       string        `env:"MONTY_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr       string        `env:"MONTY_GRPC_ADDR" envDefault:":9090"`
	ConfigDir      string        `env:"MONTY_CONFIG_DIR" envDefault:"config"`
	Profile        string        `env:"MONTY_PROFILE"`
	LogLevel       string        `env:"MONTY_LOG_LEVEL" envDefault:"info"`
	ReloadInterval time.Duration `env:"MONTY_RELOAD_INTERVAL" envDefault:"5s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseProcess loads env defaults and then lets flags override them.
func ParseProcess(fs *flag.FlagSet, args []string) (Process, error) {
	if fs == nil {
		return Process{}, errors.New("flag parser is required")
	}
	var p Process
	if err := ParseEnv(&p); err != nil {
		return Process{}, err
	}
	fs.StringVar(&p.HTTPAddr, "http", p.HTTPAddr, "HTTP listen address (empty disables)")
	fs.StringVar(&p.GRPCAddr, "grpc", p.GRPCAddr, "gRPC listen address (empty disables)")
	fs.StringVar(&p.ConfigDir, "config", p.ConfigDir, "directory holding default.yaml and profiles/")
	fs.StringVar(&p.Profile, "profile", p.Profile, "settings profile overlaid on default.yaml")
	fs.StringVar(&p.LogLevel, "log-level", p.LogLevel, "debug, info, warn or error")
	fs.DurationVar(&p.ReloadInterval, "reload-interval", p.ReloadInterval, "settings poll interval (0 disables hot reload)")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Process{}, err
	}
	return p, nil
}
