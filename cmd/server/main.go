package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/grpcapi"
	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/httpapi"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "monty",
	})

	proc, err := config.ParseProcess(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatal("parse config", "err", err)
	}
	level, err := log.ParseLevel(proc.LogLevel)
	if err != nil {
		logger.Fatal("parse log level", "level", proc.LogLevel, "err", err)
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, proc, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, proc config.Process, logger *log.Logger) error {
	loader := config.NewLoader(proc.ConfigDir)
	settings, err := loader.Load(proc.Profile)
	if err != nil {
		return err
	}
	logger.Info("settings loaded", "profile", proc.Profile, "version", settings.Version)

	// bind every listener before anything starts serving
	var httpLis, grpcLis net.Listener
	if proc.HTTPAddr != "" {
		if httpLis, err = net.Listen("tcp", proc.HTTPAddr); err != nil {
			return err
		}
	}
	if proc.GRPCAddr != "" {
		if grpcLis, err = net.Listen("tcp", proc.GRPCAddr); err != nil {
			if httpLis != nil {
				_ = httpLis.Close()
			}
			return err
		}
	}
	h := host.New(settings, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if proc.ReloadInterval > 0 {
		paths := loader.Paths().Watched(proc.Profile)
		watcher := config.NewFileWatcher(paths, proc.ReloadInterval, func(path string) {
			loader.Invalidate()
			next, err := loader.Load(proc.Profile)
			if err != nil {
				logger.Warn("settings reload rejected", "path", path, "err", err)
				return
			}
			h.Apply(next)
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepSessions(ctx, h)
	}()

	var httpSrv *http.Server
	if httpLis != nil {
		httpSrv = &http.Server{
			Handler:           httpapi.New(h, logger).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("http listening", "addr", proc.HTTPAddr)
			if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var grpcSrv *grpcapi.Server
	if grpcLis != nil {
		grpcSrv = grpcapi.NewServer(h, logger)
		go func() {
			logger.Info("grpc listening", "addr", proc.GRPCAddr)
			if err := grpcSrv.Serve(grpcLis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	logger.Info("shutting down")
	cancel()

	if httpSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("http shutdown", "err", serr)
		}
		done()
	}
	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	wg.Wait()
	return err
}

// sweepSessions closes idle rounds once a minute.
func sweepSessions(ctx context.Context, h *host.Host) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.Sweep(now)
		case <-ctx.Done():
			return
		}
	}
}
