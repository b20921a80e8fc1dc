// Package app runs the daemon's dependencies and coordinates a
// signal-driven graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Dependency is anything the application starts and stops. Start may
// block for the dependency's lifetime (a server's accept loop) or
// return once warm-up is done.
type Dependency interface {
	Start() error
	Stop() error
	// Name identifies the dependency in logs, nothing more.
	Name() string
}

type App struct {
	serviceName string
	deps        []Dependency
	// depFailChan receives the first failure from any dependency.
	depFailChan chan error
	// osSignalChan receives the interrupt that begins shutdown.
	osSignalChan chan os.Signal
	stopCalled   *atomic.Bool
	runCalled    *atomic.Bool
	stopTimeout  time.Duration
}

type Config struct {
	ServiceName string
	StopTimeout time.Duration
}

func (c *Config) validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if c.StopTimeout == 0 {
		errs = append(errs, errors.New("stop timeout is required"))
	}
	return errors.Join(errs...)
}

// New creates an application that manages the provided dependencies.
func New(cfg *Config, deps ...Dependency) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &App{
		serviceName:  cfg.ServiceName,
		deps:         deps,
		stopTimeout:  cfg.StopTimeout,
		stopCalled:   &atomic.Bool{},
		runCalled:    &atomic.Bool{},
		depFailChan:  make(chan error, len(deps)),
		osSignalChan: make(chan os.Signal, 1),
	}, nil
}

// Run starts every dependency and blocks until the context is
// cancelled, a dependency fails, or the OS asks the process to stop.
// It then stops the dependencies in reverse start order.
func (a *App) Run(ctx context.Context) error {
	if !a.runCalled.CompareAndSwap(false, true) {
		return errors.New("run has already been called")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, dep := range a.deps {
		go func(dep Dependency) {
			defer func() {
				if r := recover(); r != nil {
					a.depFailChan <- fmt.Errorf("panic in Start() for dependency %s: %v", dep.Name(), r)
				}
			}()

			log.Info().Str("dependency", dep.Name()).Msg("starting dependency")
			if err := dep.Start(); err != nil {
				a.depFailChan <- fmt.Errorf("failure in Start() for dependency %s: %w", dep.Name(), err)
			}
		}(dep)
	}

	signal.Notify(a.osSignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.osSignalChan)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("context cancelled: shutting down")
	case depErr := <-a.depFailChan:
		log.Error().Err(depErr).Msg("dependency failed")
		runErr = depErr
	case sig := <-a.osSignalChan:
		log.Info().Str("signal", sig.String()).Msg("OS signal received: shutdown beginning")
	}

	return errors.Join(runErr, a.stop())
}

// stop attempts a graceful shutdown of each dependency, newest first,
// bounded by the stop timeout.
func (a *App) stop() error {
	if !a.stopCalled.CompareAndSwap(false, true) {
		return errors.New("stop has already been called")
	}

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i := len(a.deps) - 1; i >= 0; i-- {
			dep := a.deps[i]
			log.Info().Str("dependency", dep.Name()).Msg("stopping dependency")
			if err := dep.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failure in Stop() for dependency %s: %w", dep.Name(), err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(a.stopTimeout):
		return fmt.Errorf("shutdown timed out after %s", a.stopTimeout)
	}
}
