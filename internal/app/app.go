// Package app wires the pointer device, the session supervisor, signaling and HTTP routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
	"github.com/frudas24/deskpointer/internal/coalesce"
	"github.com/frudas24/deskpointer/internal/config"
	"github.com/frudas24/deskpointer/internal/control"
	"github.com/frudas24/deskpointer/internal/session"
	"github.com/frudas24/deskpointer/internal/signaling"
	"github.com/frudas24/deskpointer/internal/webrtc"
)

// App owns the shared actuator and every live session.
type App struct {
	cfg        config.Config
	log        zerolog.Logger
	pointer    *actuator.Pointer
	supervisor *control.Supervisor
	signaling  *signaling.Server
	started    time.Time
}

// New creates the application around dev. The app takes ownership of dev and closes it in
// Shutdown.
func New(cfg config.Config, dev actuator.Device, log zerolog.Logger) (*App, error) {
	if dev == nil {
		return nil, errors.New("pointer device is required")
	}
	sessCfg := SessionConfig(cfg)
	if err := sessCfg.Coalesce.Validate(); err != nil {
		return nil, err
	}

	pointer, err := actuator.New(dev,
		actuator.WithStepDelay(cfg.MoveStepDelay),
		actuator.WithLogger(log.With().Str("component", "actuator").Logger()),
	)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		pointer: pointer,
		started: time.Now(),
	}
	a.supervisor = control.NewSupervisor(pointer, sessCfg,
		log.With().Str("component", "supervisor").Logger(),
		control.WithReadLimit(cfg.ReadLimit),
	)

	if cfg.WebRTCEnabled {
		peers, err := webrtc.NewPeerFactory(cfg.ICEServers)
		if err != nil {
			_ = pointer.Close()
			return nil, fmt.Errorf("webrtc: %w", err)
		}
		a.signaling = signaling.NewServer(peers, a.supervisor,
			log.With().Str("component", "signaling").Logger())
	}
	return a, nil
}

// SessionConfig maps runtime configuration onto per-session settings.
func SessionConfig(cfg config.Config) session.Config {
	return session.Config{
		Coalesce: coalesce.Config{
			MaxBatchSize:     cfg.BatchMaxSize,
			MaxBatchInterval: cfg.BatchMaxInterval,
		},
		IdleTimeout: cfg.IdleTimeout,
	}
}

// Supervisor returns the session supervisor.
func (a *App) Supervisor() *control.Supervisor {
	return a.supervisor
}

// Shutdown closes every session, flushing their pending motion, then releases the device.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.supervisor.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}
	if err := a.pointer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pointer device: %w", err))
	}
	return errors.Join(errs...)
}
