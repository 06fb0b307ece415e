package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/app"
	"github.com/frudas24/deskpointer/internal/config"
	"github.com/frudas24/deskpointer/internal/hostinput"
	"github.com/frudas24/deskpointer/internal/pairing"
)

const shutdownTimeout = 5 * time.Second

// BindError reports that the listen address could not be bound. It is fatal at startup.
type BindError struct {
	Addr string
	Err  error
}

// Error implements error.
func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindError) Unwrap() error {
	return e.Err
}

// run wires the application and blocks until shutdown.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	logStartup(cfg, log)

	dev, err := hostinput.Open(cfg.PointerDriver, log.With().Str("component", "hostinput").Logger())
	if err != nil {
		return err
	}

	a, err := app.New(cfg, dev, log)
	if err != nil {
		_ = dev.Close()
		return err
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		_ = a.Shutdown(context.Background())
		return &BindError{Addr: cfg.ListenAddr, Err: err}
	}
	logListenStatus(cfg, ln.Addr().String(), log)

	server := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websockets are not tracked by http.Server; the app closes them.
	return errors.Join(serveErr, server.Shutdown(shutdownCtx), a.Shutdown(shutdownCtx))
}

// logStartup reports the effective configuration.
func logStartup(cfg config.Config, log zerolog.Logger) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	_, envErr := os.Stat(envPath)
	log.Info().
		Str("version", version).
		Str("driver", cfg.PointerDriver).
		Int("batch_max_size", cfg.BatchMaxSize).
		Dur("batch_max_interval", cfg.BatchMaxInterval).
		Dur("idle_timeout", cfg.IdleTimeout).
		Bool("webrtc", cfg.WebRTCEnabled).
		Bool("env_file", envErr == nil).
		Msg("deskpointer starting")
}

// logListenStatus reports the bound address and prints the pairing URL.
func logListenStatus(cfg config.Config, bound string, log zerolog.Logger) {
	log.Info().Str("addr", bound).Msg("listening")

	lan, err := pairing.LocalIP()
	if err != nil {
		log.Warn().Err(err).Msg("LAN address lookup failed")
	}
	url, err := pairing.URL(bound, lan)
	if err != nil {
		log.Warn().Err(err).Msg("pairing url unavailable")
		return
	}
	pairing.Print(os.Stdout, url, cfg.ShowQR)
}
