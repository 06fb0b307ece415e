package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/frudas24/deskpointer/internal/config"
)

// TestApplyFlags_OnlyChanged verifies unset flags leave loaded values alone.
func TestApplyFlags_OnlyChanged(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--driver", "UInput", "--no-qr"}))

	cfg := config.Defaults()
	cfg.ListenAddr = "127.0.0.1:9999"
	opts := options{driver: "UInput", noQR: true}
	applyFlags(cmd, opts, &cfg)

	require.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	require.Equal(t, "uinput", cfg.PointerDriver)
	require.False(t, cfg.ShowQR)
}

// TestNewLogger_DebugWins verifies --debug overrides the configured level.
func TestNewLogger_DebugWins(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	newLogger("warn", true)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	newLogger("bogus", false)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

// TestVersionCmd verifies the version output.
func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, version+"\n", out.String())
}

// TestBindError verifies unwrapping.
func TestBindError(t *testing.T) {
	inner := bytes.ErrTooLarge
	err := &BindError{Addr: ":1", Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), ":1")
}
