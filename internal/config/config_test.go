package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"LISTEN_ADDR", "DATA_DIR", "STATIC_DIR", "BATCH_MAX_SIZE", "BATCH_MAX_INTERVAL", "IDLE_TIMEOUT",
	"MOVE_STEP_DELAY", "POINTER_DRIVER", "WEBRTC_ENABLED", "ICE_SERVERS", "SHOW_QR", "LOG_LEVEL",
	"READ_LIMIT",
}

// isolate points DATA_DIR at a temp dir and clears every config key for the test.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// TestLoad_Defaults verifies the built-in values.
func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8081", cfg.ListenAddr)
	require.Equal(t, dir, cfg.DataDir)
	require.Equal(t, 32, cfg.BatchMaxSize)
	require.Equal(t, 8*time.Millisecond, cfg.BatchMaxInterval)
	require.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	require.Equal(t, "auto", cfg.PointerDriver)
	require.True(t, cfg.WebRTCEnabled)
	require.True(t, cfg.ShowQR)
	require.EqualValues(t, 512, cfg.ReadLimit)
}

// TestLoad_YAMLThenEnv verifies env values win over the config file.
func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
listen_addr: 127.0.0.1:9000
batch_max_size: 8
batch_max_interval: 15ms
ice_servers:
  - stun:stun.example.org:3478
show_qr: false
`)
	t.Setenv("BATCH_MAX_SIZE", "4")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	require.Equal(t, 4, cfg.BatchMaxSize)
	require.Equal(t, 15*time.Millisecond, cfg.BatchMaxInterval)
	require.Equal(t, []string{"stun:stun.example.org:3478"}, cfg.ICEServers)
	require.False(t, cfg.ShowQR)
}

// TestLoad_EnvFileDoesNotOverride verifies .env only fills unset keys.
func TestLoad_EnvFileDoesNotOverride(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "LISTEN_ADDR=127.0.0.1:7000\nPOINTER_DRIVER=UINPUT\n")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7001")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7001", cfg.ListenAddr)
	require.Equal(t, "uinput", cfg.PointerDriver)
}

// TestLoad_ICEServersFromEnv verifies comma separated lists.
func TestLoad_ICEServersFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ICE_SERVERS", "stun:a.example:3478,stun:b.example:3478")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"stun:a.example:3478", "stun:b.example:3478"}, cfg.ICEServers)
}

// TestLoad_InvalidValues verifies parse and range failures are reported.
func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"BATCH_MAX_SIZE":     "0",
		"BATCH_MAX_INTERVAL": "soon",
		"POINTER_DRIVER":     "joystick",
		"READ_LIMIT":         "4",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

// TestLoad_BadYAML verifies a broken config file is an error.
func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "batch_max_size: [")

	_, err := Load()
	require.Error(t, err)
}
