// Package config loads runtime configuration for deskpointer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr       = "0.0.0.0:8081"
	defaultDataDir          = "./data"
	defaultBatchMaxSize     = 32
	defaultBatchMaxInterval = 8 * time.Millisecond
	defaultIdleTimeout      = 5 * time.Minute
	defaultPointerDriver    = "auto"
	defaultLogLevel         = "info"
	defaultReadLimit        = 512
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr       string        `yaml:"listen_addr" envconfig:"LISTEN_ADDR"`
	DataDir          string        `yaml:"-" envconfig:"DATA_DIR"`
	StaticDir        string        `yaml:"static_dir" envconfig:"STATIC_DIR"`
	BatchMaxSize     int           `yaml:"batch_max_size" envconfig:"BATCH_MAX_SIZE"`
	BatchMaxInterval time.Duration `yaml:"batch_max_interval" envconfig:"BATCH_MAX_INTERVAL"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MoveStepDelay    time.Duration `yaml:"move_step_delay" envconfig:"MOVE_STEP_DELAY"`
	PointerDriver    string        `yaml:"pointer_driver" envconfig:"POINTER_DRIVER"`
	WebRTCEnabled    bool          `yaml:"webrtc_enabled" envconfig:"WEBRTC_ENABLED"`
	ICEServers       []string      `yaml:"ice_servers" envconfig:"ICE_SERVERS"`
	ShowQR           bool          `yaml:"show_qr" envconfig:"SHOW_QR"`
	LogLevel         string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	ReadLimit        int64         `yaml:"read_limit" envconfig:"READ_LIMIT"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr:       defaultListenAddr,
		DataDir:          defaultDataDir,
		BatchMaxSize:     defaultBatchMaxSize,
		BatchMaxInterval: defaultBatchMaxInterval,
		IdleTimeout:      defaultIdleTimeout,
		PointerDriver:    defaultPointerDriver,
		WebRTCEnabled:    true,
		ShowQR:           true,
		LogLevel:         defaultLogLevel,
		ReadLimit:        defaultReadLimit,
	}
}

// Load reads configuration from defaults, <DATA_DIR>/config.yaml, <DATA_DIR>/.env and the
// environment, later sources winning. Values already set in the environment are never replaced by
// the .env file.
func Load() (Config, error) {
	cfg := Defaults()
	if dir := strings.TrimSpace(os.Getenv("DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	if err := loadYAML(filepath.Join(cfg.DataDir, "config.yaml"), &cfg); err != nil {
		return Config{}, err
	}
	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	cfg.PointerDriver = strings.ToLower(strings.TrimSpace(cfg.PointerDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("LISTEN_ADDR must not be empty"))
	}
	if c.BatchMaxSize < 1 {
		errs = append(errs, errors.New("BATCH_MAX_SIZE must be >= 1"))
	}
	if c.BatchMaxInterval <= 0 {
		errs = append(errs, errors.New("BATCH_MAX_INTERVAL must be > 0"))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, errors.New("IDLE_TIMEOUT must be >= 0"))
	}
	if c.MoveStepDelay < 0 {
		errs = append(errs, errors.New("MOVE_STEP_DELAY must be >= 0"))
	}
	if c.ReadLimit < 16 {
		errs = append(errs, errors.New("READ_LIMIT must be >= 16"))
	}
	switch c.PointerDriver {
	case "auto", "robotgo", "uinput", "wayland", "sendinput":
	default:
		errs = append(errs, fmt.Errorf("POINTER_DRIVER %q is not supported", c.PointerDriver))
	}
	return errors.Join(errs...)
}

// loadYAML decodes path into cfg when the file exists.
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file without overriding the environment.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
