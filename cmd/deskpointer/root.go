package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/frudas24/deskpointer/internal/config"
	"github.com/frudas24/deskpointer/internal/hostinput"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	debug    bool
	listen   string
	driver   string
	logLevel string
	noQR     bool
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "deskpointer",
		Short:         "Use a phone browser as the mouse of this computer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, opts, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, opts.debug)
			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := root.Flags()
	flags.BoolVar(&opts.debug, "debug", false, "Enable verbose debug logging")
	flags.StringVar(&opts.listen, "listen", "", "Listen address (env: LISTEN_ADDR)")
	flags.StringVar(&opts.driver, "driver", "", "Pointer driver: auto, "+strings.Join(hostinput.Drivers(), ", ")+" (env: POINTER_DRIVER)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	flags.BoolVar(&opts.noQR, "no-qr", false, "Do not print the pairing QR code (env: SHOW_QR=false)")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// applyFlags overrides cfg with flags set on the command line.
func applyFlags(cmd *cobra.Command, opts options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = opts.listen
	}
	if flags.Changed("driver") {
		cfg.PointerDriver = strings.ToLower(strings.TrimSpace(opts.driver))
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(opts.logLevel))
	}
	if opts.noQR {
		cfg.ShowQR = false
	}
}

// newLogger builds the console logger. debug forces the debug level.
func newLogger(level string, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
