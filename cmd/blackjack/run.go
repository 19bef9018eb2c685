package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/rickgao/arcade-client/internal/config"
	"github.com/rickgao/arcade-client/internal/connection"
	"github.com/rickgao/arcade-client/internal/version"
)

const shutdownTimeout = 10 * time.Second

// options holds command-line flags. Zero values leave the config untouched.
type options struct {
	configPath     string
	url            string
	reconnectDelay time.Duration
	logLevel       string
	showVersion    bool
	showHelp       bool
}

func parseFlags(args []string, out io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("blackjack", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file (defaults used if empty)")
	fs.StringVar(&opts.url, "url", "", "Override the game WebSocket URL")
	fs.DurationVar(&opts.reconnectDelay, "reconnect-delay", 0, "Override the fixed reconnect delay")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Show this help")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

// run loads configuration, starts the Connection Manager and blocks until
// ctx is cancelled.
func run(ctx context.Context, args []string, out io.Writer) error {
	opts, fs, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	if opts.showHelp {
		fmt.Fprintf(out, "Usage: blackjack [OPTIONS]\n\n")
		fs.PrintDefaults()
		return nil
	}
	if opts.showVersion {
		fmt.Fprintln(out, version.String())
		return nil
	}

	loadDotEnv(out)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, out)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting blackjack client",
		"version", version.Version,
		"commit", version.Commit,
		"config", opts.configPath,
	)

	mgr := connection.NewManager(managerConfig(cfg), nil, logger)
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start connection manager: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := mgr.Stop(shutdownCtx); err != nil {
		return err
	}

	stats := mgr.Stats()
	logger.Info("blackjack client stopped",
		"attempts", stats.Attempts,
		"disconnects", stats.Disconnects,
		"messages", stats.MessagesReceived,
		"parse_errors", stats.ParseErrors,
	)
	return nil
}

// loadDotEnv loads .env if it exists; a missing file is not an error.
func loadDotEnv(out io.Writer) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(out, "warning: error loading .env file: %v\n", err)
		}
	}
}

func loadConfig(opts *options) (*config.ClientConfig, error) {
	var cfg *config.ClientConfig
	if opts.configPath == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.LoadWithDefaults(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.url != "" {
		cfg.Endpoint.URL = opts.url
	}
	if opts.reconnectDelay != 0 {
		cfg.Connection.ReconnectDelay = opts.reconnectDelay
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts)), nil
}

func managerConfig(cfg *config.ClientConfig) connection.ManagerConfig {
	return connection.ManagerConfig{
		URL:              cfg.Endpoint.URL,
		Origin:           cfg.Endpoint.Origin,
		HandshakeTimeout: cfg.Endpoint.HandshakeTimeout,
		ReconnectDelay:   cfg.Connection.ReconnectDelay,
		PingInterval:     cfg.Connection.PingInterval,
		ReadTimeout:      cfg.Connection.ReadTimeout,
		BufferSize:       cfg.Connection.BufferSize,
	}
}
