// Package cmd provides the CLI commands for the attendance dashboard.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"semaphore/dashboard/internal/clients"
	"semaphore/dashboard/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	outputFmt string
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Attendance dashboard - admin console for the attendance platform",
	Long: `dashboard is a command-line admin console for the attendance platform.

It signs in against the backend API, keeps the session in a local token
store, browses academic data and builds per-course attendance reports.

Quick start:
  dashboard login --email admin@school.edu
  dashboard list departments
  dashboard attendance report --department <id>

Configuration:
  Config is loaded from dashboard.yaml in the current directory or
  $HOME/.attendance-dashboard/.

  Environment variables override config values with the DASHBOARD_ prefix.
  Example: DASHBOARD_API_BASE_URL=https://attendance.example.com/api`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dashboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format: table, json, yaml")
}

// app is the per-invocation wiring shared by commands that talk to the API.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	*clients.Clients
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		cfg.LogFormat = strings.ToLower(logFormat)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	c, err := clients.New(cmd.Context(), cfg, logger, registry)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, registry: registry, Clients: c}, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}
