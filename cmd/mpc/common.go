package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/metrics"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/report"
	cli "github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "TOML configuration of the party",
		Required: true,
	}
	idFlag = &cli.UintFlag{
		Name:  "id",
		Usage: "override the id of the local party",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "log at debug level",
	}
	reportFlag = &cli.StringFlag{
		Name:  "report",
		Usage: "append the result of the run to this CSV file",
	}
	metricsFlag = &cli.StringFlag{
		Name:  "metrics",
		Usage: "serve prometheus metrics on this address",
	}
)

// loadConfig reads the configuration and applies the flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if c.IsSet(idFlag.Name) {
		cfg.Session.Party = party.ID(c.Uint(idFlag.Name))
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if c.IsSet(reportFlag.Name) {
		cfg.Report.Path = c.String(reportFlag.Name)
	}
	if c.IsSet(metricsFlag.Name) {
		cfg.Metrics.Listen = c.String(metricsFlag.Name)
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg *config.Config) (log.Logger, error) {
	level := log.DefaultLevel
	if cfg != nil {
		var err error
		if level, err = log.ParseLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	if c.Bool(verboseFlag.Name) {
		level = log.DebugLevel
	}
	json := cfg != nil && cfg.Log.JSON
	l := log.New(nil, level, json)
	if cfg != nil {
		l = l.With("party", cfg.Session.Party)
	}
	return l, nil
}

// startMetrics serves metrics when configured. The returned function stops it.
func startMetrics(l log.Logger, cfg *config.Config) (func(), error) {
	if cfg.Metrics.Listen == "" {
		return func() {}, nil
	}
	ln, err := metrics.Start(l, cfg.Metrics.Listen)
	if err != nil {
		return nil, err
	}
	return func() { _ = ln.Close() }, nil
}

// openReport returns the writer for path, discarding records when path is empty.
func openReport(path string) (report.Writer, error) {
	w, err := report.Open(path)
	if errors.Is(err, report.ErrNoPath) {
		return report.Discard, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// signalContext is cancelled on SIGINT and SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
