package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/ot"
	"github.com/taurusgroup/multi-party-compute/pkg/report"
	"github.com/taurusgroup/multi-party-compute/pkg/sce"
	"github.com/taurusgroup/multi-party-compute/protocols/tinytables"
	cli "github.com/urfave/cli/v2"
)

var gatesFlag = &cli.IntFlag{
	Name:  "gates",
	Usage: "number of AND gates to preprocess",
	Value: 1000,
}

var tinyTablesCmd = &cli.Command{
	Name:  "tinytables",
	Usage: "preprocess a chain of AND gates between parties 1 and 2",
	Flags: []cli.Flag{configFlag, idFlag, gatesFlag, reportFlag, metricsFlag},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		l, err := newLogger(c, cfg)
		if err != nil {
			return err
		}
		stop, err := startMetrics(l, cfg)
		if err != nil {
			return err
		}
		defer stop()
		ctx, cancel := signalContext(c.Context)
		defer cancel()
		return runTinyTables(ctx, l, cfg, c.Int(gatesFlag.Name))
	},
}

// connectOT returns the transfer endpoint of the party: party 1 serves, party 2 dials.
func connectOT(ctx context.Context, l log.Logger, cfg *config.Config) (*ot.Endpoint, error) {
	opts := []ot.Option{ot.WithLogger(l), ot.WithMaxBatch(cfg.OT.MaxBatch)}
	if cfg.Session.Party == 1 {
		return ot.Listen(ctx, cfg.OT.Address, opts...)
	}
	return ot.Dial(ctx, cfg.OT.Address, opts...)
}

func runTinyTables(ctx context.Context, l log.Logger, cfg *config.Config, gates int) (err error) {
	if cfg.Session.Suite != config.SuiteTinyTables {
		return fmt.Errorf("tinytables requires the %s suite, configured %s", config.SuiteTinyTables, cfg.Session.Suite)
	}
	s, err := sce.Open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	endpoint, err := connectOT(ctx, l, cfg)
	if err != nil {
		return err
	}
	s.OnClose("ot", endpoint.Close)

	timer := report.StartTimer(clockwork.NewRealClock())
	app := &tinytables.Preprocessing{Circuit: tinytables.Chain(gates)}
	stats, err := s.Run(ctx, app)
	if err != nil {
		return err
	}
	if err = app.Finish(ctx, endpoint); err != nil {
		return err
	}
	elapsed := timer.Elapsed()
	ids, err := app.Suite().Gates(ctx)
	if err != nil {
		return err
	}
	l.Infow("preprocessing done", "gates", len(ids), "rounds", stats.Rounds, "elapsed", elapsed)

	w, err := openReport(cfg.Report.Path)
	if err != nil {
		return err
	}
	return w.Write(report.Record{
		PartyCount: len(cfg.Parties),
		Elapsed:    elapsed,
		PartyID:    cfg.Session.Party,
		Result:     fmt.Sprint(len(ids)),
	})
}
