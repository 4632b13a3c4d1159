package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/report"
	"github.com/taurusgroup/multi-party-compute/pkg/sce"
	"github.com/taurusgroup/multi-party-compute/protocols/bgw"
	cli "github.com/urfave/cli/v2"
)

var (
	inputFlag = &cli.Uint64Flag{
		Name:  "input",
		Usage: "private input of the party, twice its id by default",
	}
	warmupFlag = &cli.BoolFlag{
		Name:  "warmup",
		Usage: "run the computation once before the measured run",
	}
)

var sumCmd = &cli.Command{
	Name:  "sum",
	Usage: "compute the sum of the private inputs of every party",
	Flags: []cli.Flag{configFlag, idFlag, inputFlag, warmupFlag, reportFlag, metricsFlag},
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

		input := 2 * uint64(cfg.Session.Party)
		if c.IsSet(inputFlag.Name) {
			input = c.Uint64(inputFlag.Name)
		}
		ctx, cancel := signalContext(c.Context)
		defer cancel()
		return runSum(ctx, l, cfg, input, c.Bool(warmupFlag.Name))
	},
}

func runSum(ctx context.Context, l log.Logger, cfg *config.Config, input uint64, warmup bool) (err error) {
	if cfg.Session.Suite != config.SuiteBGW {
		return fmt.Errorf("sum requires the %s suite, configured %s", config.SuiteBGW, cfg.Session.Suite)
	}
	f, err := cfg.Field()
	if err != nil {
		return err
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

	newApp := func() *bgw.DistSum {
		return &bgw.DistSum{Field: f, Threshold: cfg.BGW.Threshold, Input: f.FromUint64(input)}
	}
	if warmup {
		if _, err = s.Run(ctx, newApp()); err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
	}

	timer := report.StartTimer(clockwork.NewRealClock())
	app := newApp()
	if _, err = s.Run(ctx, app); err != nil {
		return err
	}
	sum, err := app.Result()
	if err != nil {
		return err
	}
	elapsed := timer.Elapsed()
	l.Infow("sum computed", "result", sum.String(), "elapsed", elapsed)
	fmt.Println(sum.String())

	w, err := openReport(cfg.Report.Path)
	if err != nil {
		return err
	}
	return w.Write(report.Record{
		PartyCount: len(cfg.Parties),
		Elapsed:    elapsed,
		PartyID:    cfg.Session.Party,
		Result:     sum.String(),
	})
}
