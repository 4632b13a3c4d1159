package main

import (
	"crypto/rand"

	"github.com/jonboulle/clockwork"
	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/pkg/math/sample"
	"github.com/taurusgroup/multi-party-compute/pkg/ot"
	"github.com/taurusgroup/multi-party-compute/pkg/report"
	cli "github.com/urfave/cli/v2"
)

var (
	otAddressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "address of the transfer service",
		Value: "127.0.0.1:9100",
	}
	otCountFlag = &cli.IntFlag{
		Name:  "count",
		Usage: "number of transfers per run",
		Value: 50000,
	}
	otRunsFlag = &cli.IntFlag{
		Name:  "runs",
		Usage: "number of runs over the same connection",
		Value: 1,
	}
	otMaxBatchFlag = &cli.IntFlag{
		Name:  "max-batch",
		Usage: "ceiling of a single transfer batch, must match on both sides",
		Value: params.MaxOTs,
	}
)

var otServeCmd = &cli.Command{
	Name:  "ot-serve",
	Usage: "serve random transfers as the sender",
	Flags: []cli.Flag{otAddressFlag, otCountFlag, otRunsFlag, otMaxBatchFlag, metricsFlag},
	Action: func(c *cli.Context) error {
		l, err := newLogger(c, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(c.Context)
		defer cancel()
		e, err := ot.Listen(ctx, c.String(otAddressFlag.Name), ot.WithLogger(l), ot.WithMaxBatch(c.Int(otMaxBatchFlag.Name)))
		if err != nil {
			return err
		}
		defer e.Close()
		n := c.Int(otCountFlag.Name)
		for i := 0; i < c.Int(otRunsFlag.Name); i++ {
			pairs, err := ot.Pairs(sample.Bools(rand.Reader, n), sample.Bools(rand.Reader, n))
			if err != nil {
				return err
			}
			if err = e.Send(ctx, pairs); err != nil {
				return err
			}
			l.Infow("transfers sent", "run", i, "count", n)
		}
		return nil
	},
}

var otBenchCmd = &cli.Command{
	Name:  "ot-bench",
	Usage: "measure random transfers as the receiver",
	Flags: []cli.Flag{otAddressFlag, otCountFlag, otRunsFlag, otMaxBatchFlag},
	Action: func(c *cli.Context) error {
		l, err := newLogger(c, nil)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(c.Context)
		defer cancel()
		e, err := ot.Dial(ctx, c.String(otAddressFlag.Name), ot.WithLogger(l), ot.WithMaxBatch(c.Int(otMaxBatchFlag.Name)))
		if err != nil {
			return err
		}
		defer e.Close()
		n := c.Int(otCountFlag.Name)
		clock := clockwork.NewRealClock()
		for i := 0; i < c.Int(otRunsFlag.Name); i++ {
			timer := report.StartTimer(clock)
			if _, err = e.Receive(ctx, sample.Bools(rand.Reader, n)); err != nil {
				return err
			}
			elapsed := timer.Elapsed()
			l.Infow("transfers received", "run", i, "count", n, "elapsed", elapsed,
				"per_second", float64(n)/elapsed.Seconds())
		}
		return nil
	},
}

