package main

import (
	"context"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/rpc"
	cli "github.com/urfave/cli/v2"
)

var listenFlag = &cli.StringFlag{
	Name:  "listen",
	Usage: "address of the front-end, host:port or unix:///path",
	Value: "unix:///tmp/grpc.sock",
}

var rpcCmd = &cli.Command{
	Name:  "rpc",
	Usage: "serve the front-end and compute the sum of every prepared session",
	Flags: []cli.Flag{configFlag, idFlag, listenFlag, reportFlag, metricsFlag},
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

		srv := rpc.NewServer(l, func(_ context.Context, session string, addresses map[party.ID]string) error {
			prepared, err := withParticipants(cfg, session, addresses)
			if err != nil {
				return err
			}
			go runPrepared(ctx, l, prepared)
			return nil
		})
		ln, err := rpc.Listen(ctx, c.String(listenFlag.Name))
		if err != nil {
			return err
		}
		g := srv.GRPC()
		go func() {
			<-ctx.Done()
			g.GracefulStop()
		}()
		l.Infow("front-end listening", "address", ln.Addr().String())
		return g.Serve(ln)
	},
}

// withParticipants returns a copy of base for the given session and parties.
func withParticipants(base *config.Config, session string, addresses map[party.ID]string) (*config.Config, error) {
	cfg := *base
	cfg.Session.ID = session
	cfg.Parties = make([]config.Peer, 0, len(addresses))
	for _, id := range party.NewIDSlice(keys(addresses)) {
		cfg.Parties = append(cfg.Parties, config.Peer{ID: id, Address: addresses[id]})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func keys(m map[party.ID]string) []party.ID {
	out := make([]party.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

func runPrepared(ctx context.Context, l log.Logger, cfg *config.Config) {
	l = l.With("session", cfg.Session.ID)
	if err := runSum(ctx, l, cfg, 2*uint64(cfg.Session.Party), false); err != nil {
		l.Errorw("session failed", "err", err)
	}
}
