package sce_test

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/sce"
	"github.com/taurusgroup/multi-party-compute/protocols/bgw"
	"golang.org/x/sync/errgroup"
)

func freeAddresses(t *testing.T, n int) []string {
	out := make([]string, n)
	for i := range out {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		out[i] = l.Addr().String()
		require.NoError(t, l.Close())
	}
	return out
}

func TestOpen(t *testing.T) {
	const n = 3
	cfgs := config.Local(n, 0, config.SuiteBGW)
	addresses := freeAddresses(t, n)
	for _, cfg := range cfgs {
		for i := range cfg.Parties {
			cfg.Parties[i].Address = addresses[i]
		}
		cfg.BGW.Threshold = 1
	}
	// Party 1 keeps its material in bolt, the others in memory.
	cfgs[0].Storage.Path = filepath.Join(t.TempDir(), "p1")
	cfgs[1].Engine.Workers = -1

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	apps := make([]*bgw.DistSum, n)
	sessions := make([]*sce.Session, n)
	eg, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		eg.Go(func() error {
			s, err := sce.Open(ctx, cfg, testlogger.New(t))
			if err != nil {
				return fmt.Errorf("party %d: %w", i+1, err)
			}
			sessions[i] = s
			f, err := cfg.Field()
			if err != nil {
				return err
			}
			apps[i] = &bgw.DistSum{Field: f, Threshold: cfg.BGW.Threshold, Input: f.FromUint64(2 * uint64(cfg.Session.Party))}
			_, err = s.Run(ctx, apps[i])
			return err
		})
	}
	require.NoError(t, eg.Wait())
	for i, s := range sessions {
		sum, err := apps[i].Result()
		require.NoError(t, err)
		assert.Equal(t, "12", sum.String())
		assert.Equal(t, party.ID(i+1), s.Pool().SelfID())
	}
	for _, s := range sessions {
		assert.NoError(t, s.Close())
	}
}

func TestOpenInvalid(t *testing.T) {
	cfg := config.Local(3, 0, config.SuiteBGW)[0]
	cfg.BGW.Threshold = 2
	_, err := sce.Open(context.Background(), cfg, testlogger.New(t))
	assert.ErrorIs(t, err, config.ErrInvalid)
}
