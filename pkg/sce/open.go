package sce

import (
	"context"
	"fmt"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/config"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/pool"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/storage"
)

// Open connects the party described by cfg to its peers, and returns its session.
// The preprocessing store is a bolt database when cfg.Storage.Path is set.
func Open(ctx context.Context, cfg *config.Config, l log.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var store storage.Store
	if cfg.Storage.Path != "" {
		b, err := storage.OpenBolt(ctx, l, cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("sce: %w", err)
		}
		store = b
	} else {
		store = storage.NewMemory()
	}

	var workers *pool.Pool
	if cfg.Engine.Workers >= 0 {
		workers = pool.NewPool(cfg.Engine.Workers)
	}
	rp, err := resource.New(cfg.Session.Party, cfg.PartyIDs(),
		resource.WithStore(store),
		resource.WithWorkers(workers),
		resource.WithLogger(l),
	)
	if err != nil {
		workers.TearDown()
		_ = store.Close()
		return nil, err
	}

	net, err := network.Connect(ctx, l, cfg.Session.Party, cfg.Addresses())
	if err != nil {
		workers.TearDown()
		_ = store.Close()
		return nil, err
	}
	return NewSession(cfg.Session.ID, rp, net, WithMaxBatch(cfg.Engine.MaxBatch)), nil
}
