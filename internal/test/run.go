package test

import (
	"context"
	"sync"

	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/sce"
	"golang.org/x/sync/errgroup"
)

// Run runs the application returned by app on every session concurrently.
// The first failure cancels the other parties.
func Run(ctx context.Context, sessions map[party.ID]*sce.Session, app func(id party.ID) sce.Application) (map[party.ID]sce.Stats, error) {
	eg, ctx := errgroup.WithContext(ctx)
	var (
		mtx   sync.Mutex
		stats = make(map[party.ID]sce.Stats, len(sessions))
	)
	for id, s := range sessions {
		id, s := id, s
		eg.Go(func() error {
			st, err := s.Run(ctx, app(id))
			mtx.Lock()
			stats[id] = st
			mtx.Unlock()
			return err
		})
	}
	return stats, eg.Wait()
}
