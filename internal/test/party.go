package test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/sce"
)

// PartyIDs returns the party.IDSlice 1..n.
func PartyIDs(n int) party.IDSlice {
	return party.Range(n)
}

// Pools returns one resource pool per party, with a test logger.
func Pools(t testing.TB, partyIDs party.IDSlice, opts ...resource.Option) map[party.ID]*resource.Pool {
	pools := make(map[party.ID]*resource.Pool, len(partyIDs))
	for _, id := range partyIDs {
		all := append([]resource.Option{resource.WithLogger(testlogger.New(t))}, opts...)
		p, err := resource.New(id, partyIDs, all...)
		require.NoError(t, err)
		pools[id] = p
	}
	return pools
}

// Sessions returns one session per party over an in-memory network.
// The sessions are closed when the test ends.
func Sessions(t testing.TB, n int, opts ...sce.EngineOption) map[party.ID]*sce.Session {
	partyIDs := PartyIDs(n)
	nets := network.NewLocal(partyIDs)
	sessions := make(map[party.ID]*sce.Session, n)
	for id, rp := range Pools(t, partyIDs) {
		sessions[id] = sce.NewSession(t.Name(), rp, nets[id], opts...)
	}
	t.Cleanup(func() {
		for _, s := range sessions {
			_ = s.Close()
		}
	})
	return sessions
}
