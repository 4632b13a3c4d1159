// Package resource bundles what a party hands to the protocols it evaluates.
package resource

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/multi-party-compute/internal/log"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/pool"
	"github.com/taurusgroup/multi-party-compute/pkg/storage"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// Pool holds the per party resources shared by every protocol of a session.
// All of its members are safe for concurrent use.
type Pool struct {
	selfID   party.ID
	partyIDs party.IDSlice
	rand     io.Reader
	values   *value.Arena
	store    storage.Store
	workers  *pool.Pool
	log      log.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithRand sets the randomness source. It is wrapped in a pool.LockedReader.
func WithRand(r io.Reader) Option { return func(p *Pool) { p.rand = r } }

// WithStore sets the preprocessing store.
func WithStore(s storage.Store) Option { return func(p *Pool) { p.store = s } }

// WithWorkers sets the worker pool used to evaluate a round in parallel.
// Without it, protocols are evaluated one after the other.
func WithWorkers(w *pool.Pool) Option { return func(p *Pool) { p.workers = w } }

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option { return func(p *Pool) { p.log = l } }

// New returns a Pool for party selfID among partyIDs.
func New(selfID party.ID, partyIDs []party.ID, opts ...Option) (*Pool, error) {
	ids := party.NewIDSlice(partyIDs)
	if err := ids.Valid(); err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	if !ids.Contains(selfID) {
		return nil, errors.New("resource: selfID not included in partyIDs")
	}
	p := &Pool{
		selfID:   selfID,
		partyIDs: ids,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rand == nil {
		p.rand = rand.Reader
	}
	p.rand = pool.NewLockedReader(p.rand)
	if p.values == nil {
		p.values = value.NewArena()
	}
	if p.store == nil {
		p.store = storage.NewMemory()
	}
	if p.log == nil {
		p.log = log.DefaultLogger()
	}
	p.log = p.log.With("party", selfID)
	return p, nil
}

// SelfID is this party's ID.
func (p *Pool) SelfID() party.ID { return p.selfID }

// PartyIDs is a sorted slice of participating parties.
func (p *Pool) PartyIDs() party.IDSlice { return p.partyIDs }

// OtherPartyIDs returns a sorted list of parties that does not contain SelfID.
func (p *Pool) OtherPartyIDs() party.IDSlice { return p.partyIDs.Remove(p.selfID) }

// N returns the number of participants.
func (p *Pool) N() int { return len(p.partyIDs) }

// Rand returns the randomness source.
func (p *Pool) Rand() io.Reader { return p.rand }

// Values returns the arena holding this party's values.
func (p *Pool) Values() *value.Arena { return p.values }

// Store returns the preprocessing store.
func (p *Pool) Store() storage.Store { return p.store }

// Workers returns the worker pool, which may be nil.
func (p *Pool) Workers() *pool.Pool { return p.workers }

// Log returns the logger.
func (p *Pool) Log() log.Logger { return p.log }
