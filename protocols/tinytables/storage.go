package tinytables

import (
	"context"
	"errors"
	"fmt"

	"github.com/taurusgroup/multi-party-compute/pkg/ot"
	"github.com/taurusgroup/multi-party-compute/pkg/storage"
)

const (
	nsTables     = "tinytables/tables"
	nsOTInputs   = "tinytables/ot-inputs"
	nsSigmas     = "tinytables/sigmas"
	nsMasks      = "tinytables/masks"
	nsInputMasks = "tinytables/input-masks"
	nsWireShares = "tinytables/wire-shares"
)

// Storage holds the preprocessed material of one party, keyed by gate id.
// Every entry is written once.
type Storage struct {
	store storage.Store
}

// NewStorage keeps the material in s.
func NewStorage(s storage.Store) *Storage {
	return &Storage{store: s}
}

// StoreTable stores the table of gate.
func (s *Storage) StoreTable(ctx context.Context, gate uint64, t TinyTable) error {
	return s.store.Put(ctx, nsTables, gate, t)
}

// Table returns the table of gate.
func (s *Storage) Table(ctx context.Context, gate uint64) (TinyTable, error) {
	var t TinyTable
	err := s.store.Get(ctx, nsTables, gate, &t)
	return t, err
}

// StoreOTInputs stores the two pairs party 1 offers for gate.
func (s *Storage) StoreOTInputs(ctx context.Context, gate uint64, pairs [2]ot.Pair) error {
	return s.store.Put(ctx, nsOTInputs, gate, pairs)
}

// OTInputs returns the pairs stored for gate.
func (s *Storage) OTInputs(ctx context.Context, gate uint64) ([2]ot.Pair, error) {
	var pairs [2]ot.Pair
	err := s.store.Get(ctx, nsOTInputs, gate, &pairs)
	return pairs, err
}

// StoreSigmas stores the selection bits party 2 uses for gate.
func (s *Storage) StoreSigmas(ctx context.Context, gate uint64, sigmas [2]bool) error {
	return s.store.Put(ctx, nsSigmas, gate, sigmas)
}

// Sigmas returns the selection bits stored for gate.
func (s *Storage) Sigmas(ctx context.Context, gate uint64) ([2]bool, error) {
	var sigmas [2]bool
	err := s.store.Get(ctx, nsSigmas, gate, &sigmas)
	return sigmas, err
}

// StoreMask stores the share of the output mask of gate.
func (s *Storage) StoreMask(ctx context.Context, gate uint64, mask bool) error {
	return s.store.Put(ctx, nsMasks, gate, mask)
}

// Mask returns the share of the output mask of gate.
func (s *Storage) Mask(ctx context.Context, gate uint64) (bool, error) {
	var mask bool
	err := s.store.Get(ctx, nsMasks, gate, &mask)
	return mask, err
}

// StoreInputMask stores the full mask of an input wire, known to its owner.
func (s *Storage) StoreInputMask(ctx context.Context, wire uint64, mask bool) error {
	return s.store.Put(ctx, nsInputMasks, wire, mask)
}

// InputMask returns the full mask of an input wire owned by this party.
func (s *Storage) InputMask(ctx context.Context, wire uint64) (bool, error) {
	var mask bool
	err := s.store.Get(ctx, nsInputMasks, wire, &mask)
	return mask, err
}

// StoreWireShare stores the share of the mask of an input wire.
func (s *Storage) StoreWireShare(ctx context.Context, wire uint64, share bool) error {
	return s.store.Put(ctx, nsWireShares, wire, share)
}

// WireShare returns the share of the mask of an input wire.
func (s *Storage) WireShare(ctx context.Context, wire uint64) (bool, error) {
	var share bool
	err := s.store.Get(ctx, nsWireShares, wire, &share)
	return share, err
}

// Gates returns the ids of the gates with a table, in ascending order.
func (s *Storage) Gates(ctx context.Context) ([]uint64, error) {
	return s.store.Keys(ctx, nsTables)
}

// next returns an id larger than every id in storage.
func (s *Storage) next(ctx context.Context) (uint64, error) {
	var next uint64
	for _, ns := range []string{nsTables, nsOTInputs, nsSigmas, nsMasks, nsWireShares} {
		keys, err := s.store.Keys(ctx, ns)
		if err != nil {
			return 0, fmt.Errorf("tinytables: %w", err)
		}
		if n := len(keys); n > 0 && keys[n-1] >= next {
			next = keys[n-1] + 1
		}
	}
	return next, nil
}

// pending returns the ids in [from, to) present in namespace.
func (s *Storage) pending(ctx context.Context, namespace string, from, to uint64) ([]uint64, error) {
	keys, err := s.store.Keys(ctx, namespace)
	if err != nil {
		return nil, err
	}
	var out []uint64
	for _, k := range keys {
		if k >= from && k < to {
			out = append(out, k)
		}
	}
	return out, nil
}

// IsNotFound reports whether err is caused by missing material.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
