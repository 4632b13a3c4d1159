package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

type memory struct {
	sync.RWMutex
	closed bool
	data   map[string]map[uint64][]byte
}

// NewMemory returns a Store kept in memory. Values are cbor encoded so that
// callers observe the same copy semantics as with the bolt store.
func NewMemory() Store {
	return &memory{data: map[string]map[uint64][]byte{}}
}

func (m *memory) Put(ctx context.Context, namespace string, key uint64, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	m.Lock()
	defer m.Unlock()
	if m.closed {
		return ErrClosed
	}
	ns, ok := m.data[namespace]
	if !ok {
		ns = map[uint64][]byte{}
		m.data[namespace] = ns
	}
	if _, ok = ns[key]; ok {
		return fmt.Errorf("%w: %s/%d", ErrExists, namespace, key)
	}
	ns[key] = data
	return nil
}

func (m *memory) Get(ctx context.Context, namespace string, key uint64, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.RLock()
	defer m.RUnlock()
	if m.closed {
		return ErrClosed
	}
	data, ok := m.data[namespace][key]
	if !ok {
		return fmt.Errorf("%w: %s/%d", ErrNotFound, namespace, key)
	}
	return cbor.Unmarshal(data, out)
}

func (m *memory) Keys(ctx context.Context, namespace string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.RLock()
	defer m.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]uint64, 0, len(m.data[namespace]))
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func (m *memory) Close() error {
	m.Lock()
	defer m.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
