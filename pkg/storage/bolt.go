package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"path"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/multi-party-compute/internal/log"
	bolt "go.etcd.io/bbolt"
)

// BoltFileName is the name of the file the bolt store writes to.
const BoltFileName = "preprocessing.db"

// BoltOpenPerm is the permission of the database file.
const BoltOpenPerm = 0660

// BoltStore implements Store with one bolt bucket per namespace.
// Keys are big-endian so that cursor order is numeric order.
type BoltStore struct {
	db  *bolt.DB
	log log.Logger
}

// OpenBolt opens or creates the store in folder.
func OpenBolt(ctx context.Context, l log.Logger, folder string) (*BoltStore, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	db, err := bolt.Open(path.Join(folder, BoltFileName), BoltOpenPerm, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return &BoltStore{db: db, log: l}, nil
}

func encodeKey(key uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], key)
	return b[:]
}

func (b *BoltStore) Put(ctx context.Context, namespace string, key uint64, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		k := encodeKey(key)
		if bucket.Get(k) != nil {
			return fmt.Errorf("%w: %s/%d", ErrExists, namespace, key)
		}
		return bucket.Put(k, data)
	})
}

func (b *BoltStore) Get(ctx context.Context, namespace string, key uint64, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return fmt.Errorf("%w: %s/%d", ErrNotFound, namespace, key)
		}
		data := bucket.Get(encodeKey(key))
		if data == nil {
			return fmt.Errorf("%w: %s/%d", ErrNotFound, namespace, key)
		}
		// data is only valid within the transaction, decoding copies it
		return cbor.Unmarshal(data, out)
	})
}

func (b *BoltStore) Keys(ctx context.Context, namespace string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, binary.BigEndian.Uint64(k))
			return nil
		})
	})
	return keys, err
}

func (b *BoltStore) Close() error {
	err := b.db.Close()
	if err != nil {
		b.log.Errorw("", "boltdb", "close", "err", err)
	}
	return err
}
