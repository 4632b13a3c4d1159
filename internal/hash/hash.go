package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the output length of Sum.
const DigestLengthBytes = params.SecBytes

// Hash is a domain separating wrapper around blake3, used for session
// digests and oblivious transfer key derivation.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash whose state is initialized with the given domain.
func New(domain string) *Hash {
	hash := &Hash{h: blake3.New()}
	_ = hash.WriteAny(BytesWithDomain{TheDomain: "domain", Bytes: []byte(domain)})
	return hash
}

// Digest returns a reader for the current output of the function.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - uint64
//   - party.ID
//   - hash.WriterToWithDomain
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var err error
		switch t := d.(type) {
		case []byte:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "[]byte", Bytes: t})
		case string:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "string", Bytes: []byte(t)})
		case uint64:
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], t)
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "uint64", Bytes: b[:]})
		case party.ID:
			err = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "party.ID", Bytes: t.Bytes()})
		case WriterToWithDomain:
			err = writeWithDomain(hash.h, t)
		default:
			panic(fmt.Sprintf("hash.Hash: unsupported type %T", d))
		}
		if err != nil {
			return fmt.Errorf("hash.Hash: write %T: %w", d, err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
