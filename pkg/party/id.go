package party

import (
	"encoding/binary"
	"strconv"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// ID identifies a party in a session. Valid IDs are 1..n, which are also
// the evaluation points of the Shamir shares the party holds.
type ID uint16

// Bytes returns a []byte slice of length party.ByteSize.
func (id ID) Bytes() []byte {
	b := make([]byte, ByteSize)
	binary.BigEndian.PutUint16(b, uint16(id))
	return b
}

// String returns a base 10 representation of ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// FromBytes reads the first party.ByteSize bytes from b and creates an ID from it.
func FromBytes(b []byte) ID {
	return ID(binary.BigEndian.Uint16(b))
}
