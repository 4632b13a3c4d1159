package round

import (
	"encoding/binary"
	"io"
	"strconv"
)

// Number is the index of a round, counted from 0.
// The engine numbers its global rounds, and every protocol counts its own.
type Number uint32

// WriteTo implements io.WriterTo interface.
func (i Number) WriteTo(w io.Writer) (int64, error) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(i))
	n, err := w.Write(b[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (Number) Domain() string {
	return "Round Number"
}

func (i Number) String() string {
	return strconv.FormatUint(uint64(i), 10)
}
