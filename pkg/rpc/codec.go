package rpc

import (
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype of the messages of this package.
const codecName = "cbor"

// Codec encodes messages with cbor instead of protobuf.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Marshal(v interface{}) ([]byte, error)      { return cbor.Marshal(v) }
func (Codec) Unmarshal(data []byte, v interface{}) error { return cbor.Unmarshal(data, v) }
func (Codec) Name() string                               { return codecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
