package network

// Frame carries every message from one party to one peer for an exchange.
// Seq counts the exchanges in which the sender's protocols used the network.
type Frame struct {
	Session []byte `cbor:"1,keyasint"`
	Seq     uint32 `cbor:"2,keyasint"`
	Items   []Item `cbor:"3,keyasint"`
}

// Item is one message of a protocol, identified by the wire id the routers
// agreed on for that protocol.
type Item struct {
	Task uint64 `cbor:"1,keyasint"`
	Data []byte `cbor:"2,keyasint"`
}
