// Package network moves the messages of a round between parties.
//
// A Network delivers opaque byte slices between pairs of parties, in order.
// The Router built on top of it gives every running protocol its own Channel,
// and exchanges one Frame per peer at the end of each round in which the
// local batch used the network.
package network

import (
	"context"
	"errors"

	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

var (
	// ErrClosed is returned when the network or a peer connection is closed.
	ErrClosed = errors.New("network: closed")
	// ErrRoundMismatch is returned when a peer's frame carries another round.
	ErrRoundMismatch = errors.New("network: round mismatch")
	// ErrUnexpected is returned for messages nobody expected, and for expected messages that never arrived.
	ErrUnexpected = errors.New("network: unexpected message")
	// ErrUnknownParty is returned when addressing a party outside the session.
	ErrUnknownParty = errors.New("network: unknown party")
)

// Network is a reliable, ordered, point to point transport between the parties of a session.
type Network interface {
	// Send queues data for delivery to party to. It must not block on the receiver.
	Send(ctx context.Context, to party.ID, data []byte) error
	// Receive blocks until the next message from party from is available.
	Receive(ctx context.Context, from party.ID) ([]byte, error)
	Close() error
}
