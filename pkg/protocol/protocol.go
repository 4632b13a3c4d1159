// Package protocol defines the unit of work evaluated by the engine.
package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/taurusgroup/multi-party-compute/internal/round"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// Status is the outcome of evaluating one round of a protocol.
type Status uint8

const (
	// NeedsMoreRounds means the protocol must be evaluated again in the next round.
	NeedsMoreRounds Status = iota
	// Done means the outputs of the protocol are set, for the parties that receive them.
	Done
)

func (s Status) String() string {
	if s == Done {
		return "done"
	}
	return "needs more rounds"
}

// Protocol is a multi-round interactive computation.
//
// Evaluate is called with r = 0, 1, … until it returns Done. Messages sent on
// ch in round r can be received in round r+1. A protocol must run the same
// number of rounds on every party, and use the network in the same rounds,
// even when its outputs are only delivered to some of them.
type Protocol interface {
	// Inputs are the values that must be set before round 0.
	Inputs() []value.ID
	// Outputs are the values the protocol sets.
	Outputs() []value.ID
	// Evaluate runs round r. ctx is the context of the computation, to be
	// passed to blocking calls such as storage access.
	Evaluate(ctx context.Context, r round.Number, rp *resource.Pool, ch network.Channel) (Status, error)
}

// ErrMalformed is returned when a protocol is evaluated past its last round,
// or receives content it cannot interpret.
var ErrMalformed = errors.New("protocol: malformed")

// Malformed is a convenience for rejecting round r.
func Malformed(name string, r round.Number) error {
	return fmt.Errorf("%w: %s has no round %d", ErrMalformed, name, r)
}

// Error is a custom error for protocols which contains information about the
// responsible round in which it occurred, and the party responsible.
type Error struct {
	// Round is the round of the protocol where the error occurred.
	Round round.Number
	// Protocol names the failing protocol.
	Protocol string
	// Culprit is 0 if the identity of the misbehaving party cannot be known.
	Culprit party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if e.Culprit == 0 {
		return fmt.Sprintf("%s: round %d: %s", e.Protocol, e.Round, e.Err)
	}
	return fmt.Sprintf("%s: round %d: party %d: %s", e.Protocol, e.Round, e.Culprit, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// Name returns the name of p for logs and errors.
func Name(p Protocol) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
