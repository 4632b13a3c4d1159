// Package bgw implements arithmetic on Shamir shared field elements with
// honest majority, following Ben-Or, Goldwasser and Wigderson.
//
// Every party holds f(i) for a random polynomial f of degree t with
// f(0) = x. Linear operations are local; multiplication reshares the local
// product of degree 2t and recombines it to degree t, which requires 2t < n.
package bgw

import (
	"fmt"
	"math/big"

	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/math/polynomial"
	"github.com/taurusgroup/multi-party-compute/pkg/network"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// Suite creates BGW protocols for one party. The protocols it returns
// allocate their outputs in the arena of the resource pool.
type Suite struct {
	field     *field.Field
	threshold int
	partyIDs  party.IDSlice
	self      party.ID
	values    *value.Arena
}

// New returns a suite over f, tolerating threshold colluding parties.
func New(rp *resource.Pool, f *field.Field, threshold int) (*Suite, error) {
	if threshold < 0 || 2*threshold >= rp.N() {
		return nil, fmt.Errorf("bgw: threshold %d requires more than %d parties, got %d", threshold, 2*threshold, rp.N())
	}
	ids := rp.PartyIDs()
	if f.Modulus().Cmp(big.NewInt(int64(ids[len(ids)-1]))) <= 0 {
		return nil, fmt.Errorf("bgw: modulus %v must exceed every party id", f)
	}
	return &Suite{
		field:     f,
		threshold: threshold,
		partyIDs:  ids,
		self:      rp.SelfID(),
		values:    rp.Values(),
	}, nil
}

// DefaultThreshold returns ⌊n/2⌋ - 1, or 0 for fewer than 2 parties.
func DefaultThreshold(n int) int {
	if n < 2 {
		return 0
	}
	return n/2 - 1
}

// Field returns the field of the suite.
func (s *Suite) Field() *field.Field { return s.field }

// Threshold returns t.
func (s *Suite) Threshold() int { return s.threshold }

// Known returns a public value set to e.
func (s *Suite) Known(e field.Element) value.Public { return s.values.Known(e) }

// share returns the local share of x.
func (s *Suite) share(x value.Secret) (field.Element, error) {
	e, ok := s.values.Share(x)
	if !ok {
		return field.Element{}, fmt.Errorf("bgw: share %d is not set", x.ID)
	}
	return e, nil
}

func (s *Suite) public(x value.Public) (field.Element, error) {
	e, ok := s.values.Public(x)
	if !ok {
		return field.Element{}, fmt.Errorf("bgw: public value %d is not set", x.ID)
	}
	return e, nil
}

// receive reads a field element sent by from.
func (s *Suite) receive(ch network.Channel, from party.ID) (field.Element, error) {
	var b []byte
	if err := ch.Receive(from, &b); err != nil {
		return field.Element{}, err
	}
	e, err := s.field.Decode(b)
	if err != nil {
		return field.Element{}, fmt.Errorf("bgw: invalid share from %v: %w", from, err)
	}
	return e, nil
}

// interpolate reconstructs the secret from the shares of every party in domain.
func (s *Suite) interpolate(ch network.Channel, domain party.IDSlice) (field.Element, error) {
	shares := make(map[party.ID]field.Element, len(domain))
	for _, j := range domain {
		e, err := s.receive(ch, j)
		if err != nil {
			return field.Element{}, err
		}
		shares[j] = e
	}
	return polynomial.Interpolate(s.field, shares), nil
}
