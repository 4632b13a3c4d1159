package bgw

import (
	"errors"

	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/resource"
	"github.com/taurusgroup/multi-party-compute/pkg/schedule"
	"github.com/taurusgroup/multi-party-compute/pkg/value"
)

// DistSum is an application where every party contributes an input and
// everyone learns the sum.
type DistSum struct {
	Field     *field.Field
	Threshold int
	Input     field.Element

	rp     *resource.Pool
	result value.Public
}

// Build implements sce.Application.
func (d *DistSum) Build(rp *resource.Pool) (schedule.Node, error) {
	s, err := New(rp, d.Field, d.Threshold)
	if err != nil {
		return nil, err
	}
	inputNode, inputs := s.InputAll(d.Input)
	shares := make([]value.Secret, 0, len(inputs))
	for _, j := range rp.PartyIDs() {
		shares = append(shares, inputs[j])
	}
	sumNode, total := s.Sum(shares)
	openNode, result := s.Open(total)
	d.rp, d.result = rp, result
	return schedule.Seq(inputNode, sumNode, openNode), nil
}

// Result returns the sum once the application has run.
func (d *DistSum) Result() (field.Element, error) {
	if d.rp == nil {
		return field.Element{}, errors.New("bgw: sum was not built")
	}
	e, ok := d.rp.Values().Public(d.result)
	if !ok {
		return field.Element{}, errors.New("bgw: sum is not available")
	}
	return e, nil
}
