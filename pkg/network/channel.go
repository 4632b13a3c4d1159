package network

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

// Channel is the view a single protocol has of the network during one round.
//
// Messages sent in round r are available to the same protocol on the
// receiving party in round r+1. A message to self is delivered locally.
type Channel interface {
	// SelfID returns the ID of the local party.
	SelfID() party.ID
	// Send queues content for party to.
	Send(to party.ID, content interface{}) error
	// SendToAll queues content for every party, including self.
	SendToAll(content interface{}) error
	// Expect declares that one message from party from must arrive for the next round.
	Expect(from party.ID)
	// ExpectFromAll declares one message from every party, including self.
	ExpectFromAll()
	// Receive decodes the next message from party from into out.
	Receive(from party.ID, out interface{}) error
}

type channel struct {
	task     uint64
	wire     uint64
	self     party.ID
	partyIDs party.IDSlice

	outbox map[party.ID][][]byte
	inbox  map[party.ID][][]byte
	expect map[party.ID]int
	// arrived counts the messages delivered by the last exchange.
	arrived map[party.ID]int

	// active is set when the protocol sent or expected something this round.
	active bool
	done   bool
}

func newChannel(task uint64, self party.ID, partyIDs party.IDSlice) *channel {
	return &channel{
		task:     task,
		self:     self,
		partyIDs: partyIDs,
		outbox:   map[party.ID][][]byte{},
		inbox:    map[party.ID][][]byte{},
		expect:   map[party.ID]int{},
	}
}

func (c *channel) SelfID() party.ID { return c.self }

func (c *channel) Send(to party.ID, content interface{}) error {
	if !c.partyIDs.Contains(to) {
		return fmt.Errorf("%w: %v", ErrUnknownParty, to)
	}
	data, err := cbor.Marshal(content)
	if err != nil {
		return fmt.Errorf("network: encode message for %v: %w", to, err)
	}
	c.outbox[to] = append(c.outbox[to], data)
	c.active = true
	return nil
}

func (c *channel) SendToAll(content interface{}) error {
	data, err := cbor.Marshal(content)
	if err != nil {
		return fmt.Errorf("network: encode message: %w", err)
	}
	for _, to := range c.partyIDs {
		c.outbox[to] = append(c.outbox[to], data)
	}
	c.active = true
	return nil
}

func (c *channel) Expect(from party.ID) {
	c.expect[from]++
	c.active = true
}

func (c *channel) ExpectFromAll() {
	for _, from := range c.partyIDs {
		c.expect[from]++
	}
	c.active = true
}

func (c *channel) Receive(from party.ID, out interface{}) error {
	queue := c.inbox[from]
	if len(queue) == 0 {
		return fmt.Errorf("%w: no message from %v for task %d", ErrUnexpected, from, c.task)
	}
	data := queue[0]
	c.inbox[from] = queue[1:]
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("network: decode message from %v: %w", from, err)
	}
	return nil
}
