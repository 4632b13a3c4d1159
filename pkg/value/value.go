// Package value holds the write-once values protocols exchange within a party.
//
// A value is a slot in an Arena, addressed by an ID. Producers set it exactly
// once, and consumers may only read it after it has been set. Handles carry
// the kind of the slot so that a secret share is never read as a public value.
package value

import (
	"errors"
	"fmt"
	"sync"

	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
)

// ID addresses a slot in an Arena.
type ID uint32

// Kind is the type of the content of a slot.
type Kind uint8

const (
	// SecretElement is this party's Shamir share of a field element.
	SecretElement Kind = iota + 1
	// PublicElement is a field element known in the clear.
	PublicElement
	// SecretBool is this party's XOR share of a bit.
	SecretBool
	// PublicBool is a bit known in the clear.
	PublicBool
)

func (k Kind) String() string {
	switch k {
	case SecretElement:
		return "secret element"
	case PublicElement:
		return "public element"
	case SecretBool:
		return "secret bool"
	case PublicBool:
		return "public bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	// ErrAlreadySet is returned when writing a slot twice.
	ErrAlreadySet = errors.New("value: already set")
	// ErrUnknown is returned for an ID not allocated by the arena.
	ErrUnknown = errors.New("value: unknown id")
	// ErrKind is returned when the content does not match the kind of the slot.
	ErrKind = errors.New("value: kind mismatch")
)

type slot struct {
	kind    Kind
	set     bool
	element field.Element
	bit     bool
}

// Arena stores the values of one party. It is safe for concurrent use.
type Arena struct {
	mtx   sync.RWMutex
	slots []slot
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) alloc(k Kind) ID {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.slots = append(a.slots, slot{kind: k})
	return ID(len(a.slots) - 1)
}

// Len returns the number of allocated slots.
func (a *Arena) Len() int {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return len(a.slots)
}

// Ready returns true if every id has been set.
func (a *Arena) Ready(ids ...ID) bool {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	for _, id := range ids {
		if int(id) >= len(a.slots) || !a.slots[id].set {
			return false
		}
	}
	return true
}

func (a *Arena) setElement(id ID, k Kind, e field.Element) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	s, err := a.writable(id, k)
	if err != nil {
		return err
	}
	s.element, s.set = e, true
	return nil
}

func (a *Arena) setBit(id ID, k Kind, b bool) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	s, err := a.writable(id, k)
	if err != nil {
		return err
	}
	s.bit, s.set = b, true
	return nil
}

func (a *Arena) writable(id ID, k Kind) (*slot, error) {
	if int(id) >= len(a.slots) {
		return nil, ErrUnknown
	}
	s := &a.slots[id]
	if s.kind != k {
		return nil, fmt.Errorf("%w: slot %d holds a %v, not a %v", ErrKind, id, s.kind, k)
	}
	if s.set {
		return nil, fmt.Errorf("%w: slot %d", ErrAlreadySet, id)
	}
	return s, nil
}

func (a *Arena) get(id ID, k Kind) (slot, bool) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	if int(id) >= len(a.slots) {
		return slot{}, false
	}
	s := a.slots[id]
	if s.kind != k || !s.set {
		return slot{}, false
	}
	return s, true
}
