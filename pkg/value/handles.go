package value

import "github.com/taurusgroup/multi-party-compute/pkg/math/field"

// Secret is a handle to this party's share of a secret field element.
type Secret struct{ ID ID }

// Public is a handle to a field element known in the clear.
type Public struct{ ID ID }

// SBool is a handle to this party's share of a secret bit.
type SBool struct{ ID ID }

// OBool is a handle to a bit known in the clear.
type OBool struct{ ID ID }

// NewSecret allocates an unset secret element.
func (a *Arena) NewSecret() Secret { return Secret{a.alloc(SecretElement)} }

// NewPublic allocates an unset public element.
func (a *Arena) NewPublic() Public { return Public{a.alloc(PublicElement)} }

// NewSBool allocates an unset secret bit.
func (a *Arena) NewSBool() SBool { return SBool{a.alloc(SecretBool)} }

// NewOBool allocates an unset public bit.
func (a *Arena) NewOBool() OBool { return OBool{a.alloc(PublicBool)} }

// Known allocates a public element that is already set to e.
func (a *Arena) Known(e field.Element) Public {
	p := a.NewPublic()
	_ = a.SetPublic(p, e)
	return p
}

// SetShare sets the share held by s.
func (a *Arena) SetShare(s Secret, e field.Element) error { return a.setElement(s.ID, SecretElement, e) }

// Share returns the share held by s, and false if it is unset.
func (a *Arena) Share(s Secret) (field.Element, bool) {
	v, ok := a.get(s.ID, SecretElement)
	return v.element, ok
}

// SetPublic sets the value of p.
func (a *Arena) SetPublic(p Public, e field.Element) error { return a.setElement(p.ID, PublicElement, e) }

// Public returns the value of p, and false if it is unset.
func (a *Arena) Public(p Public) (field.Element, bool) {
	v, ok := a.get(p.ID, PublicElement)
	return v.element, ok
}

// SetSBool sets the share held by b.
func (a *Arena) SetSBool(b SBool, bit bool) error { return a.setBit(b.ID, SecretBool, bit) }

// SBool returns the share held by b, and false if it is unset.
func (a *Arena) SBool(b SBool) (bool, bool) {
	v, ok := a.get(b.ID, SecretBool)
	return v.bit, ok
}

// SetOBool sets the value of b.
func (a *Arena) SetOBool(b OBool, bit bool) error { return a.setBit(b.ID, PublicBool, bit) }

// OBool returns the value of b, and false if it is unset.
func (a *Arena) OBool(b OBool) (bool, bool) {
	v, ok := a.get(b.ID, PublicBool)
	return v.bit, ok
}
