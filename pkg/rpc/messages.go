package rpc

// Status reports the outcome of a command.
type Status int32

const (
	StatusSuccess Status = iota
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// SessionCtx starts a session.
type SessionCtx struct {
	SessionID string `cbor:"1,keyasint"`
}

// Participant is one party of the session and the address where it listens.
type Participant struct {
	ID   uint16 `cbor:"1,keyasint"`
	Addr string `cbor:"2,keyasint"`
}

// Prepare lists the participants of the session.
type Prepare struct {
	Participants []Participant `cbor:"1,keyasint"`
}

// CmdResult is the reply to every command.
type CmdResult struct {
	Msg    string `cbor:"1,keyasint"`
	Status Status `cbor:"2,keyasint"`
}
