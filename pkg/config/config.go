// Package config reads the TOML description of a party in a session.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/taurusgroup/multi-party-compute/internal/hash"
	"github.com/taurusgroup/multi-party-compute/internal/params"
	"github.com/taurusgroup/multi-party-compute/pkg/math/field"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("config: invalid")

// EnvOTMaxBatch overrides OT.MaxBatch when set.
const EnvOTMaxBatch = "MPC_OT_MAX_BATCH"

// Suite names an arithmetic or boolean protocol suite.
type Suite string

const (
	SuiteBGW        Suite = "bgw"
	SuiteTinyTables Suite = "tinytables"
)

// Config describes the local party and its peers.
type Config struct {
	Session Session `toml:"session"`
	Parties []Peer  `toml:"parties"`
	BGW     BGW     `toml:"bgw"`
	OT      OT      `toml:"ot"`
	Engine  Engine  `toml:"engine"`
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
	Report  Report  `toml:"report"`
}

// Session identifies the run and the local party.
type Session struct {
	// ID must be the same for all parties. When empty, it is derived from the
	// party list, so that parties sharing a party list agree on it.
	ID    string   `toml:"id"`
	Party party.ID `toml:"party"`
	Suite Suite    `toml:"suite"`
}

// Peer is a party and the address its network endpoint listens on.
type Peer struct {
	ID      party.ID `toml:"id"`
	Address string   `toml:"address"`
}

// BGW configures the arithmetic suite.
type BGW struct {
	// Modulus is a decimal prime, 2⁸⁹ - 1 when empty.
	Modulus string `toml:"modulus"`
	// Threshold defaults to ⌊n/2⌋ - 1, and must satisfy 2t < n.
	Threshold int `toml:"threshold"`
}

// OT configures the oblivious transfer service used by TinyTables.
type OT struct {
	// Address is where party 1 serves and party 2 connects.
	Address  string `toml:"address"`
	MaxBatch int    `toml:"max_batch"`
}

// Engine configures round evaluation.
type Engine struct {
	// Workers is the size of the worker pool, 0 for one per CPU, negative to evaluate sequentially.
	Workers  int `toml:"workers"`
	MaxBatch int `toml:"max_batch"`
}

// Storage configures where preprocessing material is kept. An empty Path keeps it in memory.
type Storage struct {
	Path string `toml:"path"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Metrics configures the prometheus endpoint. An empty Listen disables it.
type Metrics struct {
	Listen string `toml:"listen"`
}

// Report configures the csv file benchmark records are appended to.
type Report struct {
	Path string `toml:"path"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a configuration.
func Parse(r io.Reader) (*Config, error) {
	var c Config
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if v, ok := os.LookupEnv(EnvOTMaxBatch); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, EnvOTMaxBatch, err)
		}
		c.OT.MaxBatch = n
	}
	if err := c.setDefaults(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) setDefaults() error {
	if c.Session.ID == "" {
		c.Session.ID = DefaultSessionID(c.Parties)
	}
	if c.Session.Suite == "" {
		c.Session.Suite = SuiteBGW
	}
	if c.BGW.Modulus == "" {
		c.BGW.Modulus = field.DefaultModulus
	}
	if c.BGW.Threshold == 0 && len(c.Parties) > 2 {
		c.BGW.Threshold = len(c.Parties)/2 - 1
	}
	if c.OT.MaxBatch == 0 {
		c.OT.MaxBatch = params.MaxOTs
	}
	if c.Engine.MaxBatch == 0 {
		c.Engine.MaxBatch = params.DefaultMaxBatch
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

// DefaultSessionID derives a session id from the ids and addresses of peers,
// independently of their order.
func DefaultSessionID(peers []Peer) string {
	sorted := make([]Peer, len(peers))
	copy(sorted, peers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	h := hash.New("config/session")
	for _, p := range sorted {
		_ = h.WriteAny(p.ID, p.Address)
	}
	var id uuid.UUID
	copy(id[:], h.Sum())
	// RFC 4122 variant, version 8 (custom).
	id[6] = id[6]&0x0f | 0x80
	id[8] = id[8]&0x3f | 0x80
	return id.String()
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {
	ids := make([]party.ID, len(c.Parties))
	for i, p := range c.Parties {
		if p.Address == "" {
			return fmt.Errorf("%w: party %v has no address", ErrInvalid, p.ID)
		}
		ids[i] = p.ID
	}
	partyIDs := party.NewIDSlice(ids)
	if err := partyIDs.Valid(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(partyIDs) == 0 {
		return fmt.Errorf("%w: no parties", ErrInvalid)
	}
	if !partyIDs.Contains(c.Session.Party) {
		return fmt.Errorf("%w: local party %v is not listed", ErrInvalid, c.Session.Party)
	}
	switch c.Session.Suite {
	case SuiteBGW:
		if c.BGW.Threshold < 0 || 2*c.BGW.Threshold >= len(partyIDs) {
			return fmt.Errorf("%w: threshold %d requires more than %d parties", ErrInvalid, c.BGW.Threshold, 2*c.BGW.Threshold)
		}
		if _, err := field.New(c.BGW.Modulus); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case SuiteTinyTables:
		if !partyIDs.Contains(1) || !partyIDs.Contains(2) || len(partyIDs) != 2 {
			return fmt.Errorf("%w: tinytables requires exactly parties 1 and 2", ErrInvalid)
		}
		if c.OT.Address == "" {
			return fmt.Errorf("%w: tinytables requires an ot address", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown suite %q", ErrInvalid, c.Session.Suite)
	}
	if c.OT.MaxBatch <= 0 {
		return fmt.Errorf("%w: ot max_batch must be positive", ErrInvalid)
	}
	if c.Engine.MaxBatch < 0 {
		return fmt.Errorf("%w: engine max_batch must not be negative", ErrInvalid)
	}
	return nil
}

// PartyIDs returns the sorted IDs of all parties.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, len(c.Parties))
	for i, p := range c.Parties {
		ids[i] = p.ID
	}
	return party.NewIDSlice(ids)
}

// Addresses maps every party to its address.
func (c *Config) Addresses() map[party.ID]string {
	out := make(map[party.ID]string, len(c.Parties))
	for _, p := range c.Parties {
		out[p.ID] = p.Address
	}
	return out
}

// Field returns the field of the BGW suite.
func (c *Config) Field() (*field.Field, error) {
	return field.New(c.BGW.Modulus)
}

// Local returns one configuration per party for a session on localhost,
// listening on consecutive ports from basePort.
func Local(n, basePort int, suite Suite) []*Config {
	id := uuid.NewString()
	peers := make([]Peer, n)
	for i := range peers {
		peers[i] = Peer{ID: party.ID(i + 1), Address: fmt.Sprintf("127.0.0.1:%d", basePort+i)}
	}
	out := make([]*Config, n)
	for i := range out {
		c := &Config{
			Session: Session{ID: id, Party: party.ID(i + 1), Suite: suite},
			Parties: peers,
			OT:      OT{Address: fmt.Sprintf("127.0.0.1:%d", basePort+n)},
		}
		_ = c.setDefaults()
		out[i] = c
	}
	return out
}
