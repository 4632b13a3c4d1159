package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		self     party.ID
		partyIDs []party.ID
		wantErr  bool
	}{
		{"ok", 2, []party.ID{3, 1, 2}, false},
		{"self missing", 4, []party.ID{1, 2, 3}, true},
		{"duplicate", 1, []party.ID{1, 1, 2}, true},
		{"zero", 1, []party.ID{0, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.self, tt.partyIDs, WithLogger(testlogger.New(t)))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPool_Accessors(t *testing.T) {
	p, err := New(2, []party.ID{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, party.IDSlice{1, 2, 3}, p.PartyIDs())
	assert.Equal(t, party.IDSlice{1, 3}, p.OtherPartyIDs())
	assert.Equal(t, 3, p.N())
	assert.NotNil(t, p.Values())
	assert.NotNil(t, p.Store())
	assert.NotNil(t, p.Rand())
	assert.Nil(t, p.Workers())
}
