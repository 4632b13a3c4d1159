package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := StartTimer(clock)
	assert.Zero(t, timer.Elapsed())
	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, timer.Elapsed())
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	w, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(Record{PartyCount: 3, Elapsed: 1234 * time.Millisecond, PartyID: 1, Result: "12"}))
	require.NoError(t, w.Write(Record{PartyCount: 3, Elapsed: 42 * time.Millisecond, PartyID: 2, Result: "12"}))

	// A second writer on the same file does not repeat the header.
	require.NoError(t, NewCSVWriter(path).Write(Record{PartyCount: 5, PartyID: 3, Result: "30"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "parties,elapsed_ms,party,result\n3,1234,1,12\n3,42,2,12\n5,0,3,30\n", string(data))
}

func TestOpen(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrNoPath)
	assert.NoError(t, Discard.Write(Record{}))
}
