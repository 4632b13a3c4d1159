// Package report records the outcome of application runs.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/taurusgroup/multi-party-compute/pkg/party"
)

// Header is the first line of a report file.
var Header = []string{"parties", "elapsed_ms", "party", "result"}

// Record describes one run as seen by one party.
type Record struct {
	PartyCount int
	Elapsed    time.Duration
	PartyID    party.ID
	Result     string
}

func (r Record) fields() []string {
	return []string{
		strconv.Itoa(r.PartyCount),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		r.PartyID.String(),
		r.Result,
	}
}

// Timer measures the time elapsed since it started.
type Timer struct {
	clock clockwork.Clock
	start time.Time
}

// StartTimer starts a timer on clock.
func StartTimer(clock clockwork.Clock) *Timer {
	return &Timer{clock: clock, start: clock.Now()}
}

// Elapsed returns the duration since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return t.clock.Since(t.start)
}

// Writer persists records.
type Writer interface {
	Write(r Record) error
}

// CSVWriter appends records to a CSV file, creating it with Header when it
// is missing or empty.
type CSVWriter struct {
	mtx  sync.Mutex
	path string
}

// NewCSVWriter writes to the file at path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write appends r.
func (w *CSVWriter) Write(r Record) (err error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("report: %w", cerr)
		}
	}()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err = cw.Write(Header); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if err = cw.Write(r.fields()); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Discard drops every record.
var Discard Writer = discard{}

type discard struct{}

func (discard) Write(Record) error { return nil }

// ErrNoPath is returned by Open for an empty path.
var ErrNoPath = errors.New("report: no path")

// Open returns a CSVWriter for path, or ErrNoPath.
func Open(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	return NewCSVWriter(path), nil
}
