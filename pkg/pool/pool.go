package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// command asks a worker to evaluate f at index i and store the result.
type command struct {
	// ctr counts the results that still need to be produced.
	ctr     *int64
	i       int
	f       func(int) error
	results []error
}

// worker starts up a new worker, listening to commands, and producing results
func worker(commands <-chan command, ctrChanged chan<- struct{}) {
	for c := range commands {
		c.results[c.i] = c.f(c.i)
		atomic.AddInt64(c.ctr, -1)
		ctrChanged <- struct{}{}
	}
}

// Pool represents a pool of workers, used to evaluate the protocols of a round.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
type Pool struct {
	// The common channel used to send commands to the workers.
	commands chan command
	// The channel used to signal a finished task
	ctrChanged chan struct{}
	// This holds the number of workers we've created
	workerCount int
	mtx         sync.Mutex
	closed      bool
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		commands:    make(chan command),
		ctrChanged:  make(chan struct{}),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.commands, p.ctrChanged)
	}
	return p
}

// Size returns the number of workers, or 1 for a nil pool.
func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// TearDown stops the workers. It is safe to call more than once.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if !p.closed {
		p.closed = true
		close(p.commands)
	}
}

// Parallelize calls f count times, passing in indices from 0..count-1, and
// waits for all of them to return.
//
// The returned error is the one of the lowest index that failed, so that the
// outcome does not depend on scheduling.
func (p *Pool) Parallelize(count int, f func(int) error) error {
	results := make([]error, count)
	if p == nil || count == 1 {
		for i := range results {
			results[i] = f(i)
		}
		return firstError(results)
	}

	ctr := int64(count)
	cmdI := 0
	for cmdI < count {
		cmd := command{i: cmdI, ctr: &ctr, f: f, results: results}
		// interleave picking off results so that busy workers can accept new commands
		select {
		case p.commands <- cmd:
			cmdI++
		case <-p.ctrChanged:
		}
	}
	for atomic.LoadInt64(&ctr) > 0 {
		<-p.ctrChanged
	}
	return firstError(results)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
