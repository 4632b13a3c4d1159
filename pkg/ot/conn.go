package ot

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/taurusgroup/multi-party-compute/internal/params"
)

// Conn exchanges length prefixed messages with the peer.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewConn wraps c.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		r:    bufio.NewReader(c),
		w:    bufio.NewWriter(c),
	}
}

// SendData buffers data. It is written to the peer on Flush.
func (c *Conn) SendData(data []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := c.w.Write(header[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// SendUint32 buffers v.
func (c *Conn) SendUint32(v int) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return c.SendData(b[:])
}

// Flush writes the buffered messages.
func (c *Conn) Flush() error {
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// ReceiveData reads the next message.
func (c *Conn) ReceiveData() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > params.MaxFrameBytes {
		return nil, fmt.Errorf("%w: message of %d bytes", ErrMalformed, n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(c.r, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return data, nil
}

// ReceiveUint32 reads a message written by SendUint32.
func (c *Conn) ReceiveUint32() (int, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: uint32 of %d bytes", ErrMalformed, len(data))
	}
	return int(binary.BigEndian.Uint32(data)), nil
}

// watch interrupts pending reads and writes when ctx is done.
// The returned function must be called once the operation completes; after
// it returns, ctx no longer affects the connection.
func (c *Conn) watch(ctx context.Context) func() {
	stop, exited := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = c.conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-exited
		_ = c.conn.SetDeadline(time.Time{})
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
