package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/peerchess/tcp-chess/internal/apperror"
	"github.com/peerchess/tcp-chess/internal/protocol"
)

// Conn frames protocol messages over a byte stream as newline-delimited JSON.
// One record per line keeps every message atomically parseable: a partial
// read can never surface as a spurious move.
type Conn struct {
	conn    net.Conn
	scanner *bufio.Scanner

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewConn - wraps an established stream. Works with any net.Conn, which is
// what lets the protocol tests run two peers over net.Pipe.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
	}
}

// Send - writes one framed message. Safe for concurrent use.
func (that *Conn) Send(msg protocol.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if _, err = that.conn.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)
	}

	return nil
}

// Receive - blocks until the next framed message arrives. A closed or broken
// stream reads as ErrConnectionLost; undecodable bytes as ErrMalformedMessage.
func (that *Conn) Receive() (protocol.Message, error) {
	if !that.scanner.Scan() {
		err := that.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		return protocol.Message{}, fmt.Errorf("%w: %w", apperror.ErrConnectionLost, err)
	}

	var msg protocol.Message
	if err := json.Unmarshal(that.scanner.Bytes(), &msg); err != nil {
		return protocol.Message{}, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if msg.Action == "" {
		return protocol.Message{}, fmt.Errorf("%w: missing action", apperror.ErrMalformedMessage)
	}

	return msg, nil
}

// Close - closes the underlying stream. Closing is also the sole cancellation
// path for a blocked Receive.
func (that *Conn) Close() error {
	that.closeOnce.Do(func() {
		that.closeErr = that.conn.Close()
	})
	return that.closeErr
}

// RemoteAddr - the peer's address, for logging only.
func (that *Conn) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

// Listen - listens on the given port and accepts exactly one peer. The
// listener is closed as soon as the single connection is established; this is
// a two-participant protocol, there is nothing to accept afterwards.
func Listen(ctx context.Context, port string) (*Conn, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", port, err)
	}
	defer listener.Close()

	// unblock Accept when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-done:
		}
	}()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("listen cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to accept peer: %w", err)
	}

	return NewConn(conn), nil
}

// Dial - connects to a listening host.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	return NewConn(conn), nil
}
