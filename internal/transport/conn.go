package transport

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gcmaps/gcm-server-go/internal/protocol"
)

// ErrNotConnected is returned by Send on a closed connection.
var ErrNotConnected = errors.New("transport: connection is closed")

// Conn is one live client connection. Reads happen only on the
// connection's own loop goroutine; writes may come from any dispatch
// goroutine and are serialized by the write mutex.
type Conn struct {
	id  uint64
	nc  net.Conn
	srv *Server

	writeMu      sync.Mutex
	writeTimeout time.Duration
	closed       atomic.Bool
	userID       atomic.Int64 // 0 while unauthenticated
}

func (c *Conn) ID() uint64 {
	return c.id
}

func (c *Conn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}

// UserID returns the user bound to this connection, 0 if none.
func (c *Conn) UserID() int64 {
	return c.userID.Load()
}

// Send writes one JSON frame. Frames from concurrent dispatches are
// serialized; a send on a closed connection fails with ErrNotConnected.
func (c *Conn) Send(v any) error {
	frame, err := protocol.EncodeFrame(v)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// SendLine writes a raw legacy-protocol line.
func (c *Conn) SendLine(line string) error {
	return c.write(append([]byte(line), '\n'))
}

func (c *Conn) write(frame []byte) error {
	if c.closed.Load() {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed.Load() {
		return ErrNotConnected
	}
	if c.writeTimeout > 0 {
		_ = c.nc.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.nc.Write(frame)
	return err
}

// Close terminates the connection; the read loop unwinds on the
// resulting I/O error. Safe to call more than once.
func (c *Conn) Close() {
	if c.closed.CompareAndSwap(false, true) {
		_ = c.nc.Close()
	}
}

// BindUser associates the connection with an authenticated user so push
// events can be delivered to it. Implements dispatch.ConnBinder.
func (c *Conn) BindUser(userID int64) {
	c.userID.Store(userID)
	if c.srv != nil && c.srv.OnBind != nil {
		c.srv.OnBind(c, userID)
	}
}

// UnbindUser detaches the connection from its user (logout). The hook
// receives the user that was bound, since the connection itself no
// longer carries it.
func (c *Conn) UnbindUser() {
	userID := c.userID.Swap(0)
	if userID != 0 && c.srv != nil && c.srv.OnUnbind != nil {
		c.srv.OnUnbind(c, userID)
	}
}
