package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/config"
	"github.com/gcmaps/gcm-server-go/internal/dispatch"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
)

// Handler routes one request to exactly one response. Satisfied by
// *dispatch.Dispatcher.
type Handler interface {
	Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response
}

// Server accepts client connections and drives one read loop goroutine
// per connection. Responses are correlated by request ID, not ordered:
// each request is dispatched on its own goroutine so a slow handler
// does not block the connection's other in-flight requests.
type Server struct {
	handler  Handler
	maxFrame int

	// Lifecycle hooks, all optional. OnBind/OnUnbind fire when a
	// handler attaches or detaches an authenticated user.
	OnConnect    func(*Conn)
	OnDisconnect func(*Conn)
	OnBind       func(*Conn, int64)
	OnUnbind     func(*Conn, int64)

	mu       sync.Mutex
	lis      net.Listener
	conns    map[*Conn]struct{}
	wg       sync.WaitGroup
	nextID   atomic.Uint64
	shutdown atomic.Bool
}

func NewServer(handler Handler) *Server {
	return &Server{
		handler:  handler,
		maxFrame: config.MaxFrameBytes,
		conns:    make(map[*Conn]struct{}),
	}
}

func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve runs the accept loop until Shutdown or a fatal listener error.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	log.Info().Str("addr", lis.Addr().String()).Msg("transport listening")

	for {
		nc, err := lis.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}

		conn := &Conn{
			id:           s.nextID.Add(1),
			nc:           nc,
			srv:          s,
			writeTimeout: config.ConnWriteTimeout,
		}

		s.mu.Lock()
		if s.shutdown.Load() {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// Shutdown stops accepting, closes every live connection, and waits for
// the read loops to drain (bounded by ctx).
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdown.Store(true)

	s.mu.Lock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnCount returns the number of live connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) serveConn(conn *Conn) {
	defer s.wg.Done()

	logger := log.With().Uint64("connId", conn.id).Str("remote", conn.RemoteAddr()).Logger()
	logger.Info().Msg("client connected")

	if s.OnConnect != nil {
		s.OnConnect(conn)
	}

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		if s.OnDisconnect != nil {
			s.OnDisconnect(conn)
		}
		logger.Info().Msg("client disconnected")
	}()

	fr := protocol.NewFrameReader(conn.nc, s.maxFrame)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// Peer closed cleanly.
			case conn.closed.Load():
				// Server-initiated close.
			default:
				logger.Warn().Err(err).Msg("connection read failed")
			}
			return
		}

		if protocol.IsJSONFrame(frame) {
			req, err := protocol.DecodeRequest(frame)
			if err != nil {
				// Malformed frame is a fatal protocol error for
				// this connection only.
				logger.Warn().Err(err).Msg("malformed frame, closing connection")
				return
			}
			s.dispatchAsync(conn, req, &logger)
			continue
		}

		s.dispatchLegacy(conn, string(frame), &logger)
	}
}

func (s *Server) dispatchAsync(conn *Conn, req *protocol.Request, logger *zerolog.Logger) {
	go func() {
		ctx := dispatch.WithBinder(context.Background(), conn)
		resp := s.handler.Dispatch(ctx, req)
		if err := conn.Send(resp); err != nil {
			// The peer is gone; the completed work is simply discarded.
			logger.Debug().Err(err).Str("requestId", req.ID).Msg("response write failed")
		}
	}()
}

func (s *Server) dispatchLegacy(conn *Conn, line string, logger *zerolog.Logger) {
	req, err := protocol.TranslateLegacy(line)
	if err != nil {
		if sendErr := conn.SendLine("error VALIDATION_ERROR " + err.Error()); sendErr != nil {
			logger.Debug().Err(sendErr).Msg("legacy error write failed")
		}
		return
	}

	go func() {
		ctx := dispatch.WithBinder(context.Background(), conn)
		resp := s.handler.Dispatch(ctx, req)
		if err := conn.SendLine(protocol.RenderLegacy(req.Type, resp)); err != nil {
			logger.Debug().Err(err).Msg("legacy response write failed")
		}
	}()
}
