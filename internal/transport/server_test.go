package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
)

type echoHandler struct{}

func (echoHandler) Dispatch(ctx context.Context, req *protocol.Request) *protocol.Response {
	if req.Type == "FAIL" {
		return protocol.ErrResponse(req, apperr.Validation("nope"))
	}
	return protocol.OKResponse(req, map[string]string{"op": string(req.Type)})
}

func startServer(t *testing.T) (*Server, net.Conn) {
	t.Helper()

	srv := NewServer(echoHandler{})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	nc, err := net.Dial("tcp", lis.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = nc.Close() })

	return srv, nc
}

func readResponse(t *testing.T, r *bufio.Reader) *protocol.Response {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	var resp protocol.Response
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	return &resp
}

func TestServer_RequestResponse(t *testing.T) {
	_, nc := startServer(t)
	r := bufio.NewReader(nc)

	_, err := nc.Write([]byte(`{"id":"req-1","type":"PING"}` + "\n"))
	require.NoError(t, err)

	resp := readResponse(t, r)
	assert.Equal(t, "req-1", resp.ID)
	assert.True(t, resp.OK)
}

func TestServer_ConcurrentRequestsCorrelateByID(t *testing.T) {
	_, nc := startServer(t)
	r := bufio.NewReader(nc)

	const n = 20
	for i := 0; i < n; i++ {
		req, err := protocol.NewRequest("PING", nil, "")
		require.NoError(t, err)
		req.ID = string(rune('a' + i))
		frame, err := protocol.EncodeFrame(req)
		require.NoError(t, err)
		_, err = nc.Write(frame)
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		resp := readResponse(t, r)
		assert.False(t, seen[resp.ID], "duplicate response id %s", resp.ID)
		seen[resp.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestServer_LegacyLineProtocol(t *testing.T) {
	_, nc := startServer(t)
	r := bufio.NewReader(nc)

	_, err := nc.Write([]byte("get_cities\n"))
	require.NoError(t, err)

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"GET_CITIES_CATALOG"}`, strings.TrimSpace(line))

	// Unknown legacy commands answer with an error line, connection
	// stays usable.
	_, err = nc.Write([]byte("frobnicate\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "error VALIDATION_ERROR"))
}

func TestServer_MalformedJSONClosesConnection(t *testing.T) {
	_, nc := startServer(t)
	r := bufio.NewReader(nc)

	_, err := nc.Write([]byte(`{"id":"broken"` + "\n"))
	require.NoError(t, err)

	require.NoError(t, nc.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = r.ReadString('\n')
	assert.Error(t, err, "server should close the connection")
}

func TestConn_SendAfterClose(t *testing.T) {
	srv, nc := startServer(t)
	_ = nc

	// Wait for the server to register the connection.
	require.Eventually(t, func() bool { return srv.ConnCount() == 1 }, time.Second, 10*time.Millisecond)

	srv.mu.Lock()
	var conn *Conn
	for c := range srv.conns {
		conn = c
	}
	srv.mu.Unlock()
	require.NotNil(t, conn)

	conn.Close()
	err := conn.Send(map[string]string{"x": "y"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestServer_Shutdown(t *testing.T) {
	srv, nc := startServer(t)

	require.Eventually(t, func() bool { return srv.ConnCount() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// The client side observes the close.
	require.NoError(t, nc.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 1)
	_, err := nc.Read(buf)
	assert.Error(t, err)
}
