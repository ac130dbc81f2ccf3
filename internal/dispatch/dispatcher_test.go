package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
)

type stubGroup struct {
	name   string
	ops    []protocol.Op
	handle func(ctx context.Context, req *protocol.Request) *protocol.Response
}

func (g *stubGroup) Name() string       { return g.name }
func (g *stubGroup) Ops() []protocol.Op { return g.ops }
func (g *stubGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	return g.handle(ctx, req)
}

func okGroup(name string, ops ...protocol.Op) *stubGroup {
	return &stubGroup{
		name: name,
		ops:  ops,
		handle: func(ctx context.Context, req *protocol.Request) *protocol.Response {
			return protocol.OKResponse(req, map[string]string{"from": name})
		},
	}
}

func TestNew_DuplicateOwnershipFails(t *testing.T) {
	a := okGroup("alpha", protocol.OpLogin)
	b := okGroup("beta", protocol.OpLogin)

	_, err := New(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN")
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "beta")
}

func TestDispatch_RoutesByTable(t *testing.T) {
	d, err := New(
		okGroup("auth", protocol.OpLogin, protocol.OpLogout),
		okGroup("search", protocol.OpGetCitiesCatalog),
	)
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), &protocol.Request{ID: "r1", Type: protocol.OpGetCitiesCatalog})
	require.True(t, resp.OK)
	assert.Equal(t, map[string]string{"from": "search"}, resp.Payload)
}

func TestDispatch_UnknownOp(t *testing.T) {
	d, err := New(okGroup("auth", protocol.OpLogin))
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), &protocol.Request{ID: "r2", Type: "NO_SUCH_OP"})
	require.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperr.CodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "NO_SUCH_OP")
	assert.Equal(t, "r2", resp.ID)
}

func TestDispatch_PanicRecovery(t *testing.T) {
	panicking := &stubGroup{
		name: "boom",
		ops:  []protocol.Op{protocol.OpLogin},
		handle: func(ctx context.Context, req *protocol.Request) *protocol.Response {
			panic("handler exploded")
		},
	}
	d, err := New(panicking)
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), &protocol.Request{ID: "r3", Type: protocol.OpLogin})
	require.NotNil(t, resp)
	require.False(t, resp.OK)
	assert.Equal(t, apperr.CodeInternal, resp.Error.Code)
	assert.Equal(t, "r3", resp.ID)
}

func TestDispatch_NilHandlerResponse(t *testing.T) {
	broken := &stubGroup{
		name: "nilly",
		ops:  []protocol.Op{protocol.OpLogin},
		handle: func(ctx context.Context, req *protocol.Request) *protocol.Response {
			return nil
		},
	}
	d, err := New(broken)
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), &protocol.Request{ID: "r4", Type: protocol.OpLogin})
	require.NotNil(t, resp)
	assert.Equal(t, apperr.CodeInternal, resp.Error.Code)
}

func TestDispatch_ResponseIDAlwaysMatchesRequest(t *testing.T) {
	sloppy := &stubGroup{
		name: "sloppy",
		ops:  []protocol.Op{protocol.OpLogin},
		handle: func(ctx context.Context, req *protocol.Request) *protocol.Response {
			// Handler forgets to correlate.
			return &protocol.Response{ID: "wrong", OK: true}
		},
	}
	d, err := New(sloppy)
	require.NoError(t, err)

	resp := d.Dispatch(context.Background(), &protocol.Request{ID: "r5", Type: protocol.OpLogin})
	assert.Equal(t, "r5", resp.ID)
}
