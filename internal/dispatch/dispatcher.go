package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
)

// Group is a capability-scoped handler set. Groups declare the
// operations they own; ownership must not overlap.
type Group interface {
	Name() string
	Ops() []protocol.Op
	Handle(ctx context.Context, req *protocol.Request) *protocol.Response
}

// Dispatcher routes requests through a static op -> group table built
// once at startup. Duplicate ownership fails construction instead of
// being silently masked by registration order.
type Dispatcher struct {
	table map[protocol.Op]Group
}

func New(groups ...Group) (*Dispatcher, error) {
	table := make(map[protocol.Op]Group)
	for _, g := range groups {
		for _, op := range g.Ops() {
			if owner, ok := table[op]; ok {
				return nil, fmt.Errorf("operation %s claimed by both %s and %s", op, owner.Name(), g.Name())
			}
			table[op] = g
		}
	}
	return &Dispatcher{table: table}, nil
}

// Dispatch routes one request and always produces exactly one response
// correlated to the request ID. A panicking handler is converted to an
// INTERNAL_ERROR response so one bad request never kills the
// connection's message loop.
func (d *Dispatcher) Dispatch(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Str("op", string(req.Type)).
				Str("requestId", req.ID).
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("handler panic recovered")
			resp = protocol.ErrResponse(req, apperr.Internal("Internal server error"))
		}
	}()

	group, ok := d.table[req.Type]
	if !ok {
		return protocol.ErrResponse(req, apperr.Validation(fmt.Sprintf("unrecognized operation: %s", req.Type)))
	}

	resp = group.Handle(ctx, req)
	if resp == nil {
		log.Error().Str("op", string(req.Type)).Msg("handler returned nil response")
		return protocol.ErrResponse(req, apperr.Internal("Internal server error"))
	}
	resp.ID = req.ID
	return resp
}
