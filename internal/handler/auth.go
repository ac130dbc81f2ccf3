package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/dispatch"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

type AuthGroup struct {
	auth     *service.AuthService
	registry *session.Registry
}

func NewAuthGroup(auth *service.AuthService, registry *session.Registry) *AuthGroup {
	return &AuthGroup{auth: auth, registry: registry}
}

func (h *AuthGroup) Name() string { return "auth" }

func (h *AuthGroup) Ops() []protocol.Op {
	return []protocol.Op{protocol.OpLogin, protocol.OpLogout, protocol.OpRegister}
}

func (h *AuthGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.OpLogin:
		return h.login(ctx, req)
	case protocol.OpLogout:
		return h.logout(ctx, req)
	case protocol.OpRegister:
		return h.register(ctx, req)
	}
	return nil
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthGroup) login(ctx context.Context, req *protocol.Request) *protocol.Response {
	var p loginPayload
	if err := req.Bind(&p); err != nil {
		return protocol.ErrResponse(req, err)
	}

	result, err := h.auth.Login(ctx, p.Username, p.Password)
	if err != nil {
		return protocol.ErrResponse(req, err)
	}

	// Attach the user to this connection so push events reach it.
	if binder := dispatch.BinderFrom(ctx); binder != nil {
		binder.BindUser(result.User.ID)
	}
	return protocol.OKResponse(req, result)
}

func (h *AuthGroup) logout(ctx context.Context, req *protocol.Request) *protocol.Response {
	h.auth.Logout(ctx, req.Token)

	if binder := dispatch.BinderFrom(ctx); binder != nil {
		binder.UnbindUser()
	}
	return protocol.OKResponse(req, map[string]bool{"loggedOut": true})
}

func (h *AuthGroup) register(ctx context.Context, req *protocol.Request) *protocol.Response {
	var p service.RegisterParams
	if err := req.Bind(&p); err != nil {
		return protocol.ErrResponse(req, err)
	}

	user, err := h.auth.Register(ctx, p)
	if err != nil {
		return protocol.ErrResponse(req, err)
	}
	return protocol.OKResponse(req, user)
}
