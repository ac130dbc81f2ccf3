package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/audit"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

// guard re-validates the session token on every authenticated request.
// Tokens are bearer credentials; nothing is cached on the connection.
type guard struct {
	registry *session.Registry
}

func (g *guard) require(ctx context.Context, req *protocol.Request) (*session.Info, error) {
	if !req.Authenticated() {
		return nil, apperr.AuthRequired()
	}
	info := g.registry.Validate(req.Token)
	if info == nil {
		audit.Log(ctx, audit.Event{Type: audit.EventSessionExpired})
		return nil, apperr.SessionExpired()
	}
	req.UserID = info.UserID
	return info, nil
}

// requireRank is the editorial ladder check (editor < manager < company
// manager).
func (g *guard) requireRank(ctx context.Context, req *protocol.Request, min model.Role) (*session.Info, error) {
	info, err := g.require(ctx, req)
	if err != nil {
		return nil, err
	}
	if !info.Role.AtLeast(min) {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventRoleDenied,
			UserID:   info.UserID,
			Username: info.Username,
			Details:  map[string]interface{}{"required": string(min), "actual": string(info.Role)},
		})
		return nil, apperr.Forbidden("insufficient role for this operation")
	}
	return info, nil
}

// requireRole demands an exact role. Used for agent-only operations,
// which sit outside the editorial ladder.
func (g *guard) requireRole(ctx context.Context, req *protocol.Request, role model.Role) (*session.Info, error) {
	info, err := g.require(ctx, req)
	if err != nil {
		return nil, err
	}
	if info.Role != role {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventRoleDenied,
			UserID:   info.UserID,
			Username: info.Username,
			Details:  map[string]interface{}{"required": string(role), "actual": string(info.Role)},
		})
		return nil, apperr.Forbidden("insufficient role for this operation")
	}
	return info, nil
}
