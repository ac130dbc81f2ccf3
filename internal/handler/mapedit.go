package handler

import (
	"context"
	"encoding/json"

	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

// MapEditGroup covers the content revision lifecycle: editors submit,
// managers decide.
type MapEditGroup struct {
	guard
	mapedit *service.MapEditService
}

func NewMapEditGroup(registry *session.Registry, mapedit *service.MapEditService) *MapEditGroup {
	return &MapEditGroup{guard: guard{registry: registry}, mapedit: mapedit}
}

func (h *MapEditGroup) Name() string { return "mapedit" }

func (h *MapEditGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpSubmitMapVersion,
		protocol.OpListPendingMapVersions,
		protocol.OpGetMapVersionDetails,
		protocol.OpApproveMapVersion,
		protocol.OpRejectMapVersion,
	}
}

type submitVersionPayload struct {
	MapID   int64           `json:"mapId"`
	Content json.RawMessage `json:"content"`
	Summary string          `json:"summary"`
}

type decideVersionPayload struct {
	VersionID int64  `json:"versionId"`
	Reason    string `json:"reason,omitempty"`
}

func (h *MapEditGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.OpSubmitMapVersion:
		info, err := h.requireRank(ctx, req, model.RoleContentEditor)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p submitVersionPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		version, err := h.mapedit.SubmitVersion(ctx, info.UserID, p.MapID, p.Content, p.Summary)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, version)

	case protocol.OpListPendingMapVersions:
		if _, err := h.requireRank(ctx, req, model.RoleContentManager); err != nil {
			return protocol.ErrResponse(req, err)
		}
		versions, err := h.mapedit.ListPending(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, versions)

	case protocol.OpGetMapVersionDetails:
		if _, err := h.requireRank(ctx, req, model.RoleContentEditor); err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p decideVersionPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		version, err := h.mapedit.GetVersion(ctx, p.VersionID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, version)

	case protocol.OpApproveMapVersion:
		info, err := h.requireRank(ctx, req, model.RoleContentManager)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p decideVersionPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		version, err := h.mapedit.Approve(ctx, info.UserID, p.VersionID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, version)

	case protocol.OpRejectMapVersion:
		info, err := h.requireRank(ctx, req, model.RoleContentManager)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p decideVersionPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		version, err := h.mapedit.Reject(ctx, info.UserID, p.VersionID, p.Reason)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, version)
	}
	return nil
}
