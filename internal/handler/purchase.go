package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

// PurchaseGroup covers buying, entitlement checks, downloads, and view
// tracking. Every operation needs a session but no particular role.
type PurchaseGroup struct {
	guard
	purchase *service.PurchaseService
	mapedit  *service.MapEditService
}

func NewPurchaseGroup(registry *session.Registry, purchase *service.PurchaseService, mapedit *service.MapEditService) *PurchaseGroup {
	return &PurchaseGroup{guard: guard{registry: registry}, purchase: purchase, mapedit: mapedit}
}

func (h *PurchaseGroup) Name() string { return "purchase" }

func (h *PurchaseGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpPurchaseOneTime,
		protocol.OpPurchaseSubscription,
		protocol.OpGetEntitlement,
		protocol.OpCanDownload,
		protocol.OpDownloadMapVersion,
		protocol.OpRecordViewEvent,
		protocol.OpGetMyPurchases,
	}
}

type purchasePayload struct {
	CityID    int64 `json:"cityId"`
	Months    int   `json:"months,omitempty"`
	VersionID int64 `json:"versionId,omitempty"`
}

func (h *PurchaseGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	info, err := h.require(ctx, req)
	if err != nil {
		return protocol.ErrResponse(req, err)
	}

	if req.Type == protocol.OpGetMyPurchases {
		purchases, err := h.purchase.History(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, purchases)
	}

	var p purchasePayload
	if err := req.Bind(&p); err != nil {
		return protocol.ErrResponse(req, err)
	}

	switch req.Type {
	case protocol.OpPurchaseOneTime:
		purchase, err := h.purchase.PurchaseOneTime(ctx, info.UserID, p.CityID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, purchase)

	case protocol.OpPurchaseSubscription:
		purchase, err := h.purchase.PurchaseSubscription(ctx, info.UserID, p.CityID, p.Months)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, purchase)

	case protocol.OpGetEntitlement:
		ent, err := h.purchase.GetEntitlement(ctx, info.UserID, p.CityID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, ent)

	case protocol.OpCanDownload:
		ok, err := h.purchase.CanDownload(ctx, info.UserID, p.CityID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"canDownload": ok})

	case protocol.OpDownloadMapVersion:
		version, err := h.mapedit.Download(ctx, info.UserID, p.VersionID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, version)

	case protocol.OpRecordViewEvent:
		if err := h.mapedit.RecordView(ctx, p.CityID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"recorded": true})
	}
	return nil
}
