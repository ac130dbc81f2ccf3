package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

// PricingGroup covers public price reads and the price change workflow.
// Managers propose changes; only company managers decide them.
type PricingGroup struct {
	guard
	pricing *service.PricingService
	catalog *service.CatalogService
}

func NewPricingGroup(registry *session.Registry, pricing *service.PricingService, catalog *service.CatalogService) *PricingGroup {
	return &PricingGroup{guard: guard{registry: registry}, pricing: pricing, catalog: catalog}
}

func (h *PricingGroup) Name() string { return "pricing" }

func (h *PricingGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpGetCurrentPrices,
		protocol.OpGetCityPrice,
		protocol.OpSubmitPricingRequest,
		protocol.OpListPendingPricingRequests,
		protocol.OpApprovePricingRequest,
		protocol.OpRejectPricingRequest,
	}
}

type submitPricingPayload struct {
	CityID        int64   `json:"cityId"`
	ProposedPrice float64 `json:"proposedPrice"`
	Justification string  `json:"justification"`
}

type decidePricingPayload struct {
	RequestID int64  `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

type cityIDPayload struct {
	CityID int64 `json:"cityId"`
}

func (h *PricingGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.OpGetCurrentPrices:
		prices, err := h.catalog.GetCurrentPrices(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, prices)

	case protocol.OpGetCityPrice:
		var p cityIDPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		price, err := h.catalog.GetCityPrice(ctx, p.CityID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, price)

	case protocol.OpSubmitPricingRequest:
		info, err := h.requireRank(ctx, req, model.RoleContentManager)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p submitPricingPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		request, err := h.pricing.Submit(ctx, info.UserID, p.CityID, p.ProposedPrice, p.Justification)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, request)

	case protocol.OpListPendingPricingRequests:
		if _, err := h.requireRank(ctx, req, model.RoleCompanyManager); err != nil {
			return protocol.ErrResponse(req, err)
		}
		requests, err := h.pricing.ListPending(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, requests)

	case protocol.OpApprovePricingRequest:
		info, err := h.requireRank(ctx, req, model.RoleCompanyManager)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p decidePricingPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		request, err := h.pricing.Approve(ctx, info.UserID, p.RequestID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, request)

	case protocol.OpRejectPricingRequest:
		info, err := h.requireRank(ctx, req, model.RoleCompanyManager)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p decidePricingPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		request, err := h.pricing.Reject(ctx, info.UserID, p.RequestID, p.Reason)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, request)
	}
	return nil
}
