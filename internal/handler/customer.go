package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

type CustomerGroup struct {
	guard
	customer *service.CustomerService
}

func NewCustomerGroup(registry *session.Registry, customer *service.CustomerService) *CustomerGroup {
	return &CustomerGroup{guard: guard{registry: registry}, customer: customer}
}

func (h *CustomerGroup) Name() string { return "customer" }

func (h *CustomerGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpGetMyProfile,
		protocol.OpUpdateMyProfile,
		protocol.OpAdminListCustomers,
		protocol.OpAdminGetCustomerPurchases,
	}
}

type customerIDPayload struct {
	CustomerID int64 `json:"customerId"`
}

func (h *CustomerGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.OpGetMyProfile:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		user, err := h.customer.GetProfile(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, user)

	case protocol.OpUpdateMyProfile:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p model.UpdateProfileParams
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		user, err := h.customer.UpdateProfile(ctx, info.UserID, p)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, user)

	case protocol.OpAdminListCustomers:
		if _, err := h.requireRank(ctx, req, model.RoleCompanyManager); err != nil {
			return protocol.ErrResponse(req, err)
		}
		customers, err := h.customer.ListCustomers(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, customers)

	case protocol.OpAdminGetCustomerPurchases:
		if _, err := h.requireRank(ctx, req, model.RoleCompanyManager); err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p customerIDPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		purchases, err := h.customer.GetCustomerPurchases(ctx, p.CustomerID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, purchases)
	}
	return nil
}
