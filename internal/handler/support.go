package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

type SupportGroup struct {
	guard
	support *service.SupportService
}

func NewSupportGroup(registry *session.Registry, support *service.SupportService) *SupportGroup {
	return &SupportGroup{guard: guard{registry: registry}, support: support}
}

func (h *SupportGroup) Name() string { return "support" }

func (h *SupportGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpCreateTicket,
		protocol.OpGetMyTickets,
		protocol.OpGetTicketDetails,
		protocol.OpEscalateTicket,
		protocol.OpCloseTicket,
		protocol.OpAgentListPending,
		protocol.OpAgentListAssigned,
		protocol.OpAgentClaimTicket,
		protocol.OpAgentReply,
		protocol.OpAgentCloseTicket,
	}
}

type createTicketPayload struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ticketPayload struct {
	TicketID int64  `json:"ticketId"`
	Message  string `json:"message,omitempty"`
}

func (h *SupportGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.OpCreateTicket:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p createTicketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		view, err := h.support.CreateTicket(ctx, info.UserID, p.Subject, p.Message)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, view)

	case protocol.OpGetMyTickets:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		tickets, err := h.support.ListMine(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, tickets)

	case protocol.OpGetTicketDetails:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		view, err := h.support.GetTicket(ctx, p.TicketID, info.UserID, info.Role == model.RoleAgent)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, view)

	case protocol.OpEscalateTicket:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		if err := h.support.Escalate(ctx, p.TicketID, info.UserID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"escalated": true})

	case protocol.OpCloseTicket:
		info, err := h.require(ctx, req)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		if err := h.support.Close(ctx, p.TicketID, info.UserID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"closed": true})

	case protocol.OpAgentListPending:
		if _, err := h.requireRole(ctx, req, model.RoleAgent); err != nil {
			return protocol.ErrResponse(req, err)
		}
		tickets, err := h.support.AgentListPending(ctx)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, tickets)

	case protocol.OpAgentListAssigned:
		info, err := h.requireRole(ctx, req, model.RoleAgent)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		tickets, err := h.support.AgentListAssigned(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, tickets)

	case protocol.OpAgentClaimTicket:
		info, err := h.requireRole(ctx, req, model.RoleAgent)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		if err := h.support.AgentClaim(ctx, p.TicketID, info.UserID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"claimed": true})

	case protocol.OpAgentReply:
		info, err := h.requireRole(ctx, req, model.RoleAgent)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		msg, err := h.support.AgentReply(ctx, p.TicketID, info.UserID, p.Message)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, msg)

	case protocol.OpAgentCloseTicket:
		info, err := h.requireRole(ctx, req, model.RoleAgent)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		var p ticketPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		if err := h.support.AgentClose(ctx, p.TicketID, info.UserID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"closed": true})
	}
	return nil
}
