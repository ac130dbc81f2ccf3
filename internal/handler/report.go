package handler

import (
	"context"
	"time"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

type ReportGroup struct {
	guard
	report *service.ReportService
}

func NewReportGroup(registry *session.Registry, report *service.ReportService) *ReportGroup {
	return &ReportGroup{guard: guard{registry: registry}, report: report}
}

func (h *ReportGroup) Name() string { return "report" }

func (h *ReportGroup) Ops() []protocol.Op {
	return []protocol.Op{protocol.OpGetActivityReport}
}

type reportPayload struct {
	CityID *int64 `json:"cityId,omitempty"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (h *ReportGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	if _, err := h.requireRank(ctx, req, model.RoleCompanyManager); err != nil {
		return protocol.ErrResponse(req, err)
	}

	var p reportPayload
	if err := req.Bind(&p); err != nil {
		return protocol.ErrResponse(req, err)
	}

	from, err := time.Parse("2006-01-02", p.From)
	if err != nil {
		return protocol.ErrResponse(req, apperr.Validation("from must be a YYYY-MM-DD date"))
	}
	to, err := time.Parse("2006-01-02", p.To)
	if err != nil {
		return protocol.ErrResponse(req, apperr.Validation("to must be a YYYY-MM-DD date"))
	}

	report, err := h.report.ActivityReport(ctx, p.CityID, from, to)
	if err != nil {
		return protocol.ErrResponse(req, err)
	}
	return protocol.OKResponse(req, report)
}
