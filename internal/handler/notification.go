package handler

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/service"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

type NotificationGroup struct {
	guard
	notifications *service.NotificationService
}

func NewNotificationGroup(registry *session.Registry, notifications *service.NotificationService) *NotificationGroup {
	return &NotificationGroup{guard: guard{registry: registry}, notifications: notifications}
}

func (h *NotificationGroup) Name() string { return "notification" }

func (h *NotificationGroup) Ops() []protocol.Op {
	return []protocol.Op{
		protocol.OpGetMyNotifications,
		protocol.OpGetUnreadCount,
		protocol.OpMarkNotificationRead,
		protocol.OpMarkAllRead,
	}
}

type listNotificationsPayload struct {
	UnreadOnly bool `json:"unreadOnly,omitempty"`
}

type markReadPayload struct {
	NotificationID int64 `json:"notificationId"`
}

func (h *NotificationGroup) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	info, err := h.require(ctx, req)
	if err != nil {
		return protocol.ErrResponse(req, err)
	}

	switch req.Type {
	case protocol.OpGetMyNotifications:
		var p listNotificationsPayload
		if len(req.Payload) > 0 {
			if err := req.Bind(&p); err != nil {
				return protocol.ErrResponse(req, err)
			}
		}
		notifications, err := h.notifications.ListMine(ctx, info.UserID, p.UnreadOnly)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, notifications)

	case protocol.OpGetUnreadCount:
		count, err := h.notifications.UnreadCount(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]int{"unread": count})

	case protocol.OpMarkNotificationRead:
		var p markReadPayload
		if err := req.Bind(&p); err != nil {
			return protocol.ErrResponse(req, err)
		}
		if err := h.notifications.MarkRead(ctx, p.NotificationID, info.UserID); err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]bool{"read": true})

	case protocol.OpMarkAllRead:
		cleared, err := h.notifications.MarkAllRead(ctx, info.UserID)
		if err != nil {
			return protocol.ErrResponse(req, err)
		}
		return protocol.OKResponse(req, map[string]int64{"cleared": cleared})
	}
	return nil
}
