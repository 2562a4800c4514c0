package handler

import (
	"net/http"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Inbox handles GET /api/notifications
func (h *NotificationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	items, unread, err := h.notificationService.Inbox(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "load notifications")
		return
	}
	if items == nil {
		items = []*model.Notification{}
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"items":  items,
		"unread": unread,
	})
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkRead(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err, "mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationService.MarkAllRead(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "mark notifications read")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// pushSubscriptionJSON is the shape of PushSubscription.toJSON() in browsers.
type pushSubscriptionJSON struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	ExpirationTime *int64 `json:"expirationTime"`
}

// Subscribe handles POST /api/push/subscriptions
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req pushSubscriptionJSON
	if !decode(w, r, &req) {
		return
	}

	sub := &model.PushSubscription{
		UserID:    ctxkeys.UserID(r.Context()),
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: r.UserAgent(),
	}
	if err := h.notificationService.Subscribe(r.Context(), sub); err != nil {
		writeError(w, r, err, "save push subscription")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Unsubscribe handles DELETE /api/push/subscriptions
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Endpoint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.notificationService.Unsubscribe(r.Context(), ctxkeys.UserID(r.Context()), req.Endpoint); err != nil {
		writeError(w, r, err, "delete push subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
