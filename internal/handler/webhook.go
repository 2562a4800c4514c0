package handler

import (
	"errors"
	"net/http"

	"github.com/twoofus/server/internal/jobs"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

// WebhookHandler serves the signed endpoints the platform scheduler and
// database triggers call. Signature checks happen in middleware.
type WebhookHandler struct {
	jobs                *jobs.Runner
	notificationService *service.NotificationService
}

func NewWebhookHandler(runner *jobs.Runner, notificationService *service.NotificationService) *WebhookHandler {
	return &WebhookHandler{jobs: runner, notificationService: notificationService}
}

// RunJob handles POST /webhooks/jobs/{job}
func (h *WebhookHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobs.Run(r.Context(), r.PathValue("job"))
	if errors.Is(err, jobs.ErrUnknownJob) {
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, err, "run job")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

type notifyRequest struct {
	UserID string `json:"user_id"`
	model.PushMessage
}

// Notify handles POST /webhooks/notify and pushes one message to every
// endpoint of a user.
func (h *WebhookHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id and title are required")
		return
	}

	result, err := h.notificationService.Dispatch(r.Context(), req.UserID, req.PushMessage)
	if err != nil {
		writeError(w, r, err, "send notification")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}
