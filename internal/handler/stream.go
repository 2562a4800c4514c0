package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/service"
)

const streamHeartbeat = 25 * time.Second

type StreamHandler struct {
	hub           *realtime.Hub
	answerService *service.AnswerService
}

func NewStreamHandler(hub *realtime.Hub, answerService *service.AnswerService) *StreamHandler {
	return &StreamHandler{hub: hub, answerService: answerService}
}

// Stream handles GET /api/rooms/{roomID}/stream?resource=
//
// The resource is the room itself (planner, journal and nudge changes) or one
// of the room's daily questions (answers, reactions and messages). Events are
// written as server-sent events until the client goes away.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	roomID := ctxkeys.RoomID(r.Context())
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		resource = roomID
	}
	if resource != roomID {
		if _, err := h.answerService.Question(r.Context(), roomID, resource); err != nil {
			writeError(w, r, err, "open stream")
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, unsubscribe := h.hub.Subscribe(resource)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": subscribed %s\n\n", resource)
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("failed to encode stream event", "resource", resource, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
