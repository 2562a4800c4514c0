package handler

import (
	"net/http"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	feedService     *service.FeedService
}

func NewActivityHandler(activityService *service.ActivityService, feedService *service.FeedService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		feedService:     feedService,
	}
}

// Activity handles GET /api/rooms/{roomID}/activity
func (h *ActivityHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityService.Activity(r.Context(), ctxkeys.RoomID(r.Context()), time.Now())
	if err != nil {
		writeError(w, r, err, "load activity")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, activity)
}

// Feed handles GET /api/rooms/{roomID}/feed?before=YYYY-MM-DD
func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.feedService.Page(r.Context(), ctxkeys.RoomID(r.Context()), r.URL.Query().Get("before"), time.Now())
	if err != nil {
		writeError(w, r, err, "load feed")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}
