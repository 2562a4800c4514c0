package handler

import (
	"net/http"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

// defaultKeySpan is how many business days a date-key range covers by default.
const defaultKeySpan = 30

type JournalHandler struct {
	journalService *service.JournalService
	nudgeService   *service.NudgeService
	calendar       *datekey.Calendar
}

func NewJournalHandler(journalService *service.JournalService, nudgeService *service.NudgeService, calendar *datekey.Calendar) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		nudgeService:   nudgeService,
		calendar:       calendar,
	}
}

// WriteLog handles PUT /api/rooms/{roomID}/journal
func (h *JournalHandler) WriteLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}

	entry, err := h.journalService.WriteLog(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req.Body, time.Now())
	if err != nil {
		writeError(w, r, err, "write journal")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entry)
}

// Logs handles GET /api/rooms/{roomID}/journal?from=&to= (YYYY-MM-DD)
func (h *JournalHandler) Logs(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.keyRange(w, r)
	if !ok {
		return
	}

	logs, err := h.journalService.Logs(r.Context(), ctxkeys.RoomID(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err, "list journal")
		return
	}
	if logs == nil {
		logs = []*model.DailyLog{}
	}
	middleware.JSONResponse(w, http.StatusOK, logs)
}

// CheckIn handles PUT /api/rooms/{roomID}/mood
func (h *JournalHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood string `json:"mood"`
		Note string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}

	checkin, err := h.journalService.CheckIn(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req.Mood, req.Note, time.Now())
	if err != nil {
		writeError(w, r, err, "check in")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, checkin)
}

// Moods handles GET /api/rooms/{roomID}/moods
func (h *JournalHandler) Moods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.journalService.Moods(r.Context(), ctxkeys.RoomID(r.Context()), time.Now())
	if err != nil {
		writeError(w, r, err, "list moods")
		return
	}
	if moods == nil {
		moods = []*model.MoodCheckin{}
	}
	middleware.JSONResponse(w, http.StatusOK, moods)
}

// Nudge handles POST /api/rooms/{roomID}/nudges
func (h *JournalHandler) Nudge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji   string `json:"emoji"`
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}

	nudge, err := h.nudgeService.Send(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req.Emoji, req.Message, time.Now())
	if err != nil {
		writeError(w, r, err, "send nudge")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, nudge)
}

// Nudges handles GET /api/rooms/{roomID}/nudges?from=&to=
func (h *JournalHandler) Nudges(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.keyRange(w, r)
	if !ok {
		return
	}

	nudges, err := h.nudgeService.Nudges(r.Context(), ctxkeys.RoomID(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err, "list nudges")
		return
	}
	if nudges == nil {
		nudges = []*model.Nudge{}
	}
	middleware.JSONResponse(w, http.StatusOK, nudges)
}

// keyRange reads inclusive from/to date keys, defaulting to the last 30
// business days ending today.
func (h *JournalHandler) keyRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()

	to := q.Get("to")
	if to == "" {
		to = h.calendar.Key(time.Now())
	}
	from := q.Get("from")
	if from == "" {
		var err error
		from, err = datekey.AddDays(to, -(defaultKeySpan - 1))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return "", "", false
		}
	}
	if !datekey.Valid(from) || !datekey.Valid(to) || from > to {
		middleware.ErrorResponse(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD with from <= to")
		return "", "", false
	}
	return from, to, true
}
