package handler

import (
	"net/http"
	"time"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

type QuestionHandler struct {
	dailyQuestionService *service.DailyQuestionService
	answerService        *service.AnswerService
}

func NewQuestionHandler(dailyQuestionService *service.DailyQuestionService, answerService *service.AnswerService) *QuestionHandler {
	return &QuestionHandler{
		dailyQuestionService: dailyQuestionService,
		answerService:        answerService,
	}
}

// Today handles GET /api/rooms/{roomID}/today
func (h *QuestionHandler) Today(w http.ResponseWriter, r *http.Request) {
	roomID := ctxkeys.RoomID(r.Context())
	userID := ctxkeys.UserID(r.Context())

	dq, err := h.dailyQuestionService.Today(r.Context(), roomID, time.Now())
	if err != nil {
		writeError(w, r, err, "load today's question")
		return
	}

	thread, err := h.answerService.Thread(r.Context(), roomID, dq.ID, userID)
	if err != nil {
		writeError(w, r, err, "load thread")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, thread)
}

// Thread handles GET /api/rooms/{roomID}/questions/{questionID}
func (h *QuestionHandler) Thread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.answerService.Thread(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("questionID"), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "load thread")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, thread)
}

// Answer handles POST /api/rooms/{roomID}/questions/{questionID}/answers
func (h *QuestionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}

	answer, err := h.answerService.Submit(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("questionID"), ctxkeys.UserID(r.Context()), req.Body)
	if err != nil {
		writeError(w, r, err, "submit answer")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, answer)
}

// React handles PUT /api/rooms/{roomID}/questions/{questionID}/reaction
func (h *QuestionHandler) React(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if !decode(w, r, &req) {
		return
	}

	reaction, err := h.answerService.ToggleReaction(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("questionID"), ctxkeys.UserID(r.Context()), req.Emoji)
	if err != nil {
		writeError(w, r, err, "react")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]*model.Reaction{"reaction": reaction})
}

// Messages handles GET /api/rooms/{roomID}/questions/{questionID}/messages
func (h *QuestionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.answerService.Messages(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("questionID"))
	if err != nil {
		writeError(w, r, err, "load messages")
		return
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	middleware.JSONResponse(w, http.StatusOK, messages)
}

// PostMessage handles POST /api/rooms/{roomID}/questions/{questionID}/messages
func (h *QuestionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}

	msg, err := h.answerService.PostMessage(r.Context(), ctxkeys.RoomID(r.Context()), r.PathValue("questionID"), ctxkeys.UserID(r.Context()), req.Body)
	if err != nil {
		writeError(w, r, err, "post message")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, msg)
}
