package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/service"
)

var notFound = []error{
	repository.ErrRoomNotFound,
	repository.ErrDailyQuestionNotFound,
	repository.ErrEventNotFound,
	repository.ErrTaskNotFound,
	repository.ErrMilestoneNotFound,
	repository.ErrMemoryNotFound,
	repository.ErrDateIdeaNotFound,
	repository.ErrDatePlanNotFound,
	repository.ErrNotificationNotFound,
	repository.ErrQuestionNotFound,
}

var conflict = []error{
	repository.ErrAlreadyAnswered,
	service.ErrRoomFull,
	service.ErrNoPartner,
}

// writeError maps service and repository errors onto status codes. Anything
// unrecognised is logged and reported as a 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidSubscription):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, service.ErrEmptyQuestionPool):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
	}
	for _, target := range conflict {
		if errors.Is(err, target) {
			middleware.ErrorResponse(w, http.StatusConflict, err.Error())
			return
		}
	}

	slog.Error(action+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "failed to "+action)
}

// decode parses a JSON body and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := middleware.ParseJSONBody(w, r, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
