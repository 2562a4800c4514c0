package handler

import (
	"net/http"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Show handles GET /api/profile
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Profile(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "load profile")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, profile)
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Locale      string `json:"locale"`
	}
	if !decode(w, r, &req) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), ctxkeys.UserID(r.Context()), req.DisplayName, req.Locale)
	if err != nil {
		writeError(w, r, err, "update profile")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, profile)
}
