package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/middleware"
)

type HealthHandler struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewHealthHandler(db *sqlx.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Config handles GET /api/config
func (h *HealthHandler) Config(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.cfg.Public())
}
