package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/service"
)

// BearerAuth checks the bearer token and adds the user id to the context if
// valid. Requests without a valid token continue anonymously; RequireAuth
// rejects them where needed.
//
// EventSource cannot set headers, so GET requests may pass the token as the
// access_token query parameter instead.
func BearerAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.VerifyJWT(token)
			if err != nil {
				slog.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			recordUser(r, userID)
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if r.Method == http.MethodGet {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// RequireAuth ensures the request carries a valid bearer token
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.UserID(r.Context()) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			ErrorResponse(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next(w, r)
	}
}

// RequireRoomMember ensures the authenticated user belongs to the room in
// the {roomID} path segment. Non-members get 404 so room ids do not leak.
func RequireRoomMember(rooms *service.RoomService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			roomID := r.PathValue("roomID")
			userID := ctxkeys.UserID(r.Context())

			err := rooms.RequireMember(r.Context(), roomID, userID)
			if errors.Is(err, repository.ErrNotMember) {
				ErrorResponse(w, http.StatusNotFound, "room not found")
				return
			}
			if err != nil {
				slog.Error("failed to check room membership", "room_id", roomID, "user_id", userID, "error", err)
				ErrorResponse(w, http.StatusInternalServerError, "failed to check room membership")
				return
			}

			next(w, r.WithContext(ctxkeys.WithRoomID(r.Context(), roomID)))
		})
	}
}
