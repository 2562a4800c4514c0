package handler

import (
	"net/http"

	"github.com/twoofus/server/internal/ctxkeys"
	"github.com/twoofus/server/internal/middleware"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type roomResponse struct {
	*model.Room
	Members []*model.RoomMember `json:"members"`
}

// Create handles POST /api/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomService.Create(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "create room")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, room)
}

// Join handles POST /api/rooms/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	room, err := h.roomService.Join(r.Context(), ctxkeys.UserID(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err, "join room")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, room)
}

// List handles GET /api/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.RoomsForUser(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "list rooms")
		return
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	middleware.JSONResponse(w, http.StatusOK, rooms)
}

// Show handles GET /api/rooms/{roomID}
func (h *RoomHandler) Show(w http.ResponseWriter, r *http.Request) {
	roomID := ctxkeys.RoomID(r.Context())

	room, err := h.roomService.Room(r.Context(), roomID)
	if err != nil {
		writeError(w, r, err, "load room")
		return
	}
	members, err := h.roomService.Members(r.Context(), roomID)
	if err != nil {
		writeError(w, r, err, "load members")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, roomResponse{Room: room, Members: members})
}

// SetAnniversary handles PUT /api/rooms/{roomID}/anniversary
func (h *RoomHandler) SetAnniversary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.roomService.SetAnniversary(r.Context(), ctxkeys.RoomID(r.Context()), req.Date)
	if err != nil {
		writeError(w, r, err, "set anniversary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite handles POST /api/rooms/{roomID}/invite
func (h *RoomHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.roomService.Invite(r.Context(), ctxkeys.RoomID(r.Context()), ctxkeys.UserID(r.Context()), req.Email)
	if err != nil {
		writeError(w, r, err, "send invite")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
