package handler

import (
	"net/http"

	"github.com/mcoot/gameofchests/internal/api/apierr"
	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/room"
)

// RoomHandler handles room and role endpoints
type RoomHandler struct {
	roomController room.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomController room.ControllerInterface) *RoomHandler {
	return &RoomHandler{roomController: roomController}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.CreateRoomRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.roomController.CreateRoom(r.Context(), caller, room.CreateParams{
		Role:        role,
		Settings:    req.Settings(),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFor(rm, caller))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	rm, err := h.roomController.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.JoinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	hint, err := model.ParseRole(req.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, role, err := h.roomController.JoinRoom(r.Context(), roomID(r), caller, hint)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponse{
		Room: response.RoomFor(rm, caller),
		Role: string(role),
	})
}

// Leave handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	rm, err := h.roomController.LeaveRoom(r.Context(), roomID(r), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}

// Assume handles POST /api/v1/rooms/{id}/assume
func (h *RoomHandler) Assume(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.AssumeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		WriteError(w, err)
		return
	}
	if role == "" {
		WriteError(w, apierr.NewInvalidRequestError("role is required"))
		return
	}

	rm, err := h.roomController.AssumeRole(r.Context(), roomID(r), caller, room.AssumeParams{
		Role:        role,
		Settings:    req.Settings(),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}

// Reset handles POST /api/v1/rooms/{id}/reset
func (h *RoomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.ResetGameRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.roomController.ResetGame(r.Context(), roomID(r), caller, req.Params())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}
