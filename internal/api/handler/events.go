package handler

import (
	"net/http"

	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/web/sse"
)

// EventsHandler streams room snapshots over server-sent events
type EventsHandler struct {
	roomController room.ControllerInterface
	broadcaster    *sse.Broadcaster
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(roomController room.ControllerInterface, broadcaster *sse.Broadcaster) *EventsHandler {
	return &EventsHandler{roomController: roomController, broadcaster: broadcaster}
}

// Stream handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())
	id := roomID(r)

	hub, err := h.broadcaster.Follow(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, hub, caller, func() ([]byte, error) {
		rm, err := h.roomController.GetRoom(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return h.broadcaster.Render(rm)
	})
}
