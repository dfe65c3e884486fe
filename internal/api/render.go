package api

import (
	"encoding/json"

	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/model"
)

// RenderRoom renders the spectator view of room as the SSE payload
func RenderRoom(room *model.Room) (string, error) {
	data, err := json.Marshal(response.RoomFor(room, ""))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
