package handler

import (
	"net/http"

	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/services/bot"
)

// BotHandler handles seating and removing bots
type BotHandler struct {
	bots bot.ServiceInterface
}

// NewBotHandler creates a new bot handler
func NewBotHandler(bots bot.ServiceInterface) *BotHandler {
	return &BotHandler{bots: bots}
}

// Add handles POST /api/v1/rooms/{id}/bot
func (h *BotHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.AddBotRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	rm, botID, err := h.bots.AddBot(r.Context(), roomID(r), caller, req.StrategyOrDefault())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.BotResponse{
		Room: response.RoomFor(rm, caller),
		Bot:  response.IdentityFromModel(botID),
	})
}

// Remove handles DELETE /api/v1/rooms/{id}/bot
func (h *BotHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	rm, err := h.bots.RemoveBot(r.Context(), roomID(r), caller)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}
