package handler

import (
	"net/http"

	"github.com/mcoot/gameofchests/internal/api/apierr"
	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/services/game"
)

// GameHandler handles the presenter and placer moves
type GameHandler struct {
	gameController game.ControllerInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface) *GameHandler {
	return &GameHandler{gameController: gameController}
}

// Offer handles POST /api/v1/rooms/{id}/offer
func (h *GameHandler) Offer(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.OfferRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Basket == nil {
		WriteError(w, apierr.NewInvalidRequestError("basket is required"))
		return
	}

	rm, err := h.gameController.OfferBasket(r.Context(), roomID(r), caller, *req.Basket)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}

// Place handles POST /api/v1/rooms/{id}/place
func (h *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.PlaceRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Coin == nil {
		WriteError(w, apierr.NewInvalidRequestError("coin is required"))
		return
	}

	rm, err := h.gameController.PlaceCoin(r.Context(), roomID(r), caller, *req.Coin)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFor(rm, caller))
}

// Outcome handles GET /api/v1/rooms/{id}/outcome
func (h *GameHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.gameController.Outcome(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OutcomeFromModel(outcome))
}
