package request

import (
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/bot"
	"github.com/mcoot/gameofchests/internal/services/room"
)

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Role         string `json:"role,omitempty"`
	CoinCount    *int   `json:"coin_count,omitempty"`
	Compensation *int   `json:"compensation,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
}

// Settings returns the requested settings, defaulting omitted values
func (r CreateRoomRequest) Settings() model.Settings {
	return withDefaults(r.CoinCount, r.Compensation)
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Role string `json:"role,omitempty"`
}

// AssumeRoleRequest is the request body for taking a seat and restarting
type AssumeRoleRequest struct {
	Role         string `json:"role"`
	CoinCount    *int   `json:"coin_count,omitempty"`
	Compensation *int   `json:"compensation,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
}

// Settings returns the requested settings, defaulting omitted values
func (r AssumeRoleRequest) Settings() model.Settings {
	return withDefaults(r.CoinCount, r.Compensation)
}

// ResetGameRequest is the request body for resetting a game
type ResetGameRequest struct {
	CoinCount    *int `json:"coin_count,omitempty"`
	Compensation *int `json:"compensation,omitempty"`
}

// Params passes only the given settings on; the rest keep the room's values
func (r ResetGameRequest) Params() room.ResetParams {
	return room.ResetParams{CoinCount: r.CoinCount, Compensation: r.Compensation}
}

// OfferRequest is the request body for offering a basket
type OfferRequest struct {
	Basket *int `json:"basket"`
}

// PlaceRequest is the request body for placing a coin
type PlaceRequest struct {
	Coin *int `json:"coin"`
}

// AddBotRequest is the request body for seating a bot
type AddBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

// StrategyOrDefault returns the requested strategy, or random when omitted
func (r AddBotRequest) StrategyOrDefault() string {
	if r.Strategy == "" {
		return bot.StrategyRandom
	}
	return r.Strategy
}

func withDefaults(coinCount, compensation *int) model.Settings {
	s := model.DefaultSettings()
	if coinCount != nil {
		s.CoinCount = *coinCount
	}
	if compensation != nil {
		s.Compensation = *compensation
	}
	return s
}
