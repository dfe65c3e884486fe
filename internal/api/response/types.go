package response

import (
	"time"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/identity"
	"github.com/mcoot/gameofchests/internal/services/participant"
)

// Identity represents an anonymous participant in API responses
type Identity struct {
	ID    string `json:"id"`
	Short string `json:"short"`
}

// IdentityFromModel converts a model.Identity
func IdentityFromModel(id model.Identity) Identity {
	return Identity{ID: string(id), Short: id.Short()}
}

// CredentialsResponse is returned when a new identity is issued
type CredentialsResponse struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialsFromModel converts issued credentials
func CredentialsFromModel(c *identity.Credentials) CredentialsResponse {
	return CredentialsResponse{
		Identity:  IdentityFromModel(c.Identity),
		Token:     c.Token,
		ExpiresAt: c.ExpiresAt,
	}
}

// Seat represents an occupied role
type Seat struct {
	Identity Identity  `json:"identity"`
	JoinedAt time.Time `json:"joined_at"`
}

// SeatFromModel converts a model.Seat, returning nil for an empty seat
func SeatFromModel(s model.Seat) *Seat {
	if s.IsEmpty() {
		return nil
	}
	return &Seat{Identity: IdentityFromModel(s.Occupant), JoinedAt: s.JoinedAt}
}

// Move represents one placement
type Move struct {
	Turn    int       `json:"turn"`
	Basket  int       `json:"basket"`
	Coin    int       `json:"coin"`
	By      string    `json:"by"`
	ByShort string    `json:"by_short"`
	At      time.Time `json:"at"`
}

// GameState represents the game of a room
type GameState struct {
	Phase        string  `json:"phase"`
	CoinCount    int     `json:"coin_count"`
	Compensation int     `json:"compensation"`
	Remaining    []int   `json:"remaining"`
	Baskets      [][]int `json:"baskets"`
	Sums         []int   `json:"sums"`
	Turn         int     `json:"turn"`
	Offered      *int    `json:"offered"`
	Moves        []Move  `json:"moves"`
}

// GameStateFromModel converts a model.GameState
func GameStateFromModel(g *model.GameState) GameState {
	baskets := make([][]int, model.BasketCount)
	for i, b := range g.Baskets {
		baskets[i] = append([]int{}, b...)
	}

	moves := make([]Move, len(g.Moves))
	for i, m := range g.Moves {
		moves[i] = Move{
			Turn:    m.Turn,
			Basket:  m.Basket,
			Coin:    m.Coin,
			By:      string(m.By),
			ByShort: m.ByShort,
			At:      m.At,
		}
	}

	var offered *int
	if g.CurrentOffered.Valid {
		idx := g.CurrentOffered.Index
		offered = &idx
	}

	return GameState{
		Phase:        string(g.Phase),
		CoinCount:    g.CoinCount,
		Compensation: g.Compensation,
		Remaining:    append([]int{}, g.Remaining...),
		Baskets:      baskets,
		Sums:         append([]int{}, g.Sums[:]...),
		Turn:         g.Turn,
		Offered:      offered,
		Moves:        moves,
	}
}

// Outcome represents the result of a finished game
type Outcome struct {
	Result          string `json:"result"`
	PlacerScore     int    `json:"placer_score"`
	PresenterScore  int    `json:"presenter_score"`
	PlacerBasket    int    `json:"placer_basket"`
	PresenterBasket int    `json:"presenter_basket"`
	Summary         string `json:"summary"`
}

// OutcomeFromModel converts a game.Outcome
func OutcomeFromModel(o game.Outcome) Outcome {
	return Outcome{
		Result:          string(o.Result),
		PlacerScore:     o.PlacerScore,
		PresenterScore:  o.PresenterScore,
		PlacerBasket:    o.PlacerBasket,
		PresenterBasket: o.PresenterBasket,
		Summary:         o.Summary(),
	}
}

// Room is one participant's view of a room
type Room struct {
	ID          string    `json:"id"`
	Creator     string    `json:"creator"`
	DisplayName string    `json:"display_name,omitempty"`
	Presenter   *Seat     `json:"presenter"`
	Placer      *Seat     `json:"placer"`
	State       GameState `json:"state"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`

	// Viewer specific
	Role     string   `json:"role,omitempty"`
	Outcome  *Outcome `json:"outcome,omitempty"`
	Headline string   `json:"headline,omitempty"`
}

// RoomFromSnapshot converts a participant snapshot
func RoomFromSnapshot(s participant.Snapshot) Room {
	r := s.Room
	resp := Room{
		ID:          string(r.ID),
		Creator:     string(r.Creator),
		DisplayName: r.DisplayName,
		Presenter:   SeatFromModel(r.Presenter),
		Placer:      SeatFromModel(r.Placer),
		State:       GameStateFromModel(r.State),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		Role:        string(s.Role),
		Headline:    s.Headline,
	}
	if s.Outcome != nil {
		o := OutcomeFromModel(*s.Outcome)
		resp.Outcome = &o
	}
	return resp
}

// RoomFor returns viewer's view of r
func RoomFor(r *model.Room, viewer model.Identity) Room {
	return RoomFromSnapshot(participant.NewSnapshot(r, viewer))
}

// JoinResponse is returned when joining a room
type JoinResponse struct {
	Room Room   `json:"room"`
	Role string `json:"role"`
}

// BotResponse is returned when a bot is seated
type BotResponse struct {
	Room Room     `json:"room"`
	Bot  Identity `json:"bot"`
}

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
}
