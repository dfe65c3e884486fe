package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// Phase represents the current phase of a game
type Phase string

const (
	PhaseWaiting  Phase = "waiting"  // Fewer than two roles filled
	PhaseOffering Phase = "offering" // Presenter picks a basket
	PhasePlacing  Phase = "placing"  // Placer drops a coin into the offered basket
	PhaseFinished Phase = "finished" // All coins placed
)

// Game settings bounds and defaults
const (
	BasketCount = 3

	MinCoinCount        = 4
	MaxCoinCount        = 10
	DefaultCoinCount    = 5
	MinCompensation     = 0
	MaxCompensation     = 10
	DefaultCompensation = 2
)

// OfferedBasket is the basket awaiting a placement, if any.
// The zero value means no basket is offered.
type OfferedBasket struct {
	Index int
	Valid bool
}

// NoBasket is the empty OfferedBasket
var NoBasket = OfferedBasket{}

// Offered returns an OfferedBasket holding index
func Offered(index int) OfferedBasket {
	return OfferedBasket{Index: index, Valid: true}
}

// MarshalJSON encodes an empty offer as null
func (o OfferedBasket) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Index)
}

// UnmarshalJSON decodes null or a basket index
func (o *OfferedBasket) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = NoBasket
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}
	*o = Offered(idx)
	return nil
}

// Move is one entry of the append-only placement log
type Move struct {
	Turn    int       `json:"turn"`
	Basket  int       `json:"idx"`
	Coin    int       `json:"coin"`
	By      Identity  `json:"by"`
	ByShort string    `json:"byShort"`
	At      time.Time `json:"ts"`
}

// GameState is the per-room game record
type GameState struct {
	CoinCount      int                `json:"coinCount"`
	Compensation   int                `json:"compensation"`
	Remaining      []int              `json:"remaining"`
	Baskets        [BasketCount][]int `json:"baskets"`
	Sums           [BasketCount]int   `json:"sums"`
	Turn           int                `json:"turn"`
	CurrentOffered OfferedBasket      `json:"currentOffered"`
	Phase          Phase              `json:"phase"`
	Moves          []Move             `json:"moves"`
}

// NewGameState builds a fresh game with coins 1..coinCount remaining.
// Settings are not validated here.
func NewGameState(coinCount, compensation int) *GameState {
	remaining := make([]int, 0, coinCount)
	for v := 1; v <= coinCount; v++ {
		remaining = append(remaining, v)
	}
	return &GameState{
		CoinCount:    coinCount,
		Compensation: compensation,
		Remaining:    remaining,
		Baskets:      [BasketCount][]int{{}, {}, {}},
		Phase:        PhaseWaiting,
		Moves:        []Move{},
	}
}

// IsActive returns true while a round is in progress
func (g *GameState) IsActive() bool {
	return g.Phase == PhaseOffering || g.Phase == PhasePlacing
}

// IsComplete returns true once every coin has been placed
func (g *GameState) IsComplete() bool {
	return g.Turn >= g.CoinCount
}

// Clone returns a deep copy
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	c := *g
	c.Remaining = slices.Clone(g.Remaining)
	for i := range g.Baskets {
		c.Baskets[i] = slices.Clone(g.Baskets[i])
	}
	c.Moves = slices.Clone(g.Moves)
	return &c
}

// Settings are the parameters a game is started with
type Settings struct {
	CoinCount    int
	Compensation int
}

// DefaultSettings returns the settings used when none are given
func DefaultSettings() Settings {
	return Settings{
		CoinCount:    DefaultCoinCount,
		Compensation: DefaultCompensation,
	}
}

// Settings returns the settings this game was started with
func (g *GameState) Settings() Settings {
	return Settings{CoinCount: g.CoinCount, Compensation: g.Compensation}
}
