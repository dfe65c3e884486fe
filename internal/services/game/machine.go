package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/thoas/go-funk"

	"github.com/mcoot/gameofchests/internal/model"
)

// ValidateSettings checks coin count and compensation are in range
func ValidateSettings(s model.Settings) error {
	if s.CoinCount < model.MinCoinCount || s.CoinCount > model.MaxCoinCount {
		return fmt.Errorf("%w: coin count must be between %d and %d",
			model.ErrInvalidSettings, model.MinCoinCount, model.MaxCoinCount)
	}
	if s.Compensation < model.MinCompensation || s.Compensation > model.MaxCompensation {
		return fmt.Errorf("%w: compensation must be between %d and %d",
			model.ErrInvalidSettings, model.MinCompensation, model.MaxCompensation)
	}
	return nil
}

// Initialize builds a fresh game in the waiting phase
func Initialize(s model.Settings) (*model.GameState, error) {
	if err := ValidateSettings(s); err != nil {
		return nil, err
	}
	return model.NewGameState(s.CoinCount, s.Compensation), nil
}

// Restart replaces the room's game with a fresh one. The new game starts
// offering when both roles are filled.
func Restart(room *model.Room, s model.Settings) error {
	state, err := Initialize(s)
	if err != nil {
		return err
	}
	room.State = state
	if room.BothFilled() {
		state.Phase = model.PhaseOffering
	}
	return nil
}

// Promote resumes a waiting game once both roles are filled and reports
// whether the phase changed. It is a no-op in any other phase. A fresh game
// moves to offering; a round suspended by a leave keeps its phase, so an
// outstanding offer resumes in placing and a played-out game in finished.
func Promote(room *model.Room) bool {
	state := room.State
	if state == nil || state.Phase != model.PhaseWaiting || !room.BothFilled() {
		return false
	}
	switch {
	case state.IsComplete():
		state.Phase = model.PhaseFinished
	case state.CurrentOffered.Valid:
		state.Phase = model.PhasePlacing
	default:
		state.Phase = model.PhaseOffering
	}
	return true
}

// Suspend parks an active game in the waiting phase after a role empties
func Suspend(room *model.Room) bool {
	if room.State == nil || !room.State.IsActive() || room.BothFilled() {
		return false
	}
	room.State.Phase = model.PhaseWaiting
	return true
}

// Offer reveals basket to the placer
func Offer(room *model.Room, basket int, by model.Identity) error {
	state := room.State

	if basket < 0 || basket >= model.BasketCount {
		return model.ErrInvalidBasket
	}
	if room.Presenter.Occupant != by || by == "" {
		return model.ErrNotPresenter
	}
	if state.CurrentOffered.Valid {
		return model.ErrAlreadyOffered
	}
	if state.IsComplete() {
		return model.ErrGameFinished
	}
	if state.Phase == model.PhaseWaiting {
		return model.ErrWaitingForPlayers
	}

	state.CurrentOffered = model.Offered(basket)
	state.Phase = model.PhasePlacing
	return nil
}

// Place drops coin into the offered basket
func Place(room *model.Room, coin int, by model.Identity, at time.Time) error {
	state := room.State

	if !state.CurrentOffered.Valid {
		return model.ErrNoBasketOffered
	}
	if room.Placer.Occupant != by || by == "" {
		return model.ErrNotPlacer
	}
	if !funk.ContainsInt(state.Remaining, coin) {
		return model.ErrCoinUnavailable
	}
	if state.Phase == model.PhaseWaiting {
		return model.ErrWaitingForPlayers
	}

	idx := state.CurrentOffered.Index
	state.Baskets[idx] = append(state.Baskets[idx], coin)
	state.Sums[idx] += coin
	state.Remaining = slices.DeleteFunc(state.Remaining, func(v int) bool { return v == coin })
	state.Turn++
	state.Moves = append(state.Moves, model.Move{
		Turn:    state.Turn,
		Basket:  idx,
		Coin:    coin,
		By:      by,
		ByShort: by.Short(),
		At:      at,
	})
	state.CurrentOffered = model.NoBasket

	if state.IsComplete() {
		state.Phase = model.PhaseFinished
	} else {
		state.Phase = model.PhaseOffering
	}
	return nil
}
