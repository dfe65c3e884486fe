package game

import (
	"fmt"
	"sort"

	"github.com/mcoot/gameofchests/internal/model"
)

// Result names the side that won a finished game
type Result string

const (
	ResultPlacerWins    Result = "placer"
	ResultPresenterWins Result = "presenter"
	ResultDraw          Result = "draw"
)

// Outcome is the scored result of a finished game.
// The placer is credited with the highest basket, the presenter with the
// second highest plus compensation. The lowest basket is ignored.
type Outcome struct {
	Result          Result
	PlacerScore     int
	PresenterScore  int
	PlacerBasket    int
	PresenterBasket int
}

// ComputeOutcome scores state, returning false until the game is finished
func ComputeOutcome(state *model.GameState) (Outcome, bool) {
	if state == nil || state.Phase != model.PhaseFinished {
		return Outcome{}, false
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool {
		return state.Sums[order[i]] > state.Sums[order[j]]
	})

	o := Outcome{
		PlacerScore:     state.Sums[order[0]],
		PresenterScore:  state.Sums[order[1]] + state.Compensation,
		PlacerBasket:    order[0],
		PresenterBasket: order[1],
	}
	switch {
	case o.PlacerScore > o.PresenterScore:
		o.Result = ResultPlacerWins
	case o.PlacerScore == o.PresenterScore:
		o.Result = ResultDraw
	default:
		o.Result = ResultPresenterWins
	}
	return o, true
}

// Winner returns the winning role, or false on a draw
func (o Outcome) Winner() (model.Role, bool) {
	switch o.Result {
	case ResultPlacerWins:
		return model.RolePlacer, true
	case ResultPresenterWins:
		return model.RolePresenter, true
	}
	return "", false
}

// Score formats the placer and presenter totals
func (o Outcome) Score() string {
	return fmt.Sprintf("%d:%d", o.PlacerScore, o.PresenterScore)
}

// Summary is the neutral result line, e.g. "Placer wins 7:6"
func (o Outcome) Summary() string {
	switch o.Result {
	case ResultPlacerWins:
		return "Placer wins " + o.Score()
	case ResultPresenterWins:
		return "Presenter wins " + o.Score()
	}
	return "Draw " + o.Score()
}

// Headline frames the result for viewer. Seated viewers read "You win" or
// "You lose"; the guest is called by the room's display name when set.
func (o Outcome) Headline(room *model.Room, viewer model.Identity) string {
	winner, ok := o.Winner()
	if !ok {
		return o.Summary()
	}

	if role, seated := room.RoleOf(viewer); seated {
		if role == winner {
			return "You win " + o.Score()
		}
		return "You lose " + o.Score()
	}

	if guest, ok := room.Guest(); ok && guest == winner && room.DisplayName != "" {
		return room.DisplayName + " wins " + o.Score()
	}
	return o.Summary()
}
