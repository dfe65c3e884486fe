package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameofchests/internal/model"
)

func finishedState(sums [model.BasketCount]int, compensation int) *model.GameState {
	state := model.NewGameState(5, compensation)
	state.Sums = sums
	state.Phase = model.PhaseFinished
	return state
}

func TestComputeOutcome(t *testing.T) {
	tests := []struct {
		name         string
		sums         [model.BasketCount]int
		compensation int
		want         Outcome
	}{
		{
			name:         "placer wins",
			sums:         [model.BasketCount]int{7, 4, 4},
			compensation: 2,
			want: Outcome{
				Result: ResultPlacerWins, PlacerScore: 7, PresenterScore: 6,
				PlacerBasket: 0, PresenterBasket: 1,
			},
		},
		{
			name:         "draw",
			sums:         [model.BasketCount]int{6, 0, 4},
			compensation: 2,
			want: Outcome{
				Result: ResultDraw, PlacerScore: 6, PresenterScore: 6,
				PlacerBasket: 0, PresenterBasket: 2,
			},
		},
		{
			name:         "presenter wins",
			sums:         [model.BasketCount]int{3, 6, 6},
			compensation: 1,
			want: Outcome{
				Result: ResultPresenterWins, PlacerScore: 6, PresenterScore: 7,
				PlacerBasket: 1, PresenterBasket: 2,
			},
		},
		{
			name:         "lowest basket ignored",
			sums:         [model.BasketCount]int{1, 9, 5},
			compensation: 0,
			want: Outcome{
				Result: ResultPlacerWins, PlacerScore: 9, PresenterScore: 5,
				PlacerBasket: 1, PresenterBasket: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeOutcome(finishedState(tt.sums, tt.compensation))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeOutcomeBeforeFinish(t *testing.T) {
	state := model.NewGameState(5, 2)
	_, ok := ComputeOutcome(state)
	assert.False(t, ok)

	_, ok = ComputeOutcome(nil)
	assert.False(t, ok)
}

func TestScenarioOutcome(t *testing.T) {
	room := playingRoom(t, model.Settings{CoinCount: 5, Compensation: 2})
	play(t, room, [][2]int{{0, 5}, {1, 1}, {2, 4}, {0, 2}, {1, 3}})

	outcome, ok := ComputeOutcome(room.State)
	require.True(t, ok)
	assert.Equal(t, ResultPlacerWins, outcome.Result)
	assert.Equal(t, "Placer wins 7:6", outcome.Summary())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Draw 6:6", Outcome{Result: ResultDraw, PlacerScore: 6, PresenterScore: 6}.Summary())
	assert.Equal(t, "Presenter wins 5:6", Outcome{Result: ResultPresenterWins, PlacerScore: 5, PresenterScore: 6}.Summary())
}

func TestHeadline(t *testing.T) {
	room := &model.Room{Creator: "alice", DisplayName: "Bobby"}
	room.Assign(model.RolePresenter, "alice", t0)
	room.Assign(model.RolePlacer, "bob", t0.Add(1))

	placerWins := Outcome{Result: ResultPlacerWins, PlacerScore: 7, PresenterScore: 6}
	presenterWins := Outcome{Result: ResultPresenterWins, PlacerScore: 5, PresenterScore: 6}
	draw := Outcome{Result: ResultDraw, PlacerScore: 6, PresenterScore: 6}

	assert.Equal(t, "You win 7:6", placerWins.Headline(room, "bob"))
	assert.Equal(t, "You lose 7:6", placerWins.Headline(room, "alice"))
	assert.Equal(t, "Bobby wins 7:6", placerWins.Headline(room, "spectator"))
	assert.Equal(t, "Presenter wins 5:6", presenterWins.Headline(room, "spectator"))
	assert.Equal(t, "Draw 6:6", draw.Headline(room, "alice"))
}
