package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/testutil"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func playingRoom(t *testing.T, s model.Settings) *model.Room {
	t.Helper()
	room := &model.Room{ID: "r1", Creator: "alice"}
	room.Assign(model.RolePresenter, "alice", t0)
	room.Assign(model.RolePlacer, "bob", t0)
	require.NoError(t, Restart(room, s))
	return room
}

func play(t *testing.T, room *model.Room, moves [][2]int) {
	t.Helper()
	for _, m := range moves {
		require.NoError(t, Offer(room, m[0], "alice"))
		testutil.AssertGameConsistent(t, room.State)
		require.NoError(t, Place(room, m[1], "bob", t0))
		testutil.AssertGameConsistent(t, room.State)
	}
}

// Initialize tests

func TestInitialize(t *testing.T) {
	for n := model.MinCoinCount; n <= model.MaxCoinCount; n++ {
		state, err := Initialize(model.Settings{CoinCount: n, Compensation: 2})
		require.NoError(t, err)

		assert.Len(t, state.Remaining, n)
		for v := 1; v <= n; v++ {
			assert.Contains(t, state.Remaining, v)
		}
		assert.Equal(t, 0, state.Turn)
		assert.Equal(t, model.PhaseWaiting, state.Phase)
		assert.False(t, state.CurrentOffered.Valid)
		assert.Empty(t, state.Moves)
		testutil.AssertGameConsistent(t, state)
	}
}

func TestInitializeRejectsOutOfRangeSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings model.Settings
	}{
		{name: "too few coins", settings: model.Settings{CoinCount: 3, Compensation: 2}},
		{name: "too many coins", settings: model.Settings{CoinCount: 11, Compensation: 2}},
		{name: "negative compensation", settings: model.Settings{CoinCount: 5, Compensation: -1}},
		{name: "compensation too high", settings: model.Settings{CoinCount: 5, Compensation: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Initialize(tt.settings)
			assert.ErrorIs(t, err, model.ErrInvalidSettings)
		})
	}
}

func TestRestartStartsOfferingWhenBothSeated(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	assert.Equal(t, model.PhaseOffering, room.State.Phase)

	room.Vacate("bob")
	require.NoError(t, Restart(room, model.DefaultSettings()))
	assert.Equal(t, model.PhaseWaiting, room.State.Phase)
}

// Promote tests

func TestPromote(t *testing.T) {
	room := &model.Room{State: model.NewGameState(5, 2)}
	room.Assign(model.RolePresenter, "alice", t0)

	assert.False(t, Promote(room), "one seat filled")
	assert.Equal(t, model.PhaseWaiting, room.State.Phase)

	room.Assign(model.RolePlacer, "bob", t0)
	assert.True(t, Promote(room))
	assert.Equal(t, model.PhaseOffering, room.State.Phase)

	assert.False(t, Promote(room), "already offering")
	assert.Equal(t, model.PhaseOffering, room.State.Phase)
}

func TestPromoteIsNoOpOutsideWaiting(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	require.NoError(t, Offer(room, 0, "alice"))
	before := room.Clone()

	assert.False(t, Promote(room))
	assert.Equal(t, before, room)
}

func TestSuspendAndResumeMidRound(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	require.NoError(t, Offer(room, 1, "alice"))

	room.Vacate("bob")
	assert.True(t, Suspend(room))
	assert.Equal(t, model.PhaseWaiting, room.State.Phase)

	err := Place(room, 3, "bob", t0)
	assert.ErrorIs(t, err, model.ErrNotPlacer)

	room.Assign(model.RolePlacer, "carol", t0)
	assert.True(t, Promote(room))
	assert.Equal(t, model.PhasePlacing, room.State.Phase)
	require.NoError(t, Place(room, 3, "carol", t0))
	assert.Equal(t, []int{3}, room.State.Baskets[1])
}

// Offer tests

func TestOfferSucceeds(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())

	require.NoError(t, Offer(room, 2, "alice"))
	assert.Equal(t, model.Offered(2), room.State.CurrentOffered)
	assert.Equal(t, model.PhasePlacing, room.State.Phase)
}

func TestOfferFailsIfNotPresenter(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	assert.ErrorIs(t, Offer(room, 0, "bob"), model.ErrNotPresenter)
	assert.ErrorIs(t, Offer(room, 0, "mallory"), model.ErrNotPresenter)
}

func TestOfferFailsIfAlreadyOffered(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	require.NoError(t, Offer(room, 0, "alice"))

	assert.ErrorIs(t, Offer(room, 1, "alice"), model.ErrAlreadyOffered)
	assert.Equal(t, model.Offered(0), room.State.CurrentOffered)
}

func TestOfferFailsIfGameFinished(t *testing.T) {
	room := playingRoom(t, model.Settings{CoinCount: 4, Compensation: 0})
	play(t, room, [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 4}})

	assert.ErrorIs(t, Offer(room, 0, "alice"), model.ErrGameFinished)
}

func TestOfferFailsWhileWaiting(t *testing.T) {
	room := &model.Room{State: model.NewGameState(5, 2)}
	room.Assign(model.RolePresenter, "alice", t0)

	assert.ErrorIs(t, Offer(room, 0, "alice"), model.ErrWaitingForPlayers)
}

func TestOfferFailsIfBasketOutOfRange(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	assert.ErrorIs(t, Offer(room, 3, "alice"), model.ErrInvalidBasket)
	assert.ErrorIs(t, Offer(room, -1, "alice"), model.ErrInvalidBasket)
}

func TestSameBasketMayBeOfferedAgain(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	play(t, room, [][2]int{{0, 1}, {0, 2}})
	assert.Equal(t, []int{1, 2}, room.State.Baskets[0])
}

// Place tests

func TestPlaceSucceeds(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	require.NoError(t, Offer(room, 1, "alice"))

	at := t0.Add(time.Minute)
	require.NoError(t, Place(room, 4, "bob", at))

	state := room.State
	assert.Equal(t, []int{4}, state.Baskets[1])
	assert.Equal(t, 4, state.Sums[1])
	assert.NotContains(t, state.Remaining, 4)
	assert.Equal(t, 1, state.Turn)
	assert.False(t, state.CurrentOffered.Valid)
	assert.Equal(t, model.PhaseOffering, state.Phase)
	assert.Equal(t, []model.Move{{Turn: 1, Basket: 1, Coin: 4, By: "bob", ByShort: "bob", At: at}}, state.Moves)
	testutil.AssertGameConsistent(t, state)
}

func TestPlaceFailsIfNoBasketOffered(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	before := room.Clone()

	assert.ErrorIs(t, Place(room, 1, "bob", t0), model.ErrNoBasketOffered)
	assert.Equal(t, before, room)
}

func TestPlaceFailsIfNotPlacer(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	require.NoError(t, Offer(room, 0, "alice"))

	assert.ErrorIs(t, Place(room, 1, "alice", t0), model.ErrNotPlacer)
}

func TestPlaceFailsIfCoinUnavailable(t *testing.T) {
	room := playingRoom(t, model.DefaultSettings())
	play(t, room, [][2]int{{0, 3}})
	require.NoError(t, Offer(room, 1, "alice"))

	assert.ErrorIs(t, Place(room, 3, "bob", t0), model.ErrCoinUnavailable)
	assert.ErrorIs(t, Place(room, 6, "bob", t0), model.ErrCoinUnavailable)
	assert.ErrorIs(t, Place(room, 0, "bob", t0), model.ErrCoinUnavailable)
}

func TestMoveLogShortensLongIdentities(t *testing.T) {
	room := &model.Room{}
	room.Assign(model.RolePresenter, "alice", t0)
	room.Assign(model.RolePlacer, "0123456789abcdef", t0)
	require.NoError(t, Restart(room, model.DefaultSettings()))

	require.NoError(t, Offer(room, 0, "alice"))
	require.NoError(t, Place(room, 1, "0123456789abcdef", t0))
	assert.Equal(t, "01234567", room.State.Moves[0].ByShort)
}

// Full game tests

func TestTurnAdvancesToFinished(t *testing.T) {
	for n := model.MinCoinCount; n <= model.MaxCoinCount; n++ {
		room := playingRoom(t, model.Settings{CoinCount: n, Compensation: 1})
		for coin := 1; coin <= n; coin++ {
			require.NoError(t, Offer(room, coin%model.BasketCount, "alice"))
			require.NoError(t, Place(room, coin, "bob", t0))
			assert.Equal(t, coin, room.State.Turn)
			assert.Equal(t, coin == n, room.State.Phase == model.PhaseFinished)
			testutil.AssertGameConsistent(t, room.State)
		}
		assert.Empty(t, room.State.Remaining)
	}
}

func TestScenarioFiveCoins(t *testing.T) {
	room := playingRoom(t, model.Settings{CoinCount: 5, Compensation: 2})
	play(t, room, [][2]int{{0, 5}, {1, 1}, {2, 4}, {0, 2}, {1, 3}})

	state := room.State
	assert.Equal(t, [model.BasketCount][]int{{5, 2}, {1, 3}, {4}}, state.Baskets)
	assert.Equal(t, [model.BasketCount]int{7, 4, 4}, state.Sums)
	assert.Equal(t, model.PhaseFinished, state.Phase)
	assert.Len(t, state.Moves, 5)
}
