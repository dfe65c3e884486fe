package participant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameofchests/internal/dependencies/mocks"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage/memory"
	"github.com/mcoot/gameofchests/internal/testutil"
)

const waitFor = 2 * time.Second

type SessionSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ids     *mocks.MockIDs
	games   *game.Controller
	rooms   *room.Controller
	ctx     context.Context
	alice   *Session
	bob     *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDs()
	s.games = game.NewController(s.storage, s.clock, logger)
	s.rooms = room.NewController(s.storage, s.games, s.clock, s.ids, logger)
	s.ctx = context.Background()
	s.alice = s.newSession("alice")
	s.bob = s.newSession("bob")
}

func (s *SessionSuite) TearDownTest() {
	s.alice.Close()
	s.bob.Close()
	s.storage.Close()
}

func (s *SessionSuite) newSession(id model.Identity) *Session {
	return NewSession(s.ctx, id, s.rooms, s.games, s.storage, testutil.NopLogger())
}

func (s *SessionSuite) startGame() {
	s.ids.QueueRoomID("r1")
	s.Require().NoError(s.alice.CreateRoom(s.ctx, room.CreateParams{
		Role:     model.RolePresenter,
		Settings: model.DefaultSettings(),
	}))
	s.Require().NoError(s.bob.JoinRoom(s.ctx, "r1", ""))
	s.waitPhase(s.alice, model.PhaseOffering)
}

func (s *SessionSuite) waitPhase(session *Session, phase model.Phase) {
	s.Eventually(func() bool {
		snap := session.Snapshot()
		return snap.Room != nil && snap.Room.State.Phase == phase
	}, waitFor, 5*time.Millisecond)
}

func (s *SessionSuite) TestIntentsRequireBoundRoom() {
	s.ErrorIs(s.alice.OfferBasket(s.ctx, 0), model.ErrNotInRoom)
	s.ErrorIs(s.alice.PlaceCoin(s.ctx, 1), model.ErrNotInRoom)
	s.ErrorIs(s.alice.LeaveRoom(s.ctx), model.ErrNotInRoom)
	s.ErrorIs(s.alice.ResetGame(s.ctx, room.ResetParams{}), model.ErrNotInRoom)
	s.ErrorIs(s.alice.AssumeRole(s.ctx, room.AssumeParams{Role: model.RolePlacer}), model.ErrNotInRoom)
	s.Nil(s.alice.Snapshot().Room)
}

func (s *SessionSuite) TestCreateRoomBindsSnapshot() {
	s.ids.QueueRoomID("r1")
	s.Require().NoError(s.alice.CreateRoom(s.ctx, room.CreateParams{
		Role:     model.RolePlacer,
		Settings: model.DefaultSettings(),
	}))

	snap := s.alice.Snapshot()
	s.Require().NotNil(snap.Room)
	s.Equal(model.RoomID("r1"), s.alice.RoomID())
	s.Equal(model.RolePlacer, snap.Role)
	s.Equal(model.PhaseWaiting, snap.Room.State.Phase)
	s.Nil(snap.Outcome)
}

func (s *SessionSuite) TestJoinPromotesBothViews() {
	s.startGame()

	s.waitPhase(s.bob, model.PhaseOffering)
	s.Equal(model.RolePresenter, s.alice.Snapshot().Role)
	s.Equal(model.RolePlacer, s.bob.Snapshot().Role)
}

func (s *SessionSuite) TestOtherParticipantsMovesArePushed() {
	s.startGame()

	s.Require().NoError(s.alice.OfferBasket(s.ctx, 2))
	s.waitPhase(s.bob, model.PhasePlacing)
	s.Equal(model.Offered(2), s.bob.Snapshot().Room.State.CurrentOffered)

	s.Require().NoError(s.bob.PlaceCoin(s.ctx, 4))
	s.waitPhase(s.alice, model.PhaseOffering)
	s.Equal(4, s.alice.Snapshot().Room.State.Sums[2])
}

func (s *SessionSuite) TestIllegalIntentReturnsTypedError() {
	s.startGame()

	s.ErrorIs(s.bob.OfferBasket(s.ctx, 0), model.ErrNotPresenter)
	s.ErrorIs(s.alice.PlaceCoin(s.ctx, 1), model.ErrNoBasketOffered)
	s.Equal(model.PhaseOffering, s.alice.Snapshot().Room.State.Phase)
}

func (s *SessionSuite) TestFinishedGameCarriesOutcome() {
	s.startGame()
	for _, m := range [][2]int{{0, 5}, {1, 1}, {2, 4}, {0, 2}, {1, 3}} {
		s.Require().NoError(s.alice.OfferBasket(s.ctx, m[0]))
		s.Require().NoError(s.bob.PlaceCoin(s.ctx, m[1]))
	}

	s.waitPhase(s.alice, model.PhaseFinished)
	s.waitPhase(s.bob, model.PhaseFinished)

	aliceView := s.alice.Snapshot()
	s.Require().NotNil(aliceView.Outcome)
	s.Equal(game.ResultPlacerWins, aliceView.Outcome.Result)
	s.Equal("You lose 7:6", aliceView.Headline)
	s.Equal("You win 7:6", s.bob.Snapshot().Headline)
}

func (s *SessionSuite) TestWatchDoesNotSeat() {
	s.startGame()
	carol := s.newSession("carol")
	defer carol.Close()

	s.Require().NoError(carol.Watch(s.ctx, "r1"))
	snap := carol.Snapshot()
	s.Require().NotNil(snap.Room)
	s.Empty(snap.Role)

	s.Require().NoError(s.alice.OfferBasket(s.ctx, 1))
	s.waitPhase(carol, model.PhasePlacing)
}

func (s *SessionSuite) TestLeaveRoomUnbinds() {
	s.startGame()

	s.Require().NoError(s.bob.LeaveRoom(s.ctx))
	s.Empty(s.bob.RoomID())
	s.Nil(s.bob.Snapshot().Room)

	s.waitPhase(s.alice, model.PhaseWaiting)
	s.True(s.alice.Snapshot().Room.Placer.IsEmpty())
}

func (s *SessionSuite) TestListenersSeeMonotonicVersions() {
	var mu sync.Mutex
	var versions []int64
	s.bob.OnChange(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		versions = append(versions, snap.Room.Version)
	})

	s.startGame()
	s.Require().NoError(s.alice.OfferBasket(s.ctx, 0))
	s.Require().NoError(s.bob.PlaceCoin(s.ctx, 3))
	s.waitPhase(s.bob, model.PhaseOffering)
	s.Eventually(func() bool {
		return s.bob.Snapshot().Room.State.Turn == 1
	}, waitFor, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Require().NotEmpty(versions)
	for i := 1; i < len(versions); i++ {
		s.Greater(versions[i], versions[i-1])
	}
}

func (s *SessionSuite) TestResetKeepsSettings() {
	s.ids.QueueRoomID("r1")
	s.Require().NoError(s.alice.CreateRoom(s.ctx, room.CreateParams{
		Role:     model.RolePresenter,
		Settings: model.Settings{CoinCount: 7, Compensation: 3},
	}))

	s.Require().NoError(s.alice.ResetGame(s.ctx, room.ResetParams{}))
	state := s.alice.Snapshot().Room.State
	s.Equal(7, state.CoinCount)
	s.Equal(3, state.Compensation)
}

func TestNewSnapshotForSpectator(t *testing.T) {
	r := &model.Room{
		ID:        "r1",
		Creator:   "alice",
		Presenter: model.Seat{Occupant: "alice"},
		Placer:    model.Seat{Occupant: "bob"},
		State:     model.NewGameState(5, 2),
	}

	snap := NewSnapshot(r, "carol")
	if snap.Role != "" || snap.Outcome != nil || snap.Headline != "" {
		t.Errorf("unexpected spectator snapshot: %+v", snap)
	}
}
