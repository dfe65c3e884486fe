package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/room"
	redisstorage "github.com/mcoot/gameofchests/internal/storage/redis"
	"github.com/mcoot/gameofchests/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	newApp func() *TestApp
	app    *TestApp
	ctx    context.Context
}

func TestIntegrationSuiteMemory(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newApp: NewTestApp})
}

func TestIntegrationSuiteRedis(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newApp: func() *TestApp {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		return NewTestAppWithStorage(redisstorage.NewWithClient(client, redisstorage.DefaultConfig()))
	}})
}

func (s *IntegrationSuite) SetupTest() {
	s.app = s.newApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) play(roomID model.RoomID, presenter, placer model.Identity, moves [][2]int) *model.Room {
	var r *model.Room
	var err error
	for _, m := range moves {
		_, err = s.app.GameController.OfferBasket(s.ctx, roomID, presenter, m[0])
		s.Require().NoError(err)
		r, err = s.app.GameController.PlaceCoin(s.ctx, roomID, placer, m[1])
		s.Require().NoError(err)
		testutil.AssertGameConsistent(s.T(), r.State)
	}
	return r
}

// Test: Complete game from room creation to outcome
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockIDs.QueueRoomID("r1")

	created, err := s.app.RoomController.CreateRoom(s.ctx, "alice", room.CreateParams{
		Role:     model.RolePresenter,
		Settings: model.DefaultSettings(),
	})
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, created.State.Phase)

	s.app.MockClock.Advance(time.Second)
	joined, role, err := s.app.RoomController.JoinRoom(s.ctx, "r1", "bob", "")
	s.Require().NoError(err)
	s.Equal(model.RolePlacer, role)
	s.Equal(model.PhaseOffering, joined.State.Phase)

	final := s.play("r1", "alice", "bob", [][2]int{{0, 5}, {1, 1}, {2, 4}, {0, 2}, {1, 3}})
	s.Equal(model.PhaseFinished, final.State.Phase)
	s.Equal([3]int{7, 4, 4}, final.State.Sums)

	outcome, err := s.app.GameController.Outcome(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(game.ResultPlacerWins, outcome.Result)
	s.Equal("Placer wins 7:6", outcome.Summary())
}

// Test: Swap roles after a finished game and play again
func (s *IntegrationSuite) TestRematchWithSwappedRoles() {
	s.app.MockIDs.QueueRoomID("r1")
	_, err := s.app.RoomController.CreateRoom(s.ctx, "alice", room.CreateParams{
		Role:     model.RolePresenter,
		Settings: model.Settings{CoinCount: 4, Compensation: 0},
	})
	s.Require().NoError(err)
	_, _, err = s.app.RoomController.JoinRoom(s.ctx, "r1", "bob", "")
	s.Require().NoError(err)

	s.play("r1", "alice", "bob", [][2]int{{0, 1}, {1, 2}, {2, 3}, {2, 4}})

	r, err := s.app.RoomController.AssumeRole(s.ctx, "r1", "alice", room.AssumeParams{
		Role:     model.RolePlacer,
		Settings: model.Settings{CoinCount: 4, Compensation: 0},
	})
	s.Require().NoError(err)
	s.Equal(model.Identity("alice"), r.Placer.Occupant)
	s.Equal(model.Identity("bob"), r.Presenter.Occupant)
	s.Equal(model.PhaseOffering, r.State.Phase)
	testutil.AssertRolesExclusive(s.T(), r)

	final := s.play("r1", "bob", "alice", [][2]int{{0, 4}, {1, 3}, {1, 2}, {2, 1}})
	s.Equal(model.PhaseFinished, final.State.Phase)
}

// Test: A participant session sees the other side's moves
func (s *IntegrationSuite) TestSessionsFollowEachOther() {
	alice := s.app.NewSession(s.ctx, "alice")
	defer alice.Close()
	bob := s.app.NewSession(s.ctx, "bob")
	defer bob.Close()

	s.app.MockIDs.QueueRoomID("r1")
	s.Require().NoError(alice.CreateRoom(s.ctx, room.CreateParams{
		Role:     model.RolePlacer,
		Settings: model.DefaultSettings(),
	}))
	s.Require().NoError(bob.JoinRoom(s.ctx, "r1", ""))
	s.Require().NoError(bob.OfferBasket(s.ctx, 1))

	s.Eventually(func() bool {
		snap := alice.Snapshot()
		return snap.Room != nil && snap.Room.State.Phase == model.PhasePlacing
	}, 2*time.Second, 5*time.Millisecond)
	s.Equal(model.RolePlacer, alice.Snapshot().Role)
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx, Config{StorageType: "etcd"}); err == nil {
		t.Error("expected error for unknown storage type")
	}
	if _, err := New(ctx, Config{StorageType: StorageTypeRedis}); err == nil {
		t.Error("expected error for redis without config")
	}
	if _, err := New(ctx, Config{IdentityProvider: "ldap"}); err == nil {
		t.Error("expected error for unknown identity provider")
	}
}

func TestNewDefaultsToMemoryAndTokens(t *testing.T) {
	app, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.StorageType != StorageTypeMemory {
		t.Errorf("StorageType = %q, want memory", app.StorageType)
	}
	creds, err := app.Identity.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	id, err := app.Identity.Verify(context.Background(), creds.Token)
	if err != nil || id != creds.Identity {
		t.Errorf("Verify() = %q, %v; want %q", id, err, creds.Identity)
	}
}
