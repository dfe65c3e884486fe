// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Epoch is the fixed creation time of rooms built by NewRoom
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewRoom returns a fresh room with alice presenting
func NewRoom(id model.RoomID) *model.Room {
	room := &model.Room{
		ID:        id,
		Creator:   "alice",
		State:     model.NewGameState(model.DefaultCoinCount, model.DefaultCompensation),
		CreatedAt: Epoch,
	}
	room.Assign(model.RolePresenter, "alice", Epoch)
	return room
}

// Suite runs the store contract against the storage returned by NewStorage
type Suite struct {
	suite.Suite

	NewStorage func(t *testing.T) storage.Storage

	// Wait bounds how long a subscription may take to see a commit
	Wait time.Duration

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage(s.T())
	s.ctx = context.Background()
	if s.Wait == 0 {
		s.Wait = 2 * time.Second
	}
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *Suite) seed(id model.RoomID) *model.Room {
	room := NewRoom(id)
	s.Require().NoError(s.store.Write(s.ctx, room))
	return room
}

func (s *Suite) equalRooms(want, got *model.Room) {
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		s.Failf("room mismatch", "(-want +got):\n%s", diff)
	}
}

type recorder struct {
	mu    sync.Mutex
	rooms []*model.Room
}

func (r *recorder) record(room *model.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room)
}

func (r *recorder) versions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Version)
	}
	return out
}

func (r *recorder) latest() int64 {
	v := r.versions()
	if len(v) == 0 {
		return 0
	}
	return v[len(v)-1]
}

// Read/Write tests

func (s *Suite) TestReadMissingRoom() {
	_, err := s.store.Read(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestWriteThenRead() {
	room := s.seed("r1")
	s.Equal(int64(1), room.Version)

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.equalRooms(room, got)
}

func (s *Suite) TestWriteOverwriteBumpsVersion() {
	room := s.seed("r1")
	room.DisplayName = "Bob"
	s.Require().NoError(s.store.Write(s.ctx, room))
	s.Equal(int64(2), room.Version)

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal("Bob", got.DisplayName)
	s.Equal(int64(2), got.Version)
}

func (s *Suite) TestReadHealsMissingState() {
	room := NewRoom("r1")
	room.State = nil
	s.Require().NoError(s.store.Write(s.ctx, room))

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().NotNil(got.State)
	s.Equal(model.DefaultCoinCount, got.State.CoinCount)
	s.Equal(model.PhaseWaiting, got.State.Phase)
}

// Transact tests

func (s *Suite) TestTransactAppliesUpdate() {
	s.seed("r1")

	committed, err := s.store.Transact(s.ctx, "r1", func(room *model.Room) error {
		room.DisplayName = "Bob"
		room.State.Turn = 3
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(2), committed.Version)

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.equalRooms(committed, got)
}

func (s *Suite) TestTransactAbortLeavesRoomUnchanged() {
	room := s.seed("r1")
	errAbort := errors.New("abort")

	_, err := s.store.Transact(s.ctx, "r1", func(r *model.Room) error {
		r.DisplayName = "changed"
		r.State.Remaining = nil
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.equalRooms(room, got)
}

func (s *Suite) TestTransactMissingRoom() {
	called := false
	_, err := s.store.Transact(s.ctx, "missing", func(*model.Room) error {
		called = true
		return nil
	})
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.False(called)
}

func (s *Suite) TestConcurrentTransactsSerialize() {
	s.seed("r1")
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Transact(s.ctx, "r1", func(room *model.Room) error {
				room.State.Turn++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	got, err := s.store.Read(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(writers, got.State.Turn)
	s.Equal(int64(writers+1), got.Version)
}

// Subscribe tests

func (s *Suite) TestSubscribeDeliversCurrentThenCommits() {
	s.seed("r1")
	rec := &recorder{}

	unsubscribe, err := s.store.Subscribe(s.ctx, "r1", rec.record)
	s.Require().NoError(err)
	defer unsubscribe()

	s.Eventually(func() bool { return rec.latest() == 1 }, s.Wait, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := s.store.Transact(s.ctx, "r1", func(room *model.Room) error {
			room.State.Turn++
			return nil
		})
		s.Require().NoError(err)
	}

	s.Eventually(func() bool { return rec.latest() == 4 }, s.Wait, 10*time.Millisecond)

	versions := rec.versions()
	for i := 1; i < len(versions); i++ {
		s.Greater(versions[i], versions[i-1], "subscription went backwards: %v", versions)
	}
}

func (s *Suite) TestSubscribeMissingRoom() {
	_, err := s.store.Subscribe(s.ctx, "missing", func(*model.Room) {})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestUnsubscribeStopsDelivery() {
	s.seed("r1")
	rec := &recorder{}

	unsubscribe, err := s.store.Subscribe(s.ctx, "r1", rec.record)
	s.Require().NoError(err)
	s.Eventually(func() bool { return rec.latest() == 1 }, s.Wait, 10*time.Millisecond)

	unsubscribe()
	// Let any in-flight poll finish
	time.Sleep(50 * time.Millisecond)

	_, err = s.store.Transact(s.ctx, "r1", func(room *model.Room) error {
		room.State.Turn++
		return nil
	})
	s.Require().NoError(err)

	s.Never(func() bool { return rec.latest() > 1 }, 300*time.Millisecond, 20*time.Millisecond)
}

func (s *Suite) TestUnsubscribeReleasesGoroutines() {
	s.seed("r1")

	// Warm up lazily started background goroutines (connection pools)
	unsubscribe, err := s.store.Subscribe(s.ctx, "r1", func(*model.Room) {})
	s.Require().NoError(err)
	unsubscribe()
	time.Sleep(50 * time.Millisecond)
	before := runtime.NumGoroutine()

	for iter := 0; iter < 50; iter++ {
		unsubscribe, err := s.store.Subscribe(s.ctx, "r1", func(*model.Room) {})
		s.Require().NoError(err)
		unsubscribe()
	}

	s.Eventually(func() bool {
		return runtime.NumGoroutine() <= before+5
	}, s.Wait, 20*time.Millisecond, "subscriptions left goroutines running")
}

func (s *Suite) TestSubscribeEndsWithContext() {
	s.seed("r1")
	rec := &recorder{}

	ctx, cancel := context.WithCancel(s.ctx)
	_, err := s.store.Subscribe(ctx, "r1", rec.record)
	s.Require().NoError(err)
	s.Eventually(func() bool { return rec.latest() == 1 }, s.Wait, 10*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	_, err = s.store.Transact(s.ctx, "r1", func(room *model.Room) error {
		room.State.Turn++
		return nil
	})
	s.Require().NoError(err)

	s.Never(func() bool { return rec.latest() > 1 }, 300*time.Millisecond, 20*time.Millisecond)
}
