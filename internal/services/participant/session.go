package participant

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Snapshot is the read-only view of a room as seen by one participant
type Snapshot struct {
	Room *model.Room
	// Role is empty when the participant is not seated
	Role     model.Role
	Outcome  *game.Outcome
	Headline string
}

// Listener receives every new snapshot
type Listener func(Snapshot)

// Session is one participant's connection to at most one room. Intents are
// forwarded to the room and game controllers; the snapshot follows the store.
type Session struct {
	identity model.Identity
	rooms    room.ControllerInterface
	games    game.ControllerInterface
	storage  storage.Storage
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	roomID      model.RoomID
	unsubscribe func()
	snapshot    Snapshot
	listeners   []Listener
}

// NewSession creates a session for identity. The session ends when ctx ends
// or Close is called.
func NewSession(
	ctx context.Context,
	identity model.Identity,
	rooms room.ControllerInterface,
	games game.ControllerInterface,
	storage storage.Storage,
	logger *slog.Logger,
) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		identity: identity,
		rooms:    rooms,
		games:    games,
		storage:  storage,
		logger:   logger.With(slog.String("identity", string(identity))),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Identity returns the participant this session acts for
func (s *Session) Identity() model.Identity {
	return s.identity
}

// OnChange registers fn to be called with every new snapshot
func (s *Session) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the latest known view of the bound room
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// RoomID returns the bound room, or empty
func (s *Session) RoomID() model.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// CreateRoom creates a room and binds the session to it
func (s *Session) CreateRoom(ctx context.Context, params room.CreateParams) error {
	r, err := s.rooms.CreateRoom(ctx, s.identity, params)
	if err != nil {
		return err
	}
	return s.bind(r)
}

// JoinRoom seats the participant in roomID and binds the session to it
func (s *Session) JoinRoom(ctx context.Context, roomID model.RoomID, hint model.Role) error {
	r, _, err := s.rooms.JoinRoom(ctx, roomID, s.identity, hint)
	if err != nil {
		return err
	}
	return s.bind(r)
}

// Watch binds the session to roomID without taking a seat
func (s *Session) Watch(ctx context.Context, roomID model.RoomID) error {
	r, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return s.bind(r)
}

// LeaveRoom releases the participant's seat and unbinds the session
func (s *Session) LeaveRoom(ctx context.Context) error {
	roomID, err := s.boundRoom()
	if err != nil {
		return err
	}
	if _, err := s.rooms.LeaveRoom(ctx, roomID, s.identity); err != nil {
		return err
	}
	s.unbind()
	return nil
}

// AssumeRole takes a seat in the bound room and restarts its game
func (s *Session) AssumeRole(ctx context.Context, params room.AssumeParams) error {
	roomID, err := s.boundRoom()
	if err != nil {
		return err
	}
	r, err := s.rooms.AssumeRole(ctx, roomID, s.identity, params)
	if err != nil {
		return err
	}
	s.update(r)
	return nil
}

// OfferBasket offers basket as the Presenter
func (s *Session) OfferBasket(ctx context.Context, basket int) error {
	roomID, err := s.boundRoom()
	if err != nil {
		return err
	}
	r, err := s.games.OfferBasket(ctx, roomID, s.identity, basket)
	if err != nil {
		return err
	}
	s.update(r)
	return nil
}

// PlaceCoin places coin as the Placer
func (s *Session) PlaceCoin(ctx context.Context, coin int) error {
	roomID, err := s.boundRoom()
	if err != nil {
		return err
	}
	r, err := s.games.PlaceCoin(ctx, roomID, s.identity, coin)
	if err != nil {
		return err
	}
	s.update(r)
	return nil
}

// ResetGame restarts the bound room's game. Settings left unset keep their
// current values.
func (s *Session) ResetGame(ctx context.Context, params room.ResetParams) error {
	roomID, err := s.boundRoom()
	if err != nil {
		return err
	}
	r, err := s.rooms.ResetGame(ctx, roomID, s.identity, params)
	if err != nil {
		return err
	}
	s.update(r)
	return nil
}

// Close ends the room subscription. The participant keeps their seat.
func (s *Session) Close() {
	s.unbind()
	s.cancel()
}

func (s *Session) boundRoom() (model.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID == "" {
		return "", model.ErrNotInRoom
	}
	return s.roomID, nil
}

// bind switches the session to r's room and follows it
func (s *Session) bind(r *model.Room) error {
	s.mu.Lock()
	if s.roomID == r.ID {
		s.mu.Unlock()
		s.update(r)
		return nil
	}
	previous := s.unsubscribe
	s.roomID = r.ID
	s.unsubscribe = nil
	s.snapshot = Snapshot{}
	s.mu.Unlock()

	if previous != nil {
		previous()
	}
	s.update(r)

	unsubscribe, err := s.storage.Subscribe(s.ctx, r.ID, s.update)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID != r.ID {
		// Rebound while subscribing
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	return nil
}

func (s *Session) unbind() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.roomID = ""
	s.unsubscribe = nil
	s.snapshot = Snapshot{}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// update replaces the snapshot if r is newer than what the session holds
func (s *Session) update(r *model.Room) {
	s.mu.Lock()
	if r == nil || r.ID != s.roomID {
		s.mu.Unlock()
		return
	}
	if s.snapshot.Room != nil && r.Version <= s.snapshot.Room.Version {
		s.mu.Unlock()
		return
	}
	s.snapshot = NewSnapshot(r, s.identity)
	snap := s.snapshot
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// NewSnapshot builds viewer's view of r
func NewSnapshot(r *model.Room, viewer model.Identity) Snapshot {
	snap := Snapshot{Room: r}
	if role, ok := r.RoleOf(viewer); ok {
		snap.Role = role
	}
	if outcome, ok := game.ComputeOutcome(r.State); ok {
		snap.Outcome = &outcome
		snap.Headline = outcome.Headline(r, viewer)
	}
	return snap
}
