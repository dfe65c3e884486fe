package memory

import (
	"context"
	"sync"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms    map[model.RoomID]*model.Room
	watchers map[model.RoomID]map[int]*storage.Watcher
	nextID   int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:    make(map[model.RoomID]*model.Room),
		watchers: make(map[model.RoomID]map[int]*storage.Watcher),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Read(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	c := room.Clone()
	c.EnsureState()
	return c, nil
}

func (s *Storage) Write(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	next := room.Clone()
	next.Version = 1
	if cur, ok := s.rooms[room.ID]; ok {
		next.Version = cur.Version + 1
	}
	s.rooms[room.ID] = next
	s.mu.Unlock()

	room.Version = next.Version
	s.notify(next)
	return nil
}

func (s *Storage) Transact(ctx context.Context, id model.RoomID, fn storage.UpdateFunc) (*model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	cur, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	next, err := storage.Apply(cur, fn)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.rooms[id] = next
	s.mu.Unlock()

	s.notify(next)
	return next.Clone(), nil
}

func (s *Storage) Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error) {
	w := storage.NewWatcher(onChange)

	s.mu.Lock()
	cur, ok := s.rooms[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[int]*storage.Watcher)
	}
	s.nextID++
	key := s.nextID
	s.watchers[id][key] = w
	current := cur.Clone()
	s.mu.Unlock()

	w.Deliver(current)

	subCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers[id], key)
			if len(s.watchers[id]) == 0 {
				delete(s.watchers, id)
			}
			s.mu.Unlock()
			cancel()
		})
	}
	go func() {
		<-subCtx.Done()
		unsubscribe()
	}()
	return unsubscribe, nil
}

// Close drops all subscriptions
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = make(map[model.RoomID]map[int]*storage.Watcher)
	return nil
}

// notify delivers room to subscribers off the caller's goroutine; watchers
// discard anything older than what they already saw
func (s *Storage) notify(room *model.Room) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.watchers[room.ID] {
		go w.Deliver(room.Clone())
	}
}
