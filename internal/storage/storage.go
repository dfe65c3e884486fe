package storage

import (
	"fmt"
	"sync"

	"github.com/mcoot/gameofchests/internal/model"
)

// Unavailable wraps a transport failure as model.ErrStoreUnavailable
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

// Apply runs fn against a copy of current and stamps the next version on
// success. A missing game is initialized before fn sees the room.
func Apply(current *model.Room, fn UpdateFunc) (*model.Room, error) {
	next := current.Clone()
	next.EnsureState()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.Version = current.Version + 1
	return next, nil
}

// Watcher forwards rooms to a callback, dropping any whose version is not
// newer than the last one delivered
type Watcher struct {
	mu       sync.Mutex
	last     int64
	onChange func(*model.Room)
}

// NewWatcher creates a Watcher for onChange
func NewWatcher(onChange func(*model.Room)) *Watcher {
	return &Watcher{last: -1, onChange: onChange}
}

// Deliver forwards room if it is newer than anything seen so far
func (w *Watcher) Deliver(room *model.Room) bool {
	if room == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if room.Version <= w.last {
		return false
	}
	w.last = room.Version
	room.EnsureState()
	w.onChange(room)
	return true
}
