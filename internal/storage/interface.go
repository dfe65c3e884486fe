package storage

import (
	"context"

	"github.com/mcoot/gameofchests/internal/model"
)

// UpdateFunc mutates a private copy of the latest room. Returning an error
// aborts the update without writing. It may be called more than once.
type UpdateFunc func(room *model.Room) error

// Storage is the shared room store
type Storage interface {
	// Read returns the latest committed room or model.ErrRoomNotFound
	Read(ctx context.Context, id model.RoomID) (*model.Room, error)

	// Write stores the room unconditionally
	Write(ctx context.Context, room *model.Room) error

	// Transact applies fn to the latest room and commits the result only if no
	// other writer committed in between, re-running fn on conflict
	Transact(ctx context.Context, id model.RoomID, fn UpdateFunc) (*model.Room, error)

	// Subscribe calls onChange with the current room and then every newer
	// committed room until the returned function is called or ctx ends
	Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error)

	Close() error
}
