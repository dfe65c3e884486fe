package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Storage keeps rooms in a SQL table guarded by a version column.
// Updates are optimistic: UPDATE ... WHERE version = <read version>.
type Storage struct {
	db  *sql.DB
	cfg Config
}

// New opens the database and creates the schema
func New(cfg Config) (*Storage, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, storage.Unavailable(err)
	}

	s, err := NewWithDB(ctx, db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB uses an open database (for testing)
func NewWithDB(ctx context.Context, db *sql.DB, cfg Config) (*Storage, error) {
	defaults := DefaultConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}

	s := &Storage{db: db, cfg: cfg}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Read(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var data string
	var version int64
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT data, version FROM rooms WHERE id = ?"), string(id)).
		Scan(&data, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, storage.Unavailable(err)
	}

	var room model.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, err
	}
	room.Version = version
	room.EnsureState()
	return &room, nil
}

func (s *Storage) Write(ctx context.Context, room *model.Room) error {
	committed, err := s.commit(ctx, room.ID, func(cur *model.Room) (*model.Room, error) {
		next := room.Clone()
		next.Version = 1
		if cur != nil {
			next.Version = cur.Version + 1
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	room.Version = committed.Version
	return nil
}

func (s *Storage) Transact(ctx context.Context, id model.RoomID, fn storage.UpdateFunc) (*model.Room, error) {
	return s.commit(ctx, id, func(cur *model.Room) (*model.Room, error) {
		if cur == nil {
			return nil, model.ErrRoomNotFound
		}
		return storage.Apply(cur, fn)
	})
}

func (s *Storage) commit(ctx context.Context, id model.RoomID, next func(cur *model.Room) (*model.Room, error)) (*model.Room, error) {
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		cur, err := s.Read(ctx, id)
		if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
			return nil, err
		}

		room, err := next(cur)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(room)
		if err != nil {
			return nil, err
		}

		var res sql.Result
		if cur == nil {
			res, err = s.db.ExecContext(ctx,
				s.rebind("INSERT INTO rooms (id, data, version) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING"),
				string(id), string(payload), room.Version)
		} else {
			res, err = s.db.ExecContext(ctx,
				s.rebind("UPDATE rooms SET data = ?, version = ? WHERE id = ? AND version = ?"),
				string(payload), room.Version, string(id), cur.Version)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, storage.Unavailable(err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, storage.Unavailable(err)
		}
		if n == 1 {
			return room, nil
		}
	}
	return nil, model.ErrConflict
}

// Subscribe polls the version column and delivers the room when it moves
func (s *Storage) Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error) {
	current, err := s.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	w := storage.NewWatcher(onChange)
	w.Deliver(current)

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		last := current.Version
		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				var version int64
				err := s.db.QueryRowContext(subCtx, s.rebind("SELECT version FROM rooms WHERE id = ?"), string(id)).
					Scan(&version)
				if err != nil || version <= last {
					continue
				}
				room, err := s.Read(subCtx, id)
				if err != nil {
					continue
				}
				last = room.Version
				w.Deliver(room)
			}
		}
	}()

	return cancel, nil
}
