package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	fb "firebase.google.com/go"
	"firebase.google.com/go/db"
	"google.golang.org/api/option"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Reference is the part of *db.Ref the store needs
type Reference interface {
	Get(ctx context.Context, v interface{}) error
	GetWithETag(ctx context.Context, v interface{}) (string, error)
	GetIfChanged(ctx context.Context, etag string, v interface{}) (bool, string, error)
	Transaction(ctx context.Context, fn db.UpdateFn) error
}

// Database hands out references by path
type Database interface {
	Ref(path string) Reference
}

type clientDatabase struct {
	client *db.Client
}

func (d clientDatabase) Ref(path string) Reference {
	return d.client.NewRef(path)
}

// Storage keeps rooms in a Firebase Realtime Database
type Storage struct {
	db  Database
	cfg Config
}

// New connects to the Realtime Database named in cfg
func New(ctx context.Context, cfg Config) (*Storage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{
		ProjectID:   cfg.ProjectID,
		DatabaseURL: cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, err
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, err
	}
	return NewWithDatabase(clientDatabase{client: client}, cfg), nil
}

// NewWithDatabase uses an existing database handle (for testing)
func NewWithDatabase(database Database, cfg Config) *Storage {
	defaults := DefaultConfig()
	if cfg.RootPath == "" {
		cfg.RootPath = defaults.RootPath
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	return &Storage{db: database, cfg: cfg}
}

// Close is a no-op; the database client holds no connections
func (s *Storage) Close() error {
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ref(id model.RoomID) Reference {
	return s.db.Ref(s.cfg.RootPath + "/" + string(id))
}

func (s *Storage) Read(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var raw json.RawMessage
	if err := s.ref(id).Get(ctx, &raw); err != nil {
		return nil, storage.Unavailable(err)
	}
	room, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
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
	var committed *model.Room
	var fnErr error

	err := s.ref(id).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var raw json.RawMessage
		if err := node.Unmarshal(&raw); err != nil {
			return nil, err
		}
		cur, err := decodeNode(raw)
		if err != nil {
			return nil, err
		}

		room, err := next(cur)
		if err != nil {
			fnErr = err
			return nil, err
		}
		committed = room
		return room, nil
	})

	switch {
	case err == nil:
		return committed, nil
	case fnErr != nil:
		return nil, fnErr
	case strings.Contains(err.Error(), "aborted after failed retries"):
		return nil, model.ErrConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	}
	return nil, storage.Unavailable(err)
}

// Subscribe polls the room with its ETag and delivers it when it changes
func (s *Storage) Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error) {
	ref := s.ref(id)

	var raw json.RawMessage
	etag, err := ref.GetWithETag(ctx, &raw)
	if err != nil {
		return nil, storage.Unavailable(err)
	}
	current, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, model.ErrRoomNotFound
	}

	w := storage.NewWatcher(onChange)
	w.Deliver(current)

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				var raw json.RawMessage
				changed, next, err := ref.GetIfChanged(subCtx, etag, &raw)
				if err != nil || !changed {
					continue
				}
				etag = next
				if room, err := decodeNode(raw); err == nil && room != nil {
					w.Deliver(room)
				}
			}
		}
	}()

	return cancel, nil
}
