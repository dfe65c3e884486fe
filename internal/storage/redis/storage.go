package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Updates use WATCH/MULTI and every commit is published on the room channel.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, storage.Unavailable(err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Read(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, storage.Unavailable(err)
	}
	return decodeRoom(data)
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

// commit runs an optimistic WATCH/MULTI cycle, retrying when another client
// touched the key first. Errors from next are returned unwrapped.
func (s *Storage) commit(ctx context.Context, id model.RoomID, next func(cur *model.Room) (*model.Room, error)) (*model.Room, error) {
	key := roomKey(id)

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		var committed *model.Room
		var fnErr error

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			var cur *model.Room
			data, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return err
			default:
				if cur, err = decodeRoom(data); err != nil {
					return err
				}
			}

			room, err := next(cur)
			if err != nil {
				fnErr = err
				return err
			}
			payload, err := json.Marshal(room)
			if err != nil {
				fnErr = err
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, s.cfg.RoomTTL)
				pipe.Publish(ctx, roomChannel(id), payload)
				return nil
			})
			if err != nil {
				return err
			}
			committed = room
			return nil
		}, key)

		switch {
		case err == nil:
			return committed, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, storage.Unavailable(err)
		}
	}
	return nil, model.ErrConflict
}

func (s *Storage) Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := s.client.Subscribe(subCtx, roomChannel(id))
	// Wait for the subscription to be confirmed so no commit after Read is missed
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, storage.Unavailable(err)
	}

	current, err := s.Read(subCtx, id)
	if err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	w := storage.NewWatcher(onChange)
	w.Deliver(current)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				room, err := decodeRoom([]byte(msg.Payload))
				if err != nil {
					continue
				}
				w.Deliver(room)
			}
		}
	}()

	return cancel, nil
}

func decodeRoom(data []byte) (*model.Room, error) {
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	room.EnsureState()
	return &room, nil
}
