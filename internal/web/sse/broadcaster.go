package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// RoomEvent is the event name carrying room snapshots
const RoomEvent = "room"

// Renderer turns a committed room into an event payload
type Renderer func(room *model.Room) (string, error)

// Broadcaster follows rooms in the store and pushes every commit to the
// room's hub. One store subscription is held per followed room.
type Broadcaster struct {
	hubManager *HubManager
	storage    storage.Storage
	render     Renderer
	logger     *slog.Logger

	mu      sync.Mutex
	follows map[model.RoomID]func()
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, storage storage.Storage, render Renderer, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		storage:    storage,
		render:     render,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
		follows:    make(map[model.RoomID]func()),
	}
}

// Follow makes sure commits to roomID reach its hub and returns the hub
func (b *Broadcaster) Follow(ctx context.Context, roomID model.RoomID) (*Hub, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.follows[roomID]; ok {
		return b.hubManager.GetOrCreateHub(roomID), nil
	}

	// Check the room exists before holding resources for it
	if _, err := b.storage.Read(ctx, roomID); err != nil {
		return nil, err
	}

	hub := b.hubManager.GetOrCreateHub(roomID)
	unsubscribe, err := b.storage.Subscribe(context.Background(), roomID, b.BroadcastRoom)
	if err != nil {
		b.hubManager.RemoveHub(roomID)
		return nil, err
	}
	b.follows[roomID] = unsubscribe
	b.logger.Debug("following room", slog.String("room_id", string(roomID)))
	return hub, nil
}

// Render renders room as a complete SSE message
func (b *Broadcaster) Render(room *model.Room) ([]byte, error) {
	data, err := b.render(room)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(RoomEvent, data), nil
}

// BroadcastRoom sends room to every client of its hub
func (b *Broadcaster) BroadcastRoom(room *model.Room) {
	hub := b.hubManager.GetHub(room.ID)
	if hub == nil {
		return
	}

	msg, err := b.Render(room)
	if err != nil {
		b.logger.Error("sse failed to render room",
			slog.String("room_id", string(room.ID)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(msg)
}

// CleanupIdle stops following rooms nobody is watching
func (b *Broadcaster) CleanupIdle() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for _, roomID := range b.hubManager.EmptyHubs() {
		if unsubscribe, ok := b.follows[roomID]; ok {
			unsubscribe()
			delete(b.follows, roomID)
		}
		b.hubManager.RemoveHub(roomID)
		removed++
	}
	if removed > 0 {
		b.logger.Info("sse idle rooms cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// RunCleanup calls CleanupIdle every interval until ctx ends
func (b *Broadcaster) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.CleanupIdle()
		}
	}
}

// Close stops following every room and closes all hubs
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for roomID, unsubscribe := range b.follows {
		unsubscribe()
		delete(b.follows, roomID)
	}
	b.hubManager.Close()
}
