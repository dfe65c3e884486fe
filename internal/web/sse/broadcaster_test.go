package sse

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage/memory"
	"github.com/mcoot/gameofchests/internal/storage/storagetest"
	"github.com/mcoot/gameofchests/internal/testutil"
)

func jsonRenderer(room *model.Room) (string, error) {
	data, err := json.Marshal(room)
	return string(data), err
}

func newBroadcaster(t *testing.T) (*Broadcaster, *memory.Storage) {
	t.Helper()
	store := memory.New()
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), store, jsonRenderer, testutil.NopLogger())
	t.Cleanup(func() {
		b.Close()
		_ = store.Close()
	})
	return b, store
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive message")
		return ""
	}
}

func TestBroadcaster_FollowPushesCommits(t *testing.T) {
	ctx := context.Background()
	b, store := newBroadcaster(t)
	require.NoError(t, store.Write(ctx, storagetest.NewRoom("r1")))

	hub, err := b.Follow(ctx, "r1")
	require.NoError(t, err)
	client := NewClient(hub, "alice")
	require.True(t, hub.Register(client))
	waitForClients(t, hub, 1)

	_, err = store.Transact(ctx, "r1", func(room *model.Room) error {
		room.DisplayName = "Bob"
		return nil
	})
	require.NoError(t, err)

	// The first delivery may be the snapshot present when following began
	var msg string
	for !strings.Contains(msg, `"displayName":"Bob"`) {
		msg = receive(t, client)
		assert.True(t, strings.HasPrefix(msg, "event: room\n"))
	}
}

func TestBroadcaster_FollowIsShared(t *testing.T) {
	ctx := context.Background()
	b, store := newBroadcaster(t)
	require.NoError(t, store.Write(ctx, storagetest.NewRoom("r1")))

	hub1, err := b.Follow(ctx, "r1")
	require.NoError(t, err)
	hub2, err := b.Follow(ctx, "r1")
	require.NoError(t, err)
	assert.Same(t, hub1, hub2)
}

func TestBroadcaster_FollowMissingRoom(t *testing.T) {
	b, _ := newBroadcaster(t)

	_, err := b.Follow(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrRoomNotFound)
	assert.Nil(t, b.hubManager.GetHub("missing"))
}

func TestBroadcaster_CleanupIdle(t *testing.T) {
	ctx := context.Background()
	b, store := newBroadcaster(t)
	require.NoError(t, store.Write(ctx, storagetest.NewRoom("idle")))
	require.NoError(t, store.Write(ctx, storagetest.NewRoom("busy")))

	_, err := b.Follow(ctx, "idle")
	require.NoError(t, err)
	busy, err := b.Follow(ctx, "busy")
	require.NoError(t, err)
	require.True(t, busy.Register(NewClient(busy, "alice")))
	waitForClients(t, busy, 1)

	assert.Equal(t, 1, b.CleanupIdle())
	assert.Nil(t, b.hubManager.GetHub("idle"))
	assert.NotNil(t, b.hubManager.GetHub("busy"))
}

func TestBroadcaster_RenderFailureIsDropped(t *testing.T) {
	store := memory.New()
	defer store.Close()
	failing := func(*model.Room) (string, error) { return "", errors.New("boom") }
	b := NewBroadcaster(NewHubManager(testutil.NopLogger()), store, failing, testutil.NopLogger())
	defer b.Close()

	hub := b.hubManager.GetOrCreateHub("r1")
	client := NewClient(hub, "alice")
	require.True(t, hub.Register(client))
	waitForClients(t, hub, 1)

	b.BroadcastRoom(storagetest.NewRoom("r1"))

	select {
	case msg := <-client.send:
		t.Errorf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
