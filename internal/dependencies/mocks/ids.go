package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/gameofchests/internal/dependencies/ids"
	"github.com/mcoot/gameofchests/internal/model"
)

// MockIDs is a mock implementation of ids.Generator for testing.
// Queued values are returned first, then sequential ones.
type MockIDs struct {
	mu         sync.Mutex
	rooms      []model.RoomID
	identities []model.Identity
	roomSeq    int
	identSeq   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// RoomID returns the next queued room id, or room-N
func (m *MockIDs) RoomID() model.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rooms) > 0 {
		id := m.rooms[0]
		m.rooms = m.rooms[1:]
		return id
	}
	m.roomSeq++
	return model.RoomID(fmt.Sprintf("room-%d", m.roomSeq))
}

// Identity returns the next queued identity, or player-N
func (m *MockIDs) Identity() model.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.identities) > 0 {
		id := m.identities[0]
		m.identities = m.identities[1:]
		return id
	}
	m.identSeq++
	return model.Identity(fmt.Sprintf("player-%d", m.identSeq))
}

// QueueRoomID adds values to the room id queue
func (m *MockIDs) QueueRoomID(values ...model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = append(m.rooms, values...)
}

// QueueIdentity adds values to the identity queue
func (m *MockIDs) QueueIdentity(values ...model.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = append(m.identities, values...)
}
