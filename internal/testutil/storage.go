package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// MockStorage is a testify mock of storage.Storage
type MockStorage struct {
	mock.Mock
}

// Ensure MockStorage implements the interface
var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Read(ctx context.Context, id model.RoomID) (*model.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *MockStorage) Write(ctx context.Context, room *model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockStorage) Transact(ctx context.Context, id model.RoomID, fn storage.UpdateFunc) (*model.Room, error) {
	args := m.Called(ctx, id, fn)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *MockStorage) Subscribe(ctx context.Context, id model.RoomID, onChange func(*model.Room)) (func(), error) {
	args := m.Called(ctx, id, onChange)
	unsubscribe, _ := args.Get(0).(func())
	return unsubscribe, args.Error(1)
}

func (m *MockStorage) Close() error {
	return m.Called().Error(0)
}
