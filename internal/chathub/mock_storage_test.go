package chathub_test

import (
	"context"
	"strangerchat/backend/internal/models"
	"strangerchat/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockStorage) CloseRoom(ctx context.Context, summary storage.RoomSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockStorage) CloseStaleRooms(ctx context.Context, reason string) (int64, error) {
	args := m.Called(ctx, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetActiveRoomIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) ListRooms(ctx context.Context, limit int) ([]models.ChatRoom, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetRoomStats(ctx context.Context) (*storage.RoomStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.RoomStats), args.Error(1)
}

func (m *MockStorage) PublishPresence(ctx context.Context, snap models.PresenceSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockStorage) SubscribePresence(ctx context.Context) *redis.PubSub {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}
