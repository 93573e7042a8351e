// Package storage keeps the room ledger in PostgreSQL and the presence snapshot in
// Redis. Both backends are optional: a nil DB or Redis client turns the matching
// writes into no-ops so the relay runs purely in memory.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strangerchat/backend/internal/models"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// PresenceKey is the Redis hash holding the latest presence snapshot.
	PresenceKey = "chat:presence"
	// PresenceChannel is the Redis channel every snapshot is published on.
	PresenceChannel = "chat:presence"
)

var (
	// ErrLedgerDisabled is returned by ledger reads when no database is configured.
	ErrLedgerDisabled = errors.New("storage: room ledger is not configured")
	ErrRoomNotFound   = errors.New("storage: chat room not found")
)

type Storage interface {
	SaveRoom(ctx context.Context, room *models.ChatRoom) error
	CloseRoom(ctx context.Context, summary RoomSummary) error
	CloseStaleRooms(ctx context.Context, reason string) (int64, error)

	GetActiveRoomIDs(ctx context.Context) ([]string, error)
	GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, limit int) ([]models.ChatRoom, error)
	GetRoomStats(ctx context.Context) (*RoomStats, error)

	PublishPresence(ctx context.Context, snap models.PresenceSnapshot) error
	SubscribePresence(ctx context.Context) *redis.PubSub
}

// RoomSummary is what the ledger learns when a room closes.
type RoomSummary struct {
	RoomID       string
	MessageCount int
	Kinds        []string
	Reason       string
	EndedAt      time.Time
}

// RoomStats aggregates the ledger.
type RoomStats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	Messages int64            `json:"messages"`
	ByReason map[string]int64 `json:"byReason"`
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates the ledger table.
func (s *Service) Migrate(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.WithContext(ctx).AutoMigrate(&models.ChatRoom{})
}

// SaveRoom records a newly opened room.
func (s *Service) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.WithContext(ctx).Save(room).Error
}

// CloseRoom marks the room inactive and stores its summary.
func (s *Service) CloseRoom(ctx context.Context, summary RoomSummary) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("room_id = ?", summary.RoomID).
		Updates(closeRoomUpdates(summary)).Error
}

func closeRoomUpdates(summary RoomSummary) map[string]interface{} {
	endedAt := summary.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	kinds := summary.Kinds
	if kinds == nil {
		kinds = []string{}
	}
	return map[string]interface{}{
		"is_active":     false,
		"ended_at":      endedAt,
		"message_count": summary.MessageCount,
		"kinds":         pq.StringArray(kinds),
		"end_reason":    summary.Reason,
	}
}

// CloseStaleRooms closes every room still marked active. The relay keeps no state
// across restarts, so on startup those rooms are already gone.
func (s *Service) CloseStaleRooms(ctx context.Context, reason string) (int64, error) {
	if s.DB == nil {
		return 0, nil
	}
	result := s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"ended_at":   gorm.Expr("NOW()"),
			"end_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// GetActiveRoomIDs returns the ids of all rooms the ledger still considers open.
func (s *Service) GetActiveRoomIDs(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, ErrLedgerDisabled
	}
	var roomIDs []string
	if err := s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {
		return nil, err
	}
	return roomIDs, nil
}

// GetRoomByID loads one ledger row. A missing row is ErrRoomNotFound.
func (s *Service) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	if s.DB == nil {
		return nil, ErrLedgerDisabled
	}
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns the most recently started rooms first.
func (s *Service) ListRooms(ctx context.Context, limit int) ([]models.ChatRoom, error) {
	if s.DB == nil {
		return nil, ErrLedgerDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	var rooms []models.ChatRoom
	err := s.DB.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&rooms).Error
	return rooms, err
}

func (s *Service) GetRoomStats(ctx context.Context) (*RoomStats, error) {
	if s.DB == nil {
		return nil, ErrLedgerDisabled
	}
	db := s.DB.WithContext(ctx)
	stats := &RoomStats{ByReason: make(map[string]int64)}

	if err := db.Model(&models.ChatRoom{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ChatRoom{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ChatRoom{}).Select("COALESCE(SUM(message_count), 0)").Scan(&stats.Messages).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		EndReason string
		N         int64
	}
	if err := db.Model(&models.ChatRoom{}).
		Select("end_reason, COUNT(*) AS n").
		Where("is_active = ?", false).
		Group("end_reason").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByReason[r.EndReason] = r.N
	}
	return stats, nil
}

// PublishPresence stores the snapshot in a hash and publishes it for dashboards.
func (s *Service) PublishPresence(ctx context.Context, snap models.PresenceSnapshot) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	pipe := s.Redis.TxPipeline()
	pipe.HSet(ctx, PresenceKey, map[string]interface{}{
		"online":     snap.Online,
		"display":    snap.Display,
		"rooms":      snap.Rooms,
		"waiting":    snap.Waiting,
		"updated_at": time.Now().Unix(),
	})
	pipe.Publish(ctx, PresenceChannel, payload)
	_, err = pipe.Exec(ctx)
	return err
}

// SubscribePresence subscribes to published snapshots. It returns nil without Redis.
func (s *Service) SubscribePresence(ctx context.Context) *redis.PubSub {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Subscribe(ctx, PresenceChannel)
}
