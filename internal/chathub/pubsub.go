package chathub

import (
	"context"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"strangerchat/backend/internal/storage"
)

// Run consumes lifecycle events and applies them to the store: room ledger writes
// and presence snapshots. It returns when ctx is cancelled, after handling whatever
// was already buffered.
func (m *ManagerService) Run(ctx context.Context, store storage.Storage) {
	if m.lifecycle == nil || store == nil {
		<-ctx.Done()
		return
	}
	m.logger.Info("lifecycle publisher started")

	for {
		select {
		case ev := <-m.lifecycle:
			m.publish(ctx, store, ev)
		case <-ctx.Done():
			m.drain(store)
			m.logger.Info("lifecycle publisher stopped")
			return
		}
	}
}

func (m *ManagerService) drain(store storage.Storage) {
	ctx, cancel := context.WithTimeout(context.Background(), config.StorageTimeout)
	defer cancel()
	for {
		select {
		case ev := <-m.lifecycle:
			m.publish(ctx, store, ev)
		default:
			return
		}
	}
}

func (m *ManagerService) publish(parent context.Context, store storage.Storage, ev models.LifecycleEvent) {
	ctx, cancel := context.WithTimeout(parent, config.StorageTimeout)
	defer cancel()

	var err error
	switch ev.Kind {
	case models.RoomOpened:
		err = store.SaveRoom(ctx, &models.ChatRoom{
			RoomID:    ev.RoomID,
			User1ID:   ev.Members[0],
			User2ID:   ev.Members[1],
			IsActive:  true,
			StartedAt: ev.At,
		})
	case models.RoomClosed:
		err = store.CloseRoom(ctx, storage.RoomSummary{
			RoomID:       ev.RoomID,
			MessageCount: ev.MessageCount,
			Kinds:        ev.Kinds,
			Reason:       ev.Reason,
			EndedAt:      ev.At,
		})
	case models.PresenceChanged:
		err = store.PublishPresence(ctx, ev.Presence)
	}
	if err != nil {
		m.logger.Error("lifecycle publish failed",
			"kind", ev.Kind,
			"room_id", ev.RoomID,
			"error", err)
	}
}
