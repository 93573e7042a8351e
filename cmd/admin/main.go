package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"strangerchat/backend/internal/storage"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  rooms [limit]   list the most recent rooms from the ledger
  room <id>       show one room from the ledger
  active          list rooms the ledger still considers open
  stats           print ledger totals
  close-stale     close rooms still marked active (relay must be stopped)
  watch           stream presence snapshots from Redis`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := os.Args[1]
	var err error
	switch command {
	case "rooms":
		limit := 20
		if len(os.Args) > 2 {
			limit, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid limit. Please provide an integer.")
				os.Exit(1)
			}
		}
		err = listRooms(ctx, os.Stdout, openLedger(cfg), limit)
	case "room":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin room <id>")
			os.Exit(1)
		}
		err = showRoom(ctx, os.Stdout, openLedger(cfg), os.Args[2])
	case "active":
		err = listActive(ctx, os.Stdout, openLedger(cfg))
	case "stats":
		err = printStats(ctx, os.Stdout, openLedger(cfg))
	case "close-stale":
		err = closeStale(ctx, os.Stdout, openLedger(cfg))
	case "watch":
		err = watchPresence(ctx, os.Stdout, openPresence(cfg))
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error running %s: %v", command, err)
	}
}

func openLedger(cfg *config.Config) *storage.Service {
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	return storage.NewStorageService(db, nil) // No redis needed for ledger commands
}

func openPresence(cfg *config.Config) *storage.Service {
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is not set")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return storage.NewStorageService(nil, rdb)
}

func writeRoomLine(w io.Writer, r models.ChatRoom, now time.Time) {
	status := "closed"
	if r.IsActive {
		status = "active"
	}
	fmt.Fprintf(w, "%s  %-6s  %-10s  %4d msgs  %-8s  %s  %v\n",
		r.RoomID, status, r.EndReason, r.MessageCount,
		r.Duration(now).Round(time.Second), r.StartedAt.Format(time.RFC3339), []string(r.Kinds))
}

func listRooms(ctx context.Context, w io.Writer, s storage.Storage, limit int) error {
	rooms, err := s.ListRooms(ctx, limit)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, r := range rooms {
		writeRoomLine(w, r, now)
	}
	return nil
}

func showRoom(ctx context.Context, w io.Writer, s storage.Storage, roomID string) error {
	room, err := s.GetRoomByID(ctx, roomID)
	if errors.Is(err, storage.ErrRoomNotFound) {
		fmt.Fprintf(w, "Room %s not found.\n", roomID)
		return nil
	}
	if err != nil {
		return err
	}
	writeRoomLine(w, *room, time.Now())
	fmt.Fprintf(w, "  members: %s, %s\n", room.User1ID, room.User2ID)
	return nil
}

func listActive(ctx context.Context, w io.Writer, s storage.Storage) error {
	ids, err := s.GetActiveRoomIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	fmt.Fprintf(w, "%d active rooms.\n", len(ids))
	return nil
}

// closeStale lists what it is about to close, then closes it.
func closeStale(ctx context.Context, w io.Writer, s storage.Storage) error {
	ids, err := s.GetActiveRoomIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintf(w, "closing %s\n", id)
	}
	n, err := s.CloseStaleRooms(ctx, models.EndReasonRestart)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Closed %d stale rooms.\n", n)
	return nil
}

func printStats(ctx context.Context, w io.Writer, s storage.Storage) error {
	stats, err := s.GetRoomStats(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func watchPresence(ctx context.Context, w io.Writer, s storage.Storage) error {
	sub := s.SubscribePresence(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var snap models.PresenceSnapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				log.Printf("Error unmarshalling presence snapshot: %v", err)
				continue
			}
			fmt.Fprintf(w, "%s online=%d display=%d rooms=%d waiting=%d\n",
				time.Now().Format(time.TimeOnly), snap.Online, snap.Display, snap.Rooms, snap.Waiting)
		}
	}
}
