// Package config loads the relay configuration from the environment.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the relay configuration.
type Config struct {
	// Server settings
	HTTPAddr    string
	FrontendURL string // allowed WebSocket origin, empty allows any

	// Backing services, both optional
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging
	LogLevel  string
	LogFormat string

	// Relay policy
	OnlineDisplayMultiplier float64
	PeerMarker              string
	HistoryLimit            int
	RoomLogLimit            int
	LifecycleBuffer         int

	// WebSocket settings
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
}

// Load reads the configuration from environment variables. Call godotenv.Load first
// when a .env file should be honoured.
func Load() *Config {
	return &Config{
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		FrontendURL:             getEnv("FRONTEND_URL", ""),
		DatabaseDSN:             getEnv("DATABASE_DSN", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "text"),
		OnlineDisplayMultiplier: getEnvFloat("ONLINE_DISPLAY_MULTIPLIER", DefaultOnlineDisplayMultiplier),
		PeerMarker:              getEnv("PEER_MARKER", DefaultPeerMarker),
		HistoryLimit:            getEnvInt("HISTORY_LIMIT", DefaultHistoryLimit),
		RoomLogLimit:            getEnvInt("ROOM_LOG_LIMIT", DefaultRoomLogLimit),
		LifecycleBuffer:         getEnvInt("LIFECYCLE_BUFFER", DefaultLifecycleBuffer),
		SendBuffer:              getEnvPositiveInt("WS_SEND_BUFFER", DefaultSendBuffer),
		MaxMessageSize:          int64(getEnvInt("WS_MAX_MESSAGE_SIZE", DefaultMaxMessageSize)),
		PongWait:                getEnvDuration("WS_PONG_WAIT", DefaultPongWait),
		WriteWait:               getEnvDuration("WS_WRITE_WAIT", DefaultWriteWait),
	}
}

// Default returns the configuration with every setting at its default value.
func Default() *Config {
	return &Config{
		HTTPAddr:                ":8080",
		LogLevel:                "info",
		LogFormat:               "text",
		OnlineDisplayMultiplier: DefaultOnlineDisplayMultiplier,
		PeerMarker:              DefaultPeerMarker,
		HistoryLimit:            DefaultHistoryLimit,
		RoomLogLimit:            DefaultRoomLogLimit,
		LifecycleBuffer:         DefaultLifecycleBuffer,
		SendBuffer:              DefaultSendBuffer,
		MaxMessageSize:          DefaultMaxMessageSize,
		PongWait:                DefaultPongWait,
		WriteWait:               DefaultWriteWait,
	}
}

// PingPeriod is how often the server pings a client; it must be shorter than PongWait.
func (c *Config) PingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvPositiveInt is getEnvInt for sizes where zero or a negative value is unusable.
func getEnvPositiveInt(key string, defaultVal int) int {
	if v := getEnvInt(key, defaultVal); v > 0 {
		return v
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
