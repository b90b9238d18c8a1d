// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yanivhq/yaniv-service/internal/models"
)

// Rdb is the global Redis client. It stays nil when no REDIS_ADDR is
// configured; round results are then simply not queued.
var Rdb *redis.Client

// DefaultQueueName is the Redis list that finished rounds are pushed onto
// for downstream consumers (stats, history).
var DefaultQueueName = "yaniv_round_results"

// RoundRecord is the queued form of a finished round.
type RoundRecord struct {
	RoomCode  string         `json:"room_code"`
	Round     int            `json:"round"`
	CallerID  uuid.UUID      `json:"caller_id"`
	WinnerID  uuid.UUID      `json:"winner_id"`
	Call      string         `json:"call"`
	Scores    map[string]int `json:"scores"`
	Points    map[string]int `json:"points"`
	Timestamp int64          `json:"timestamp"`
}

// RoundRecordFromResult flattens a round result for the queue.
func RoundRecordFromResult(roomCode string, res *models.RoundResult) RoundRecord {
	rec := RoundRecord{
		RoomCode:  roomCode,
		Round:     res.Round,
		CallerID:  res.CallerID,
		WinnerID:  res.WinnerID,
		Call:      string(res.Call),
		Scores:    make(map[string]int, len(res.Players)),
		Points:    make(map[string]int, len(res.Players)),
		Timestamp: time.Now().Unix(),
	}
	for _, line := range res.Players {
		rec.Scores[line.PlayerID.String()] = line.Score
		rec.Points[line.PlayerID.String()] = line.Points
	}
	return rec
}

// Enabled reports whether a Redis connection is configured.
func Enabled() bool {
	return Rdb != nil
}

// Connect initializes the global Redis client from the environment:
//   - REDIS_ADDR (empty => redis disabled)
//   - REDIS_DB (optional, default 0)
func Connect() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// PublishRoundResult serializes the record and pushes it onto the queue.
func PublishRoundResult(ctx context.Context, rec RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}

	queueName := getEnv("YANIV_RESULTS_QUEUE", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
