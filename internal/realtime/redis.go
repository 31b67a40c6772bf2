package realtime

import (
	"alcyxob/fitcoach/internal/config"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	presenceKeyPrefix     = "presence:"
	notificationKeyPrefix = "notifications:"
)

// NewRedis creates a new Redis client from config.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	logger.Info("redis client created", zap.String("addr", cfg.Addr))
	return rdb
}

// PresenceStore keeps a short-lived marker per online user.
type PresenceStore interface {
	// Touch marks userID online for ttl.
	Touch(ctx context.Context, userID string, ttl time.Duration) error
	Online(ctx context.Context, userID string) (bool, error)
	Clear(ctx context.Context, userID string) error
}

type redisPresence struct {
	rdb *redis.Client
}

// NewRedisPresence returns a PresenceStore backed by expiring keys.
func NewRedisPresence(rdb *redis.Client) PresenceStore {
	return &redisPresence{rdb: rdb}
}

func (p *redisPresence) Touch(ctx context.Context, userID string, ttl time.Duration) error {
	return p.rdb.Set(ctx, presenceKeyPrefix+userID, time.Now().UTC().Unix(), ttl).Err()
}

func (p *redisPresence) Online(ctx context.Context, userID string) (bool, error) {
	n, err := p.rdb.Exists(ctx, presenceKeyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *redisPresence) Clear(ctx context.Context, userID string) error {
	return p.rdb.Del(ctx, presenceKeyPrefix+userID).Err()
}

// Event is a change notification delivered to one user.
type Event struct {
	Type string      `json:"type"` // e.g. "suggestion_created", "task_scheduled"
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// Publisher delivers events to a user's notification channel.
type Publisher interface {
	Publish(ctx context.Context, userID string, event Event) error
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher using Redis pub/sub channels.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, userID string, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, notificationKeyPrefix+userID, payload).Err()
}

// ChannelFor returns the pub/sub channel name for a user.
func ChannelFor(userID string) string {
	return notificationKeyPrefix + userID
}
