// Package dedup drops webhook redeliveries. Telegram retries an update
// until it sees a 2xx, so the same update_id can arrive more than once.
package dedup

import (
	"context"
	"fmt"
	"time"

	"cerulean_ambassador_bot/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "update:"
)

type Config struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GuardI interface {
	FirstDelivery(ctx context.Context, updateID int) (bool, error)
}

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Guard remembers update ids in Redis for ttl.
type Guard struct {
	rdb setNXer
	ttl time.Duration
}

func NewGuard(rdb setNXer, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{rdb: rdb, ttl: ttl}
}

// Connect opens the Redis client and checks it answers.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Logger().Info("connected to redis", zap.String("addr", cfg.Addr))
	return rdb, nil
}

// FirstDelivery reports whether updateID is seen for the first time. On a
// Redis failure the update is treated as new and the error is returned for
// logging.
func (g *Guard) FirstDelivery(ctx context.Context, updateID int) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, Key(updateID), 1, g.ttl).Result()
	if err != nil {
		return true, fmt.Errorf("failed to mark update %d: %w", updateID, err)
	}
	return ok, nil
}

func Key(updateID int) string {
	return fmt.Sprintf("%s%d", keyPrefix, updateID)
}

// Disabled lets every update through.
type Disabled struct{}

func (Disabled) FirstDelivery(context.Context, int) (bool, error) {
	return true, nil
}
