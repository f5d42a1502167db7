package presence

import (
	"context"
	"time"

	"quickchat/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const onlineSetKey = "online_users"

// RedisConfig holds connection settings for the presence mirror.
type RedisConfig struct {
	Addr         string `env:"REDIS_ADDR" envDefault:""`
	Password     string `env:"REDIS_PASSWORD" envDefault:""`
	Database     int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
}

// LoadRedisConfig reads the Redis configuration from the environment.
// An empty Addr means the mirror is disabled.
func LoadRedisConfig() (*RedisConfig, error) {
	cfg := &RedisConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewRedisClient creates a Redis client for the presence mirror.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// RedisStore mirrors the online-user set into a Redis set so other
// processes can observe presence. Mirror failures are non-fatal; the hub
// only logs them.
type RedisStore struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisStore creates a Redis-backed presence mirror.
func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		log:    log.WithComponent("presence_redis"),
	}
}

// Add records the user in the mirrored online set.
func (s *RedisStore) Add(ctx context.Context, userID string) error {
	if err := s.client.SAdd(ctx, onlineSetKey, userID).Err(); err != nil {
		return err
	}
	s.log.Debug("mirrored presence", zap.String("userID", userID))
	return nil
}

// Remove clears the user from the mirrored online set.
func (s *RedisStore) Remove(ctx context.Context, userID string) error {
	if err := s.client.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
		return err
	}
	s.log.Debug("cleared mirrored presence", zap.String("userID", userID))
	return nil
}

// Members returns the mirrored online set.
func (s *RedisStore) Members(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, onlineSetKey).Result()
}

var _ Store = (*RedisStore)(nil)
