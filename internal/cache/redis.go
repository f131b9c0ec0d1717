package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const (
	presenceKey       = "presence:online"
	revokedTokenKeyFn = "auth:revoked:%s"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Addr is host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisClientInterface is the subset of *redis.Client the service uses.
type RedisClientInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	Close() error
}

// RedisService keeps chat presence and the logout denylist.
type RedisService struct {
	client RedisClientInterface
}

// NewRedisService wraps an existing client. Tests pass a mock here.
func NewRedisService(client RedisClientInterface) *RedisService {
	return &RedisService{client: client}
}

// Connect dials Redis and verifies the connection. With instrumented set the
// client carries the OpenTelemetry tracing hook.
func Connect(ctx context.Context, config RedisConfig, instrumented bool) (*RedisService, error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation":       "redis_connection",
		"service":         "cache",
		"addr":            config.Addr(),
		"db":              config.DB,
		"pool_size":       config.PoolSize,
		"instrumentation": instrumented,
	})

	logger.Info("Establishing Redis connection")

	client := redis.NewClient(&redis.Options{
		Addr:       config.Addr(),
		Password:   config.Password,
		DB:         config.DB,
		PoolSize:   config.PoolSize,
		MaxRetries: 3,
	})
	if instrumented {
		telemetry.InstrumentRedisClient(client)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.WithError(err).Error("Failed to connect to Redis")
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connected successfully")
	return NewRedisService(client), nil
}

// SetOnline marks a user as connected to chat.
func (r *RedisService) SetOnline(ctx context.Context, userID string) error {
	if err := r.client.SAdd(ctx, presenceKey, userID).Err(); err != nil {
		r.logError(ctx, "redis_set_online", userID, err)
		return fmt.Errorf("failed to mark %s online: %w", userID, err)
	}
	return nil
}

// SetOffline removes a user from the online set.
func (r *RedisService) SetOffline(ctx context.Context, userID string) error {
	if err := r.client.SRem(ctx, presenceKey, userID).Err(); err != nil {
		r.logError(ctx, "redis_set_offline", userID, err)
		return fmt.Errorf("failed to mark %s offline: %w", userID, err)
	}
	return nil
}

func (r *RedisService) IsOnline(ctx context.Context, userID string) (bool, error) {
	online, err := r.client.SIsMember(ctx, presenceKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read presence for %s: %w", userID, err)
	}
	return online, nil
}

// RevokeToken denylists a token id until ttl elapses. A non-positive ttl means
// the token has already expired and nothing is stored.
func (r *RedisService) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, fmt.Sprintf(revokedTokenKeyFn, tokenID), "1", ttl).Err(); err != nil {
		r.logError(ctx, "redis_revoke_token", "", err)
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, fmt.Sprintf(revokedTokenKeyFn, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// HealthCheck pings Redis.
func (r *RedisService) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisService) Close() error {
	err := r.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

func (r *RedisService) logError(ctx context.Context, operation, userID string, err error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation": operation,
		"service":   "cache",
	})
	if userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	logger.WithError(err).Error("Redis operation failed")
}
