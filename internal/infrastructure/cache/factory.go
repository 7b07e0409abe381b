package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrRedisDisabled is returned when Redis is turned off in configuration
var ErrRedisDisabled = errors.New("redis is disabled")

// StoreFactory creates the view cache and the session revocation list.
// Both share one Redis client when Redis is reachable, and fall back to
// in-memory implementations otherwise.
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	once      sync.Once
	client    *redis.Client
	clientErr error
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Client returns the shared Redis client, connecting on first use
func (f *StoreFactory) Client(ctx context.Context) (*redis.Client, error) {
	f.once.Do(func() {
		if !f.redisConfig.Enabled {
			f.clientErr = ErrRedisDisabled
			return
		}
		f.client, f.clientErr = NewRedisClient(ctx, f.redisConfig)
	})
	return f.client, f.clientErr
}

// CreateViewCache creates a Redis view cache, or an in-memory one when Redis is unavailable
func (f *StoreFactory) CreateViewCache(ctx context.Context) (shared.ViewCache, error) {
	client, err := f.Client(ctx)
	if err == nil {
		f.logger.Info("using Redis view cache")
		return NewRedisViewCache(client, defaultViewKeyPrefix), nil
	}
	if err := f.fallback("view cache", err); err != nil {
		return nil, err
	}
	return NewInMemoryViewCache(), nil
}

// CreateSessionRevocation creates a Redis revocation list, or an in-memory one when Redis is unavailable
func (f *StoreFactory) CreateSessionRevocation(ctx context.Context) (shared.SessionRevocation, error) {
	client, err := f.Client(ctx)
	if err == nil {
		f.logger.Info("using Redis session revocation list")
		return NewRedisSessionRevocation(client), nil
	}
	if err := f.fallback("session revocation list", err); err != nil {
		return nil, err
	}
	return NewInMemorySessionRevocation(), nil
}

func (f *StoreFactory) fallback(store string, cause error) error {
	if !f.allowInMemoryFallback {
		return fmt.Errorf("redis required for %s but unavailable: %w", store, cause)
	}
	if errors.Is(cause, ErrRedisDisabled) {
		f.logger.Info("Redis disabled, using in-memory "+store)
		return nil
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory "+store+". "+
		"State is not shared between instances.",
		zap.Error(cause),
	)
	return nil
}

// Close closes the shared Redis client if one was opened
func (f *StoreFactory) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
