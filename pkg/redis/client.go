package redis

import (
	"context"
	"fmt"
	"time"

	v9 "github.com/redis/go-redis/v9"

	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

// Nil is returned by Get when the key does not exist.
var Nil = v9.Nil

type client struct {
	logger  logger.Interface
	config  *Config
	cmdable v9.Cmdable
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger logger.Interface, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewTracer("redis config is nil").WithCode(errors.RedisConfigError)
	}
	if len(c.config.Addrs) == 0 {
		return errors.NewTracer("redis addresses are empty").WithCode(errors.RedisConfigError)
	}

	switch c.config.Mode {
	case Standalone:
		c.cmdable = v9.NewClient(&v9.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		c.cmdable = v9.NewClusterClient(&v9.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	default:
		return errors.NewTracer(fmt.Sprintf("unsupported redis mode %q", c.config.Mode)).WithCode(errors.RedisConfigError)
	}

	if err := c.Ping(ctx); err != nil {
		return errors.TracerFromError(err).WithCode(errors.RedisConnectionError)
	}

	c.logger.Info("redis connected", logger.NewField("addrs", c.config.Addrs), logger.NewField("mode", c.config.Mode))
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	switch cl := c.cmdable.(type) {
	case *v9.Client:
		return cl.Close()
	case *v9.ClusterClient:
		return cl.Close()
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	return c.cmdable.Ping(ctx).Err()
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.cmdable.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.cmdable.Set(ctx, key, value, expiration).Err()
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.cmdable.Del(ctx, keys...).Result()
}
