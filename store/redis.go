package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wippyai/variant/container"
	"github.com/wippyai/variant/errors"
)

const backendRedis = "redis"

// RedisConfig configures a Redis store.
type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	Prefix      string        `yaml:"prefix"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	TTL         time.Duration `yaml:"ttl"` // 0 keeps keys forever
}

// Redis is a Store on a Redis server. Keys are namespaced with Prefix.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	opts   options
}

var _ Store = (*Redis)(nil)

// OpenRedis connects to cfg.Addr and pings it.
func OpenRedis(ctx context.Context, cfg RedisConfig, opts ...Option) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.InvalidInput(errors.PhaseStore, "redis address must not be empty")
	}

	ropts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.DialTimeout > 0 {
		ropts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, backendError(backendRedis, "ping", err)
	}

	s := NewRedis(client, cfg.Prefix, opts...)
	s.ttl = cfg.TTL
	s.opts.log.Info("redis store connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.String("prefix", cfg.Prefix))
	return s, nil
}

// NewRedis wraps an existing client. Close closes the client.
func NewRedis(client *redis.Client, prefix string, opts ...Option) *Redis {
	return &Redis{client: client, prefix: prefix, opts: buildOptions(opts)}
}

func (s *Redis) key(k string) string {
	return s.prefix + k
}

// Put stores c under key.
func (s *Redis) Put(ctx context.Context, key string, c container.Container) (err error) {
	defer func() { s.opts.observe(backendRedis, "put", err) }()

	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkContainer(c); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), frame(c, s.opts.compress), s.ttl).Err(); err != nil {
		return backendError(backendRedis, "put", err)
	}
	s.opts.written(len(c))
	return nil
}

// Get returns the container stored under key.
func (s *Redis) Get(ctx context.Context, key string) (c container.Container, err error) {
	defer func() { s.opts.observe(backendRedis, "get", err) }()

	if err := checkKey(key); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, backendError(backendRedis, "get", err)
	}
	return unframe(raw)
}

// Delete removes key.
func (s *Redis) Delete(ctx context.Context, key string) (err error) {
	defer func() { s.opts.observe(backendRedis, "delete", err) }()

	if err := checkKey(key); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return backendError(backendRedis, "delete", err)
	}
	if n == 0 {
		return notFound(key)
	}
	return nil
}

// Close closes the underlying client.
func (s *Redis) Close() error {
	if err := s.client.Close(); err != nil {
		return backendError(backendRedis, "close", err)
	}
	return nil
}
