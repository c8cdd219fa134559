package session

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/redis/go-redis/v9"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
)

var (
	ErrLoadingRedisHost     = errors.New("error loading session redis host")
	ErrLoadingRedisUsername = errors.New("error loading session redis username")
	ErrLoadingRedisPassword = errors.New("error loading session redis password")
	ErrLoadingJWTSecret     = errors.New("error loading session jwt secret")
)

// NewStoreFromConfig wires the redis-backed store from the sessions config.
// Secure marks the cookie; development over plain HTTP passes false.
func NewStoreFromConfig(cfg config.Sessions, secure bool) (*Store, error) {
	kv, err := NewRedisKV(cfg.Redis)
	if err != nil {
		return nil, err
	}

	secret, err := commoncfg.LoadValueFromSourceRef(cfg.JWTSecret)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingJWTSecret, err)
	}

	return NewStore(kv, []byte(secret), cfg.CookieName, cfg.TTL, secure), nil
}

type redisKV struct {
	client *redis.Client
}

// NewRedisKV builds the production KV from the sessions redis config.
func NewRedisKV(cfg config.Redis) (KV, error) {
	host, err := commoncfg.LoadValueFromSourceRef(cfg.Host)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingRedisHost, err)
	}

	username := ""
	if cfg.Username.Source != "" {
		value, err := commoncfg.LoadValueFromSourceRef(cfg.Username)
		if err != nil {
			return nil, errs.Wrap(ErrLoadingRedisUsername, err)
		}

		username = string(value)
	}

	password := ""
	if cfg.Password.Source != "" {
		value, err := commoncfg.LoadValueFromSourceRef(cfg.Password)
		if err != nil {
			return nil, errs.Wrap(ErrLoadingRedisPassword, err)
		}

		password = string(value)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(string(host), cfg.Port),
		Username: username,
		Password: password,
	})

	return &redisKV{client: client}, nil
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}

	return value, err
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
