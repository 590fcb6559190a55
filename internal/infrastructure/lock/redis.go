// Package lock serializa operaciones por sede. RedisLocker coordina varias instancias de la API;
// LocalLocker sirve para una sola instancia y para tests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/revisiones-api/internal/domain"
)

const keyPrefix = "lock:location:"

// RedisLocker obtiene locks con TTL en Redis. Si el proceso muere el lock expira solo.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
	log     zerolog.Logger
}

// NewRedisLocker construye el locker sobre un cliente go-redis ya conectado.
// retries es el número de reintentos antes de responder conflicto.
func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration, retries int, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     ttl,
		retries: retries,
		backoff: 100 * time.Millisecond,
		log:     log,
	}
}

// Acquire bloquea la sede. Devuelve domain.ErrConflict si otra operación la retiene tras los reintentos.
func (l *RedisLocker) Acquire(ctx context.Context, locationID string) (func(), error) {
	key := keyPrefix + locationID
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn().Str("key", key).Msg("sede ocupada por otra operación")
		return nil, fmt.Errorf("sede %s en proceso: %w", locationID, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return func() {
		// Context propio: el de la petición puede estar cancelado.
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Error().Err(err).Str("key", key).Msg("error liberando lock")
		}
	}, nil
}

// Connect abre un cliente Redis y verifica la conexión con PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}
