// internal/alert/redis_store.go
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/redis/go-redis/v9"
)

const alertKeyPrefix = "replenish:alert:"

// redisStore keeps alerts in redis with the TTL enforced by key expiry, so
// multiple engine instances share one alert view. Opt-in via config.
type redisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore connects to redis using the cache config. The connection is
// verified with a short ping before the store is returned.
func NewRedisStore(cfg config.CacheConfig) (Store, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisStore{client: client, now: time.Now}, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (s *redisStore) Save(ctx context.Context, alerts []*domain.Alert) error {
	now := s.now()

	existing, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, a := range alerts {
		for _, old := range existing {
			if old.ProductID == a.ProductID && !old.Resolved {
				pipe.Del(ctx, alertKeyPrefix+old.ID)
			}
		}

		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode alert %s: %w", a.ID, err)
		}

		ttl := a.ExpiresAt.Sub(now)
		if ttl <= 0 {
			continue
		}
		pipe.Set(ctx, alertKeyPrefix+a.ID, payload, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save alerts: %w", err)
	}

	return nil
}

func (s *redisStore) List(ctx context.Context, unresolvedOnly bool) ([]*domain.Alert, error) {
	alerts, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if unresolvedOnly && a.Resolved {
			continue
		}
		out = append(out, a)
	}

	SortByPriority(out)
	return out, nil
}

func (s *redisStore) Resolve(ctx context.Context, alertID string) error {
	key := alertKeyPrefix + alertID

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return &domain.NotFoundError{Entity: "alert", Key: alertID}
	}
	if err != nil {
		return fmt.Errorf("redis get alert: %w", err)
	}

	var a domain.Alert
	if err := json.Unmarshal(payload, &a); err != nil {
		return fmt.Errorf("decode alert %s: %w", alertID, err)
	}

	now := s.now()
	a.Resolved = true
	a.ResolvedAt = &now

	return s.update(ctx, &a, now)
}

func (s *redisStore) ResolveByProduct(ctx context.Context, productID int64) (int, error) {
	alerts, err := s.loadAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var n int
	for _, a := range alerts {
		if a.ProductID != productID || a.Resolved {
			continue
		}
		a.Resolved = true
		a.ResolvedAt = &now
		if err := s.update(ctx, a, now); err != nil {
			return n, err
		}
		n++
	}

	return n, nil
}

func (s *redisStore) update(ctx context.Context, a *domain.Alert, now time.Time) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode alert %s: %w", a.ID, err)
	}

	ttl := a.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return s.client.Del(ctx, alertKeyPrefix+a.ID).Err()
	}

	if err := s.client.Set(ctx, alertKeyPrefix+a.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set alert: %w", err)
	}
	return nil
}

func (s *redisStore) loadAll(ctx context.Context) ([]*domain.Alert, error) {
	var (
		cursor uint64
		alerts []*domain.Alert
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, alertKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan alerts: %w", err)
		}

		for _, key := range keys {
			payload, err := s.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis get %s: %w", key, err)
			}

			var a domain.Alert
			if err := json.Unmarshal(payload, &a); err != nil {
				return nil, fmt.Errorf("decode alert at %s: %w", key, err)
			}
			alerts = append(alerts, &a)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return alerts, nil
}
