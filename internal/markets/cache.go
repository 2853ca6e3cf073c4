package markets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
)

// Cache guarda listas de mercados/times no Redis por um TTL curto, pra
// não remartelar a API a cada render. Com R == nil vira bypass e o
// storefront segue funcionando sem Redis.
type Cache struct{ R *redis.Client }

func NewCache(r *redis.Client) *Cache { return &Cache{R: r} }

func key(name string) string { return "storefront:" + name }

func (c *Cache) Get(ctx context.Context, name string, dst any) (bool, error) {
	if c == nil || c.R == nil {
		metrics.CacheHits.WithLabelValues("bypass").Inc()
		return false, nil
	}
	b, err := c.R.Get(ctx, key(name)).Bytes()
	if err == redis.Nil {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}
	metrics.CacheHits.WithLabelValues("hit").Inc()
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) Set(ctx context.Context, name string, v any, ttl time.Duration) error {
	if c == nil || c.R == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, key(name), b, ttl).Err()
}
