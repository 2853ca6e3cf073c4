package markets

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/api"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

const cacheTTL = 30 * time.Second

// Client lê mercados e times da API externa, com cache read-through.
type Client struct {
	api   *api.Client
	cache *Cache
	log   *zap.Logger
}

func New(apiClient *api.Client, cache *Cache, log *zap.Logger) *Client {
	return &Client{api: apiClient, cache: cache, log: log}
}

func (c *Client) Matches(ctx context.Context) ([]capi.MatchData, error) {
	var cached []capi.MatchData
	if ok, err := c.cache.Get(ctx, "markets", &cached); ok && err == nil {
		return cached, nil
	} else if err != nil {
		c.log.Warn("markets cache read failed", zap.Error(err))
	}

	var out []capi.MatchData
	if err := c.api.Get(ctx, "/markets", &out); err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, "markets", out, cacheTTL); err != nil {
		c.log.Warn("markets cache write failed", zap.Error(err))
	}
	return out, nil
}

func (c *Client) Teams(ctx context.Context) ([]capi.TeamData, error) {
	var cached []capi.TeamData
	if ok, err := c.cache.Get(ctx, "teams", &cached); ok && err == nil {
		return cached, nil
	} else if err != nil {
		c.log.Warn("teams cache read failed", zap.Error(err))
	}

	var out []capi.TeamData
	if err := c.api.Get(ctx, "/teams", &out); err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, "teams", out, cacheTTL); err != nil {
		c.log.Warn("teams cache write failed", zap.Error(err))
	}
	return out, nil
}
