package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/earnalert/internal/contracts"
	"github.com/wonny/earnalert/pkg/logger"
	"github.com/wonny/earnalert/pkg/redis"
)

const hotCacheKey = "sp500"

// ConstituentsFetcher pulls the fresh constituent list from the data vendor
type ConstituentsFetcher interface {
	Constituents(ctx context.Context) ([]string, error)
}

// symbolStore is the durable cache behind the provider
type symbolStore interface {
	Get(ctx context.Context) ([]string, time.Time, error)
	Replace(ctx context.Context, symbols []string) error
}

// Provider serves the current universe as a timestamped snapshot. Lookup
// order: Redis hot cache, symbols_cache table within its TTL, then a fresh
// vendor fetch. A failed fetch falls back to the stale DB cache rather than
// emptying the universe.
type Provider struct {
	store   symbolStore
	fetcher ConstituentsFetcher
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
}

// NewProvider creates a universe provider
func NewProvider(store symbolStore, fetcher ConstituentsFetcher, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		store:   store,
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  log,
	}
}

var _ contracts.UniverseProvider = (*Provider)(nil)

// Current returns the universe snapshot, refreshing it when stale
func (p *Provider) Current(ctx context.Context) (*contracts.UniverseSnapshot, error) {
	if p.cache != nil {
		var snapshot contracts.UniverseSnapshot
		found, err := p.cache.Get(ctx, hotCacheKey, &snapshot)
		if err != nil {
			p.logger.WithError(err).Warn("Universe hot cache read failed")
		}
		if found && time.Since(snapshot.UpdatedAt) < p.ttl && len(snapshot.Symbols) > 0 {
			return &snapshot, nil
		}
	}

	cached, cachedAt, err := p.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read universe cache: %w", err)
	}

	if len(cached) > 0 && time.Since(cachedAt) < p.ttl {
		p.logger.WithField("symbols", len(cached)).Debug("Using cached universe")
		snapshot := &contracts.UniverseSnapshot{Symbols: cached, UpdatedAt: cachedAt}
		p.warmHotCache(ctx, snapshot)
		return snapshot, nil
	}

	fresh, err := p.fetcher.Constituents(ctx)
	if err != nil || len(fresh) == 0 {
		// Stale beats empty: keep scanning the last known universe.
		if len(cached) > 0 {
			p.logger.WithError(err).Warn("Universe fetch failed, using stale cache")
			return &contracts.UniverseSnapshot{Symbols: cached, UpdatedAt: cachedAt}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("fetch universe: %w", err)
		}
		return nil, fmt.Errorf("fetch universe: vendor returned no symbols")
	}

	if err := p.store.Replace(ctx, fresh); err != nil {
		return nil, fmt.Errorf("refresh universe cache: %w", err)
	}

	p.logger.WithField("symbols", len(fresh)).Info("Universe refreshed")

	snapshot := &contracts.UniverseSnapshot{Symbols: fresh, UpdatedAt: time.Now().UTC()}
	p.warmHotCache(ctx, snapshot)
	return snapshot, nil
}

func (p *Provider) warmHotCache(ctx context.Context, snapshot *contracts.UniverseSnapshot) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, hotCacheKey, snapshot, p.ttl); err != nil {
		p.logger.WithError(err).Warn("Universe hot cache write failed")
	}
}
