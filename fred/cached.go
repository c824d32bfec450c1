package fred

import (
	"context"
	"log/slog"
	"time"

	"github.com/sartorproj/moneysupply/timeseries"
)

// DefaultMaxAge bounds how long an open-ended fetch is served from cache.
// FRED publishes the monetary aggregates monthly.
const DefaultMaxAge = 24 * time.Hour

// CachedFetcher serves observations from a Cache when the cached fetch
// covers the requested range, and otherwise asks the wrapped Fetcher and
// stores the answer.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   *Cache
	// MaxAge expires open-ended fetches; zero means DefaultMaxAge.
	MaxAge time.Duration
	now    func() time.Time
}

// NewCachedFetcher wraps f with c.
func NewCachedFetcher(f Fetcher, c *Cache) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Cache: c, MaxAge: DefaultMaxAge, now: time.Now}
}

func (cf *CachedFetcher) Observations(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Observation, error) {
	logger := slog.Default().With("series_id", seriesID)

	last, err := cf.Cache.LastFetch(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if last != nil && last.Covers(start, end) && cf.fresh(last) {
		logger.Debug("Serving observations from cache", "fetched_at", last.FetchedAt)
		return cf.Cache.Get(ctx, seriesID, start, end)
	}

	obs, err := cf.Fetcher.Observations(ctx, seriesID, start, end)
	if err != nil {
		return nil, err
	}
	if err := cf.Cache.Put(ctx, seriesID, start, end, obs); err != nil {
		// A failed cache write is not fatal to the fetch.
		logger.Warn("Failed to cache observations", "error", err)
	}
	return obs, nil
}

func (cf *CachedFetcher) fresh(f *Fetch) bool {
	if !f.End.IsZero() {
		return true
	}
	maxAge := cf.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	now := time.Now
	if cf.now != nil {
		now = cf.now
	}
	return now().Sub(f.FetchedAt) < maxAge
}
