// Package fred retrieves monetary aggregates from the St. Louis Fed FRED API.
//
// Client is a rate-limited HTTP client for series/observations that retries
// 429 and 5xx answers with exponential backoff. Cache keeps fetched
// observations in SQLite and CachedFetcher puts the two together:
//
//	cache, err := fred.OpenCache(ctx, "~/.cache/moneysupply/observations.db")
//	f := fred.NewCachedFetcher(fred.NewClient(apiKey), cache)
//	series, err := fred.FetchAll(ctx, f, []fred.SeriesRequest{{Name: "M2", ID: "M2SL"}}, start, time.Time{}, nil)
//
// Values FRED reports as "." are returned as NaN.
package fred
