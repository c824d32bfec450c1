package fred

import (
	"context"
	"fmt"
	"time"

	"github.com/sartorproj/moneysupply/timeseries"
)

// SeriesRequest names a FRED series and the table column it becomes.
type SeriesRequest struct {
	Name string
	ID   string
}

// FetchAll fetches each request in order and returns one named series per
// request. done, if non-nil, is called after every completed request.
func FetchAll(ctx context.Context, f Fetcher, reqs []SeriesRequest, start, end time.Time, done func(SeriesRequest)) ([]*timeseries.Series, error) {
	out := make([]*timeseries.Series, 0, len(reqs))
	for _, req := range reqs {
		obs, err := f.Observations(ctx, req.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", req.Name, req.ID, err)
		}
		out = append(out, &timeseries.Series{Name: req.Name, Observations: obs})
		if done != nil {
			done(req)
		}
	}
	return out, nil
}
