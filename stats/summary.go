package stats

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/sartorproj/moneysupply/timeseries"
)

// RatioPlaces is the number of decimal places growth ratios are rounded to.
const RatioPlaces = 4

// GrowthRatios compares two snapshots of a stock.
type GrowthRatios struct {
	Start float64
	End   float64
	// OfStart is (end - start) / start, growth relative to the starting stock.
	OfStart float64
	// OfEnd is (end - start) / end, the share of the ending stock created
	// during the period.
	OfEnd float64
}

// Growth returns both growth ratios, each rounded once, half away from zero,
// to RatioPlaces decimals.
func Growth(start, end float64) (GrowthRatios, error) {
	for _, v := range []float64{start, end} {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return GrowthRatios{}, &timeseries.DomainError{Op: "growth", Row: -1, Value: v}
		}
	}

	s := decimal.NewFromFloat(start)
	e := decimal.NewFromFloat(end)
	change := e.Sub(s)

	return GrowthRatios{
		Start:   start,
		End:     end,
		OfStart: change.DivRound(s, RatioPlaces).InexactFloat64(),
		OfEnd:   change.DivRound(e, RatioPlaces).InexactFloat64(),
	}, nil
}
