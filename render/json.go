package render

import (
	"encoding/json"
	"io"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/sartorproj/moneysupply/pipeline"
	"github.com/sartorproj/moneysupply/trend"
)

// Float marshals NaN and infinities as null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type reportJSON struct {
	RunID       string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Rows        int          `json:"rows"`
	First       string       `json:"first"`
	Last        string       `json:"last"`
	Thresholds  []float64    `json:"thresholds"`
	Window      windowJSON   `json:"window"`
	Series      []seriesJSON `json:"series"`
}

type windowJSON struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type seriesJSON struct {
	Name             string           `json:"name"`
	Fits             []fitJSON        `json:"fits"`
	AnnualizedGrowth *Float           `json:"annualized_growth,omitempty"`
	Exceedances      []exceedanceJSON `json:"exceedances,omitempty"`
	Outliers         []outlierJSON    `json:"outliers,omitempty"`
	Growth           *growthJSON      `json:"growth,omitempty"`
	Errors           []string         `json:"errors,omitempty"`
}

type fitJSON struct {
	Variant      string  `json:"variant"`
	Column       string  `json:"column"`
	Intercept    Float   `json:"intercept"`
	Slope        Float   `json:"slope"`
	InterceptSE  Float   `json:"intercept_se"`
	SlopeSE      Float   `json:"slope_se"`
	InterceptT   Float   `json:"intercept_t"`
	SlopeT       Float   `json:"slope_t"`
	InterceptP   Float   `json:"intercept_p"`
	SlopeP       Float   `json:"slope_p"`
	RSquared     Float   `json:"r_squared"`
	ResidualSE   Float   `json:"residual_se"`
	NObs         int     `json:"n_obs"`
	DF           int     `json:"df"`
	DurbinWatson Float   `json:"durbin_watson"`
	LjungBoxQ    *Float  `json:"ljung_box_q,omitempty"`
	LjungBoxP    *Float  `json:"ljung_box_p,omitempty"`
	ACF          []Float `json:"acf,omitempty"`
	PACF         []Float `json:"pacf,omitempty"`
	ACFBound     Float   `json:"acf_bound"`
}

type exceedanceJSON struct {
	Threshold float64 `json:"threshold"`
	Total     int     `json:"total"`
	InWindow  int     `json:"in_window"`
}

type outlierJSON struct {
	Date string `json:"date"`
	Z    Float  `json:"z"`
}

type growthJSON struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Start     Float   `json:"start"`
	End       Float   `json:"end"`
	OfStart   float64 `json:"of_start"`
	OfEnd     float64 `json:"of_end"`
}

// JSON writes report as indented JSON.
func JSON(w io.Writer, report *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(report))
}

func toJSON(r *pipeline.Report) reportJSON {
	out := reportJSON{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Rows:        r.Rows,
		First:       date(r.First),
		Last:        date(r.Last),
		Thresholds:  r.Thresholds,
		Window:      windowJSON{Start: date(r.WindowStart), End: date(r.WindowEnd)},
	}

	for _, sr := range r.Series {
		s := seriesJSON{Name: sr.Name, Fits: []fitJSON{}}
		if sr.Trend != nil {
			for _, f := range sr.Trend.Fits() {
				s.Fits = append(s.Fits, fitToJSON(f))
			}
			if sr.Trend.Return != nil {
				g := Float(sr.Trend.Return.AnnualizedGrowth())
				s.AnnualizedGrowth = &g
			}
		}
		for _, e := range sr.Exceedances {
			s.Exceedances = append(s.Exceedances, exceedanceJSON(e))
		}
		if len(r.Thresholds) > 0 {
			k := slices.Min(r.Thresholds)
			for i, z := range sr.ZScores {
				if z > k {
					s.Outliers = append(s.Outliers, outlierJSON{Date: date(sr.ZDates[i]), Z: Float(z)})
				}
			}
		}
		if sr.Growth != nil {
			s.Growth = &growthJSON{
				StartDate: date(sr.SummaryStart),
				EndDate:   date(sr.SummaryEnd),
				Start:     Float(sr.Growth.Start),
				End:       Float(sr.Growth.End),
				OfStart:   sr.Growth.OfStart,
				OfEnd:     sr.Growth.OfEnd,
			}
		}
		for _, err := range sr.Errors {
			s.Errors = append(s.Errors, err.Error())
		}
		out.Series = append(out.Series, s)
	}
	return out
}

func fitToJSON(f *trend.Fit) fitJSON {
	out := fitJSON{
		Variant:      string(f.Variant),
		Column:       f.Column,
		Intercept:    Float(f.Intercept),
		Slope:        Float(f.Slope),
		InterceptSE:  Float(f.InterceptSE),
		SlopeSE:      Float(f.SlopeSE),
		InterceptT:   Float(f.InterceptT),
		SlopeT:       Float(f.SlopeT),
		InterceptP:   Float(f.InterceptP),
		SlopeP:       Float(f.SlopeP),
		RSquared:     Float(f.RSquared),
		ResidualSE:   Float(f.ResidualSE),
		NObs:         f.NObs,
		DF:           f.DF,
		DurbinWatson: Float(math.NaN()),
		ACFBound:     Float(math.NaN()),
	}
	if d := f.Diagnostics; d != nil {
		out.DurbinWatson = Float(d.DurbinWatson)
		out.ACF = floats(d.ACF)
		out.PACF = floats(d.PACF)
		out.ACFBound = Float(d.ACFBound)
		if d.LjungBox != nil {
			q, p := Float(d.LjungBox.Statistic), Float(d.LjungBox.PValue)
			out.LjungBoxQ, out.LjungBoxP = &q, &p
		}
	}
	return out
}

func floats(v []float64) []Float {
	if v == nil {
		return nil
	}
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
