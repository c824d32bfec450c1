package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sartorproj/moneysupply/pipeline"
)

var (
	accentColor  = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true)
)

// Text writes a human-readable summary of report.
func Text(w io.Writer, report *pipeline.Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Money supply trend report"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("run %s  %d rows  %s .. %s",
		report.RunID, report.Rows, date(report.First), date(report.Last))))
	b.WriteString("\n")

	for _, sr := range report.Series {
		writeSeries(&b, report, sr)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSeries(b *strings.Builder, report *pipeline.Report, sr *pipeline.SeriesReport) {
	b.WriteString(sectionStyle.Render(sr.Name))
	b.WriteString("\n")

	if sr.Trend != nil && len(sr.Trend.Fits()) > 0 {
		b.WriteString(headerStyle.Render(fmt.Sprintf("  %-7s %12s %12s %9s %9s %9s %7s",
			"fit", "intercept", "slope", "t(b)", "R²", "DW", "LB p")))
		b.WriteString("\n")
		for _, f := range sr.Trend.Fits() {
			dw, lbp := math.NaN(), math.NaN()
			if f.Diagnostics != nil {
				dw = f.Diagnostics.DurbinWatson
				if f.Diagnostics.LjungBox != nil {
					lbp = f.Diagnostics.LjungBox.PValue
				}
			}
			fmt.Fprintf(b, "  %-7s %12s %12s %9s %9s %9s %7s\n",
				f.Variant, num(f.Intercept, 6), num(f.Slope, 6), num(f.SlopeT, 2),
				num(f.RSquared, 4), num(dw, 3), num(lbp, 3))
		}
		if r := sr.Trend.Return; r != nil {
			fmt.Fprintf(b, "  next-month log growth %s, annualized %s\n",
				pct(r.Intercept), pct(r.AnnualizedGrowth()))
		}
	}

	if len(sr.Exceedances) > 0 {
		window := "full sample"
		if !report.WindowStart.IsZero() || !report.WindowEnd.IsZero() {
			window = fmt.Sprintf("%s .. %s", date(report.WindowStart), date(report.WindowEnd))
		}
		for _, e := range sr.Exceedances {
			line := fmt.Sprintf("  z > %g: %d of %d months, %d in %s",
				e.Threshold, e.Total, len(sr.ZScores), e.InWindow, window)
			if e.Total > 0 {
				line = warningStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if g := sr.Growth; g != nil {
		fmt.Fprintf(b, "  %s -> %s: %s -> %s, growth %s of start, %s of end\n",
			date(sr.SummaryStart), date(sr.SummaryEnd),
			num(g.Start, 1), num(g.End, 1),
			ratio(g.OfStart), ratio(g.OfEnd))
	}

	for _, err := range sr.Errors {
		b.WriteString(errorStyle.Render("  error: " + err.Error()))
		b.WriteString("\n")
	}
}

func num(v float64, places int) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.*f", places, v)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", 100*v)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
