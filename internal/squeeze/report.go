package squeeze

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"wsbtracker/pkg/model"
)

const reportRule = "===================================================================="

var reportTmpl = template.Must(template.New("squeeze").Funcs(template.FuncMap{
	"row":   row,
	"short": shortPct,
}).Parse(`{{.Rule}}
{{.Title}}
{{.Rule}}

>>> Stocks w/ Positive Price and Volume Trend
{{range .W.PriceAndVolumeUptrend}}{{row "Ticker: %-8s | %% Change: %-8.2f" .Symbol .PercentChange}}
{{end}}
>>> Stocks w/ Shorts >= 5%
{{range .W.HighShortShares}}{{row "Ticker: %-8s | Shorts %% Float: %-8.2f | %% Change: %-8.2f" .Symbol (short .) .PercentChange}}
{{end}}
>>> Stocks w/ Price Uptrend
{{range .W.PriceUptrend}}{{row "Ticker: %-8s | %% Change: %-8.2f" .Symbol .PercentChange}}
{{end}}
>>> Possible Great Stocks w/ Short Pain and 6-Day Price Uptrend
{{range .W.ShortPain}}{{row "Ticker: %-8s | Shorts Pain: %-8.2f | %% Change: %-8.2f" .Symbol .ShortsPain .PercentChange}}
{{end}}
>>> Perfect Stocks w/ Positive Price Trend, Volume Trend, and High Short Shares Float
{{range .W.Perfect}}{{row "Ticker: %-8s | %% Change: %-8.2f" .Symbol .PercentChange}}
{{end}}
>>> Top 10 Stocks Experiencing Greatest Pain (Short Pain)
{{range .W.GreatestPain}}{{row "Ticker: %-8s | Shorts Pain: %-8.2f | %% Change: %-8.2f" .Symbol .ShortsPain .PercentChange}}
{{end}}`))

// Report renders the watchlist as the plain-text short squeeze report
func Report(w *Watchlist) (string, error) {
	var out bytes.Buffer
	err := reportTmpl.Execute(&out, struct {
		Rule  string
		Title string
		W     *Watchlist
	}{reportRule, center("SHORT SQUEEZE REPORT", len(reportRule)), w})
	if err != nil {
		return "", fmt.Errorf("rendering squeeze report: %w", err)
	}
	return out.String(), nil
}

func row(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), " ")
}

func shortPct(c model.SqueezeCandidate) float64 {
	if c.ShortPctFloat == nil {
		return 0
	}
	return *c.ShortPctFloat
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
