package sentiment

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"

	"wsbtracker/pkg/model"
)

// LotSize is the number of shares the profit/loss report assumes per ticker
const LotSize = 100

// ApplyOpen records the session open price of each selected ticker.
// Tickers missing from opens keep a nil open.
func ApplyOpen(top []model.TopTicker, opens map[string]float64) {
	for i := range top {
		if p, ok := opens[top[i].Symbol]; ok {
			top[i].Open = model.Float(p)
		}
	}
}

// ApplyClose records close prices and the open-to-close move. Tickers with
// no open price get neither.
func ApplyClose(top []model.TopTicker, closes map[string]float64) {
	for i := range top {
		t := &top[i]
		if t.Open == nil {
			t.Close, t.PriceChangePct = nil, nil
			continue
		}
		c, ok := closes[t.Symbol]
		if !ok {
			continue
		}
		t.Close = model.Float(c)
		t.PriceChangePct = ChangePct(*t.Open, c)
	}
}

// ProfitLine is one ticker of the profit/loss report
type ProfitLine struct {
	Symbol string
	Cost   float64
	Value  float64
}

// ProfitLoss is the outcome of buying a lot of every top ticker at the open
// and valuing it at the close.
type ProfitLoss struct {
	Lines      []ProfitLine
	TotalCost  float64
	TotalValue float64
}

// Net is the total profit (negative for a loss)
func (p ProfitLoss) Net() float64 {
	return p.TotalValue - p.TotalCost
}

// ComputeProfitLoss prices a lot of each ticker that has both an open and a
// close price.
func ComputeProfitLoss(top []model.TopTicker) ProfitLoss {
	var pl ProfitLoss
	for _, t := range top {
		if t.Open == nil || t.Close == nil {
			continue
		}
		line := ProfitLine{
			Symbol: t.Symbol,
			Cost:   round2(*t.Open * LotSize),
			Value:  round2(*t.Close * LotSize),
		}
		pl.Lines = append(pl.Lines, line)
		pl.TotalCost += line.Cost
		pl.TotalValue += line.Value
	}
	pl.TotalCost = round2(pl.TotalCost)
	pl.TotalValue = round2(pl.TotalValue)
	return pl
}

const reportRule = "===================================================================="

var profitTmpl = template.Must(template.New("profit").Funcs(template.FuncMap{
	"row": func(format string, args ...any) string {
		return strings.TrimRight(fmt.Sprintf(format, args...), " ")
	},
	"sub": func(a, b float64) float64 { return a - b },
}).Parse(`{{.Rule}}
                       PROFIT / LOSS REPORT
{{.Rule}}

>>> Cost for {{.Lot}} shares at Market Open
{{range .P.Lines}}{{row "Ticker: %-8s | Open Price Cost (USD): $%-8.2f" .Symbol .Cost}}
{{end}}{{printf "Total Cost (USD): $%.2f" .P.TotalCost}}

>>> Value of {{.Lot}} shares at Market Close
{{range .P.Lines}}{{row "Ticker: %-8s | Close Price Value (USD): $%-8.2f" .Symbol .Value}}
{{end}}{{printf "Total Value (USD): $%.2f" .P.TotalValue}}

>>> Daily Profit/Loss from each stock ticker
{{range .P.Lines}}{{row "Ticker: %-8s | Profit/Loss (USD): $%-8.2f" .Symbol (sub .Value .Cost)}}
{{end}}
{{printf ">>> Total Daily Profit/Loss (USD): $%.2f" .P.Net}}
`))

// ProfitReport renders the plain-text profit/loss report
func ProfitReport(pl ProfitLoss) (string, error) {
	var out bytes.Buffer
	err := profitTmpl.Execute(&out, struct {
		Rule string
		Lot  int
		P    ProfitLoss
	}{reportRule, LotSize, pl})
	if err != nil {
		return "", fmt.Errorf("rendering profit report: %w", err)
	}
	return out.String(), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
