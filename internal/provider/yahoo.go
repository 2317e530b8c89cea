package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wsbtracker/internal/ratelimit"
	"wsbtracker/pkg/model"
)

const (
	YahooQuery1 = "https://query1.finance.yahoo.com"
	YahooQuery2 = "https://query2.finance.yahoo.com"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// YahooProvider implements the Provider interface for Yahoo Finance (unofficial API)
type YahooProvider struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	baseURL   string
	rateLimit int
	now       func() time.Time
}

// YahooOption configures a YahooProvider
type YahooOption func(*YahooProvider)

// WithBaseURL points the provider at another host (query2, or a test server)
func WithBaseURL(base string) YahooOption {
	return func(p *YahooProvider) { p.baseURL = strings.TrimRight(base, "/") }
}

// WithLimiter shares a rate limiter between providers hitting the same vendor
func WithLimiter(l *ratelimit.Limiter, perMinute int) YahooOption {
	return func(p *YahooProvider) {
		p.limiter = l
		p.rateLimit = perMinute
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) YahooOption {
	return func(p *YahooProvider) { p.client = c }
}

// NewYahooProvider creates a new Yahoo Finance provider
func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   ratelimit.NewLimiter("yahoo", 120),
		baseURL:   YahooQuery1,
		rateLimit: 120,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name including its host
func (p *YahooProvider) Name() string {
	if u, err := url.Parse(p.baseURL); err == nil && u.Host != "" {
		return "yahoo(" + strings.SplitN(u.Host, ".", 2)[0] + ")"
	}
	return "yahoo"
}

// IsAvailable always returns true (no API key needed)
func (p *YahooProvider) IsAvailable() bool {
	return true
}

// RateLimit returns the rate limit per minute
func (p *YahooProvider) RateLimit() int {
	return p.rateLimit
}

// chartResponse represents the v8 chart API response
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
				FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) value() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

// summaryResponse represents the v10 quoteSummary API response
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				RegularMarketOpen  rawValue `json:"regularMarketOpen"`
			} `json:"price"`
			SummaryDetail struct {
				PreviousClose   rawValue `json:"previousClose"`
				Open            rawValue `json:"open"`
				AverageVolume   rawValue `json:"averageVolume"`
				FiftyTwoWeekLow rawValue `json:"fiftyTwoWeekLow"`
				Beta            rawValue `json:"beta"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				ShortPercentOfFloat rawValue `json:"shortPercentOfFloat"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// get performs a rate limited GET and decodes the JSON body into out
func (p *YahooProvider) get(ctx context.Context, rawURL string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		p.limiter.SignalRateLimited()
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode >= 500:
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: true}
	case resp.StatusCode != http.StatusOK:
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	p.limiter.ResetBackoff()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decoding response: %w", err), Retryable: true}
	}
	return nil
}

func (p *YahooProvider) chart(ctx context.Context, symbol string, calendarDays int) (*chartResponse, error) {
	end := p.now()
	start := end.AddDate(0, 0, -calendarDays)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		p.baseURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	var data chartResponse
	if err := p.get(ctx, u, &data); err != nil {
		return nil, err
	}
	if data.Chart.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.Chart.Error.Description), Retryable: false}
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no data available for %s", symbol), Retryable: false}
	}
	return &data, nil
}

func candlesFromChart(data *chartResponse) []model.Candle {
	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quotes := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i := range result.Timestamp {
		if i >= len(quotes.Open) || i >= len(quotes.High) || i >= len(quotes.Low) || i >= len(quotes.Close) {
			continue
		}
		// null entries decode as zero
		if quotes.Close[i] == 0 {
			continue
		}

		var volume int64
		if i < len(quotes.Volume) {
			volume = quotes.Volume[i]
		}

		candles = append(candles, model.Candle{
			Time:   time.Unix(result.Timestamp[i], 0),
			Open:   quotes.Open[i],
			High:   quotes.High[i],
			Low:    quotes.Low[i],
			Close:  quotes.Close[i],
			Volume: volume,
		})
	}
	return candles
}

// GetDailyCandles fetches daily OHLCV data, oldest first
func (p *YahooProvider) GetDailyCandles(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	// calendar buffer for weekends and holidays
	calendarDays := days*3/2 + 7

	data, err := p.chart(ctx, symbol, calendarDays)
	if err != nil {
		return nil, err
	}

	candles := candlesFromChart(data)
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}
	return candles, nil
}

// GetQuote fetches the quote summary. When the summary endpoint refuses the
// request the quote is derived from the chart instead, without beta and
// short interest.
func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	q, err := p.summaryQuote(ctx, symbol)
	if err == nil {
		return q, nil
	}
	if !IsRetryable(err) || ctx.Err() != nil {
		return nil, err
	}

	q, chartErr := p.chartQuote(ctx, symbol)
	if chartErr != nil {
		return nil, err
	}
	return q, nil
}

func (p *YahooProvider) summaryQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,defaultKeyStatistics",
		p.baseURL, url.PathEscape(symbol))

	var data summaryResponse
	if err := p.get(ctx, u, &data); err != nil {
		return nil, err
	}
	if data.QuoteSummary.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.QuoteSummary.Error.Description), Retryable: false}
	}
	if len(data.QuoteSummary.Result) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no quote for %s", symbol), Retryable: false}
	}

	r := data.QuoteSummary.Result[0]
	q := &model.Quote{
		Symbol:          symbol,
		Price:           r.Price.RegularMarketPrice.value(),
		Open:            r.Price.RegularMarketOpen.value(),
		PreviousClose:   r.SummaryDetail.PreviousClose.value(),
		AverageVolume:   r.SummaryDetail.AverageVolume.value(),
		FiftyTwoWeekLow: r.SummaryDetail.FiftyTwoWeekLow.value(),
		Beta:            r.SummaryDetail.Beta.Raw,
	}
	if q.Open == 0 {
		q.Open = r.SummaryDetail.Open.value()
	}
	if sp := r.DefaultKeyStatistics.ShortPercentOfFloat.Raw; sp != nil {
		q.ShortPctFloat = model.Float(math.Round(*sp*100*1000) / 1000)
	}
	if q.Price == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no price for %s", symbol), Retryable: false}
	}
	return q, nil
}

func (p *YahooProvider) chartQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	data, err := p.chart(ctx, symbol, 92)
	if err != nil {
		return nil, err
	}
	meta := data.Chart.Result[0].Meta
	candles := candlesFromChart(data)
	if len(candles) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("no data available for %s", symbol), Retryable: false}
	}

	last := candles[len(candles)-1]
	q := &model.Quote{
		Symbol:          symbol,
		Price:           meta.RegularMarketPrice,
		Open:            last.Open,
		PreviousClose:   meta.PreviousClose,
		FiftyTwoWeekLow: meta.FiftyTwoWeekLow,
	}
	if q.Price == 0 {
		q.Price = last.Close
	}
	if q.PreviousClose == 0 && len(candles) > 1 {
		q.PreviousClose = candles[len(candles)-2].Close
	}

	var total float64
	for _, c := range candles {
		total += float64(c.Volume)
	}
	q.AverageVolume = total / float64(len(candles))
	return q, nil
}
