package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

const (
	defaultYahooBaseURL   = "https://query1.finance.yahoo.com"
	defaultYahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultYahooTimeout   = 30 * time.Second
)

var (
	periodRe   = regexp.MustCompile(`^(\d+(d|wk|mo|y)|ytd|max)$`)
	intervalRe = regexp.MustCompile(`^\d+(m|h|d|wk|mo)$`)
)

// fundamentalModules are the quoteSummary modules searched, in order, for each field
var fundamentalModules = []string{"summaryDetail", "defaultKeyStatistics", "financialData"}

// YahooClient fetches data from the public Yahoo Finance endpoints
type YahooClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// NewYahooClient creates a client; zero-valued config fields take defaults
func NewYahooClient(cfg Config) *YahooClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYahooBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultYahooUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultYahooTimeout
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}

	return &YahooClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

func (y *YahooClient) Name() string { return "yahoo" }

// yahooChart is the response structure from the v8 chart API
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []map[string]map[string]json.RawMessage `json:"result"`
		Error  *yahooError                             `json:"error"`
	} `json:"quoteSummary"`
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
	} `json:"quotes"`
}

// toFloat reads a nullable JSON number
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func at(values []interface{}, i int) (float64, bool) {
	if i >= len(values) {
		return 0, false
	}
	return toFloat(values[i])
}

// FetchSeries fetches an adjusted OHLCV series from the chart API. Rows with
// any missing price are dropped.
func (y *YahooClient) FetchSeries(ctx context.Context, symbol, period, interval string) (*models.PriceSeries, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, models.ErrInvalidSymbol
	}
	if !periodRe.MatchString(period) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	if !intervalRe.MatchString(interval) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), q.Encode())

	start := time.Now()
	var chart yahooChart
	err := y.getJSON(ctx, u, &chart)
	if err != nil {
		observeFetch("yahoo", "series", start, err)
		return nil, err
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			err = fmt.Errorf("%s: %w", symbol, models.ErrNoData)
		} else {
			err = fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
		}
		observeFetch("yahoo", "series", start, err)
		return nil, err
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		err = fmt.Errorf("%s: %w", symbol, models.ErrNoData)
		observeFetch("yahoo", "series", start, err)
		return nil, err
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		vol, ok := at(quote.Volume, i)
		if !ok {
			continue
		}

		if a, ok := at(adj, i); ok && c != 0 {
			factor := a / c
			o, h, l, c = o*factor, h*factor, l*factor, a
		}

		bars = append(bars, models.PriceBar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    vol,
		})
	}

	series, err := normalizeBars(symbol, bars)
	observeFetch("yahoo", "series", start, err)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetched price series",
		logger.String("symbol", symbol),
		logger.String("period", period),
		logger.String("interval", interval),
		logger.Int("bars", series.Len()),
	)
	return series, nil
}

// FetchFundamentals reads the canonical fields from quoteSummary. Fields the
// provider does not report stay nil.
func (y *YahooClient) FetchFundamentals(ctx context.Context, symbol string) (models.FundamentalSet, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, models.ErrInvalidSymbol
	}

	q := url.Values{}
	q.Set("modules", strings.Join(fundamentalModules, ","))
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.baseURL, url.PathEscape(symbol), q.Encode())

	start := time.Now()
	var summary yahooQuoteSummary
	if err := y.getJSON(ctx, u, &summary); err != nil {
		observeFetch("yahoo", "fundamentals", start, err)
		return nil, err
	}
	if summary.QuoteSummary.Error != nil {
		err := fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
		observeFetch("yahoo", "fundamentals", start, err)
		return nil, err
	}

	out := models.EmptyFundamentals()
	if len(summary.QuoteSummary.Result) > 0 {
		modules := summary.QuoteSummary.Result[0]
		for _, field := range models.FundamentalFields {
			for _, name := range fundamentalModules {
				if v, ok := rawValue(modules[name][field]); ok {
					out[field] = models.Value(v)
					break
				}
			}
		}
	}

	observeFetch("yahoo", "fundamentals", start, nil)
	return out, nil
}

// rawValue accepts both {"raw": 1.2, "fmt": "1.2"} objects and bare numbers
func rawValue(msg json.RawMessage) (float64, bool) {
	if len(msg) == 0 {
		return 0, false
	}

	var wrapped struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(msg, &wrapped); err == nil && wrapped.Raw != nil {
		return *wrapped.Raw, true
	}

	var bare float64
	if err := json.Unmarshal(msg, &bare); err == nil {
		return bare, true
	}
	return 0, false
}

// Search resolves a company name or free text to candidate tickers
func (y *YahooClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", strconv.Itoa(limit))
	q.Set("newsCount", "0")
	u := fmt.Sprintf("%s/v1/finance/search?%s", y.baseURL, q.Encode())

	start := time.Now()
	var resp yahooSearch
	if err := y.getJSON(ctx, u, &resp); err != nil {
		observeFetch("yahoo", "search", start, err)
		return nil, err
	}
	observeFetch("yahoo", "search", start, nil)

	results := make([]SearchResult, 0, len(resp.Quotes))
	for _, quote := range resp.Quotes {
		if quote.Symbol == "" {
			continue
		}
		name := quote.ShortName
		if name == "" {
			name = quote.LongName
		}
		results = append(results, SearchResult{
			Symbol:   quote.Symbol,
			Name:     name,
			Exchange: quote.ExchDisp,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (y *YahooClient) getJSON(ctx context.Context, u string, out interface{}) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("yahoo rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}

	// the chart and quoteSummary endpoints report unknown symbols as 404 with a JSON error body
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 256))
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("yahoo: status %d", resp.StatusCode)
		}
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
