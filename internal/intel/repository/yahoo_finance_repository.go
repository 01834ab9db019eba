package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/dto"
	"golang-market-intel/pkg/common"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	maxFetchAttempts = 3
	backoffBase      = time.Second
)

// MarketDataRepository fetches per-symbol market snapshots. A returned
// error means the provider failed for that symbol; partial snapshots
// (candles without fundamentals) are a success.
type MarketDataRepository interface {
	GetSnapshot(ctx context.Context, ticker string) (*dto.MarketSnapshot, error)
}

// NewYahooFinanceRepository creates the Yahoo Finance market data
// repository. All callers share one rate limiter; snapshots are cached in
// Redis for the configured TTL.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg:    cfg,
		logger: log,
		redis:  redisClient,
		httpClient: &http.Client{
			Timeout: cfg.MarketData.RequestTimeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	redis          *redis.Client
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

func (r *yahooFinanceRepository) GetSnapshot(ctx context.Context, ticker string) (*dto.MarketSnapshot, error) {
	cacheKey := fmt.Sprintf(common.RedisKeySnapshot, ticker)

	if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
		var snap dto.MarketSnapshot
		if err := json.Unmarshal([]byte(cached), &snap); err == nil {
			r.logger.DebugContext(ctx, "Market snapshot cache hit", logger.StringField("ticker", ticker))
			return &snap, nil
		}
	} else if err != goredis.Nil {
		r.logger.DebugContext(ctx, "Snapshot cache read failed, fetching",
			logger.ErrorField(err), logger.StringField("ticker", ticker))
	}

	candles, err := r.fetchCandles(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", ticker, err)
	}

	snap := &dto.MarketSnapshot{
		Ticker:    ticker,
		Candles:   candles,
		FetchedAt: time.Now().UTC(),
	}

	// Fundamentals are best effort: a quoteSummary failure degrades the
	// snapshot instead of failing it.
	fundamentals, err := r.fetchFundamentals(ctx, ticker)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to fetch fundamentals, snapshot degrades to candles only",
			logger.ErrorField(err), logger.StringField("ticker", ticker))
	} else {
		snap.Fundamentals = fundamentals
	}

	if payload, err := json.Marshal(snap); err == nil {
		if err := r.redis.Set(ctx, cacheKey, payload, r.cfg.MarketData.CacheTTL).Err(); err != nil {
			r.logger.DebugContext(ctx, "Failed to cache snapshot",
				logger.ErrorField(err), logger.StringField("ticker", ticker))
		}
	}
	return snap, nil
}

func (r *yahooFinanceRepository) fetchCandles(ctx context.Context, ticker string) ([]dto.Candle, error) {
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		r.cfg.MarketData.BaseURL, url.PathEscape(ticker), r.cfg.MarketData.CandleRange)

	body, err := r.fetchWithRetry(ctx, chartURL)
	if err != nil {
		return nil, err
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s - %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart response has no quote data")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]dto.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := dto.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func (r *yahooFinanceRepository) fetchFundamentals(ctx context.Context, ticker string) (*dto.FundamentalData, error) {
	summaryURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		r.cfg.MarketData.BaseURL, url.PathEscape(ticker),
		url.QueryEscape("summaryDetail,financialData,defaultKeyStatistics"))

	body, err := r.fetchWithRetry(ctx, summaryURL)
	if err != nil {
		return nil, err
	}

	var summary dto.YahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quoteSummary response: %w", err)
	}
	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary API error: %s - %s",
			summary.QuoteSummary.Error.Code, summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quoteSummary response has no result")
	}

	result := summary.QuoteSummary.Result[0]
	return &dto.FundamentalData{
		TrailingPE:     result.SummaryDetail.TrailingPE.Raw,
		MarketCap:      result.SummaryDetail.MarketCap.Raw,
		ReturnOnEquity: result.FinancialData.ReturnOnEquity.Raw,
		DebtToEquity:   result.FinancialData.DebtToEquity.Raw,
	}, nil
}

// fetchWithRetry performs a rate-limited GET with up to maxFetchAttempts
// attempts. Transport errors, 429 and 5xx retry with exponential backoff;
// other statuses fail fast.
func (r *yahooFinanceRepository) fetchWithRetry(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			backoff := backoffBase<<(attempt-1) + time.Duration(rand.Int63n(250))*time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retryable, err := r.fetchOnce(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		r.logger.WarnContext(ctx, "Market data request failed, retrying",
			logger.ErrorField(err),
			logger.StringField("url", requestURL),
			logger.IntField("attempt", attempt+1),
		)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxFetchAttempts, lastErr)
}

func (r *yahooFinanceRepository) fetchOnce(ctx context.Context, requestURL string) ([]byte, bool, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("received status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("received status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, false, nil
}
