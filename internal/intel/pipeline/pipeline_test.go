package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/dto"
	"golang-market-intel/internal/intel/engine"
	"golang-market-intel/internal/intel/market"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{Logger: zapLogger}
}

type fakeMarketRepo struct {
	getSnapshotFunc func(ctx context.Context, ticker string) (*dto.MarketSnapshot, error)
}

func (f *fakeMarketRepo) GetSnapshot(ctx context.Context, ticker string) (*dto.MarketSnapshot, error) {
	if f.getSnapshotFunc != nil {
		return f.getSnapshotFunc(ctx, ticker)
	}
	return nil, errors.New("no snapshot configured")
}

func testCoordinator(repo *fakeMarketRepo) *Coordinator {
	eng := engine.New(config.Engine{
		Weights:         config.Weights{Sentiment: 0.40, Technical: 0.35, Fundamental: 0.25},
		ActionThreshold: 0.15,
		MinConfidence:   0.30,
	})
	return NewCoordinator(repo, market.NewScorer(), eng, testLogger(), config.Pipeline{
		MaxWorkers: 2,
		RunTimeout: time.Minute,
	})
}

func candlesFromCloses(closes []float64) []dto.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]dto.Candle, len(closes))
	for i, c := range closes {
		candles[i] = dto.Candle{Date: base.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return candles
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func universeSymbols() []entity.Symbol {
	return []entity.Symbol{
		{Code: "HDFCBANK", Name: "HDFC Bank", YahooTicker: "HDFCBANK.NS", Baseline: true, Active: true},
		{Code: "RELIANCE", Name: "Reliance Industries", YahooTicker: "RELIANCE.NS", Baseline: true, Active: true},
		{Code: "TCS", Name: "Tata Consultancy Services", YahooTicker: "TCS.NS", Baseline: true, Active: true},
		{Code: "IRCTC", Name: "IRCTC", YahooTicker: "IRCTC.NS", Active: true},
		{Code: "ZOMATO", Name: "Zomato", YahooTicker: "ZOMATO.NS", Active: true},
		{Code: "SUSPENDED", Name: "Suspended Co", YahooTicker: "SUSPENDED.NS", Baseline: true, Active: false},
	}
}

func universeCodes(universe []entity.Symbol) []string {
	codes := make([]string, len(universe))
	for i, s := range universe {
		codes[i] = s.Code
	}
	return codes
}

func TestBuildUniverse_TierOrder(t *testing.T) {
	universe := BuildUniverse(universeSymbols(), []string{"TCS", "IRCTC"}, []string{"ZOMATO", "RELIANCE"}, 10)

	// news tier first, then baseline, then watchlist, each alphabetical
	assert.Equal(t, []string{"IRCTC", "TCS", "HDFCBANK", "RELIANCE", "ZOMATO"}, universeCodes(universe))
}

func TestBuildUniverse_CapAndFilters(t *testing.T) {
	universe := BuildUniverse(universeSymbols(), []string{"SUSPENDED", "UNKNOWN", "TCS"}, nil, 2)

	assert.Equal(t, []string{"TCS", "HDFCBANK"}, universeCodes(universe))
}

func TestBuildUniverse_EmptyMaster(t *testing.T) {
	assert.Empty(t, BuildUniverse(nil, []string{"TCS"}, []string{"IRCTC"}, 10))
}

func TestCoordinator_Execute_ScoresUniverse(t *testing.T) {
	repo := &fakeMarketRepo{
		getSnapshotFunc: func(_ context.Context, ticker string) (*dto.MarketSnapshot, error) {
			return &dto.MarketSnapshot{Ticker: ticker, Candles: candlesFromCloses(risingCloses(60))}, nil
		},
	}
	c := testCoordinator(repo)
	universe := []entity.Symbol{
		{Code: "RELIANCE", YahooTicker: "RELIANCE.NS", Active: true},
		{Code: "TCS", YahooTicker: "TCS.NS", Active: true},
		{Code: "INFY", YahooTicker: "INFY.NS", Active: true},
	}
	sentiments := map[string]sentiment.SymbolSentiment{
		"TCS": {Symbol: "TCS", Score: 0.9, Confidence: 0.9, SampleCount: 5},
	}

	result := c.Execute(context.Background(), universe, sentiments)

	require.Len(t, result.Scored, 3)
	assert.Empty(t, result.Diagnostics)
	for _, s := range result.Scored {
		require.NotNil(t, s.Recommendation.Composite, s.Symbol.Code)
	}

	// TCS carries sentiment on top of the shared technicals and ranks first;
	// the identical market-only pair falls back to code order.
	assert.Equal(t, []string{"TCS", "INFY", "RELIANCE"}, scoredCodes(result.Scored))
	require.NotNil(t, result.Scored[0].Recommendation.SentimentScore)
	assert.Nil(t, result.Scored[1].Recommendation.SentimentScore)
}

func scoredCodes(scored []ScoredSymbol) []string {
	codes := make([]string, len(scored))
	for i, s := range scored {
		codes[i] = s.Symbol.Code
	}
	return codes
}

func TestCoordinator_Execute_ProviderFailureIsolated(t *testing.T) {
	repo := &fakeMarketRepo{
		getSnapshotFunc: func(_ context.Context, ticker string) (*dto.MarketSnapshot, error) {
			if ticker == "BAD.NS" {
				return nil, errors.New("upstream 502")
			}
			return &dto.MarketSnapshot{Ticker: ticker, Candles: candlesFromCloses(risingCloses(60))}, nil
		},
	}
	c := testCoordinator(repo)
	universe := []entity.Symbol{
		{Code: "BAD", YahooTicker: "BAD.NS", Active: true},
		{Code: "GOOD", YahooTicker: "GOOD.NS", Active: true},
	}

	result := c.Execute(context.Background(), universe, nil)

	require.Len(t, result.Scored, 2)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "BAD", result.Diagnostics[0].SymbolCode)
	assert.Equal(t, entity.StageFetch, result.Diagnostics[0].Stage)

	byCode := make(map[string]engine.Recommendation)
	for _, s := range result.Scored {
		byCode[s.Symbol.Code] = s.Recommendation
	}
	assert.Equal(t, entity.ActionInsufficientData, byCode["BAD"].Action)
	assert.Nil(t, byCode["BAD"].Composite)
	require.NotNil(t, byCode["GOOD"].Composite)
	assert.Equal(t, "GOOD", result.Scored[0].Symbol.Code, "scorable symbols rank above insufficient data")
}

func TestCoordinator_Execute_PanicIsolated(t *testing.T) {
	repo := &fakeMarketRepo{
		getSnapshotFunc: func(_ context.Context, ticker string) (*dto.MarketSnapshot, error) {
			if ticker == "BOOM.NS" {
				panic("corrupt snapshot")
			}
			return &dto.MarketSnapshot{Ticker: ticker, Candles: candlesFromCloses(risingCloses(60))}, nil
		},
	}
	c := testCoordinator(repo)
	universe := []entity.Symbol{
		{Code: "BOOM", YahooTicker: "BOOM.NS", Active: true},
		{Code: "GOOD", YahooTicker: "GOOD.NS", Active: true},
	}

	result := c.Execute(context.Background(), universe, nil)

	require.Len(t, result.Scored, 2)
	byCode := make(map[string]engine.Recommendation)
	for _, s := range result.Scored {
		byCode[s.Symbol.Code] = s.Recommendation
	}
	assert.Equal(t, entity.ActionInsufficientData, byCode["BOOM"].Action)
	require.NotNil(t, byCode["GOOD"].Composite)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "BOOM", result.Diagnostics[0].SymbolCode)
	assert.Equal(t, entity.StageScore, result.Diagnostics[0].Stage)
	assert.Contains(t, result.Diagnostics[0].Message, "panic")
}

func TestCoordinator_Execute_CancelledContextSkips(t *testing.T) {
	c := testCoordinator(&fakeMarketRepo{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Execute(ctx, universeSymbols()[:3], nil)

	assert.Empty(t, result.Scored)
	require.Len(t, result.Diagnostics, 3)
	for _, d := range result.Diagnostics {
		assert.Equal(t, entity.StageScore, d.Stage)
		assert.Contains(t, d.Message, "skipped")
	}
}

func TestSortScored_Ordering(t *testing.T) {
	scored := []ScoredSymbol{
		{Symbol: entity.Symbol{Code: "DELTA"}, Recommendation: engine.Recommendation{Action: entity.ActionInsufficientData}},
		{Symbol: entity.Symbol{Code: "BETA"}, Recommendation: engine.Recommendation{Composite: utils.ToPointer(-0.8), Confidence: 0.5}},
		{Symbol: entity.Symbol{Code: "ALPHA"}, Recommendation: engine.Recommendation{Composite: utils.ToPointer(0.5), Confidence: 0.8}},
		{Symbol: entity.Symbol{Code: "GAMMA"}, Recommendation: engine.Recommendation{Composite: utils.ToPointer(0.9), Confidence: 0.9}},
	}

	SortScored(scored)

	assert.Equal(t, []string{"GAMMA", "ALPHA", "BETA", "DELTA"}, scoredCodes(scored))
}
