package service

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
	"golang-market-intel/internal/intel/ner"
	"golang-market-intel/internal/intel/pipeline"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{Logger: zapLogger}
}

func testConfig() *config.Config {
	return &config.Config{
		News: config.News{
			MaxAge:        36 * time.Hour,
			DefaultWeight: 0.5,
			SourceWeights: map[string]float64{"economictimes.indiatimes.com": 0.9},
		},
		Sentiment: config.Sentiment{Provider: "lexicon", SaturationSamples: 5, DampUncertainty: 0.5},
		Engine: config.Engine{
			Weights:         config.Weights{Sentiment: 0.40, Technical: 0.35, Fundamental: 0.25},
			ActionThreshold: 0.15,
			MinConfidence:   0.30,
		},
		Resolver: config.Resolver{FuzzyThreshold: 0.88},
		Pipeline: config.Pipeline{
			MaxWorkers: 2,
			MaxSymbols: 50,
			RunTimeout: time.Minute,
			Watchlist:  []string{"IRCTC"},
		},
	}
}

func testMaster() []entity.Symbol {
	return []entity.Symbol{
		{Code: "RELIANCE", Name: "Reliance Industries", Sector: "Energy", YahooTicker: "RELIANCE.NS", MarketCapRank: 1, Baseline: true, Active: true},
		{Code: "TCS", Name: "Tata Consultancy Services", Sector: "IT", YahooTicker: "TCS.NS", MarketCapRank: 2, Baseline: true, Active: true},
		{Code: "IRCTC", Name: "IRCTC", Sector: "Travel", YahooTicker: "IRCTC.NS", MarketCapRank: 40, Active: true},
	}
}

// --- fakes ---

type fakeNewsRepo struct {
	collectFunc func(ctx context.Context) ([]entity.Article, error)
}

func (f *fakeNewsRepo) Collect(ctx context.Context) ([]entity.Article, error) {
	if f.collectFunc != nil {
		return f.collectFunc(ctx)
	}
	return nil, nil
}

type fakeSymbolRepo struct {
	symbols []entity.Symbol
}

func (f *fakeSymbolRepo) FindActive(context.Context) ([]entity.Symbol, error) {
	return f.symbols, nil
}

func (f *fakeSymbolRepo) FindByCode(context.Context, string) (*entity.Symbol, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSymbolRepo) FindBaseline(context.Context) ([]entity.Symbol, error) {
	return nil, nil
}

func (f *fakeSymbolRepo) Upsert(context.Context, []entity.Symbol) error {
	return nil
}

type fakeArticleRepo struct {
	articles []entity.Article
}

func (f *fakeArticleRepo) CreateIgnoreConflict(_ context.Context, article *entity.Article) (bool, error) {
	for _, a := range f.articles {
		if a.HashIdentifier == article.HashIdentifier {
			return false, nil
		}
	}
	article.ID = uint(len(f.articles) + 1)
	f.articles = append(f.articles, *article)
	return true, nil
}

func (f *fakeArticleRepo) FindSince(context.Context, time.Time) ([]entity.Article, error) {
	out := make([]entity.Article, len(f.articles))
	copy(out, f.articles)
	return out, nil
}

func (f *fakeArticleRepo) CountSince(context.Context, time.Time) (int64, error) {
	return int64(len(f.articles)), nil
}

type fakeRunRepo struct {
	created   *entity.PipelineRun
	updated   *entity.PipelineRun
	diags     []entity.RunDiagnostic
	createErr error
}

func (f *fakeRunRepo) Create(_ context.Context, run *entity.PipelineRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = run
	return nil
}

func (f *fakeRunRepo) Update(_ context.Context, run *entity.PipelineRun) error {
	f.updated = run
	return nil
}

func (f *fakeRunRepo) FindByID(context.Context, string) (*entity.PipelineRun, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRunRepo) FindLatestCompleted(context.Context) (*entity.PipelineRun, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRunRepo) List(context.Context, int) ([]entity.PipelineRun, error) {
	return nil, nil
}

func (f *fakeRunRepo) AddDiagnostics(_ context.Context, diags []entity.RunDiagnostic) error {
	f.diags = append(f.diags, diags...)
	return nil
}

type fakeRecRepo struct {
	bulk []entity.Recommendation
}

func (f *fakeRecRepo) BulkCreate(_ context.Context, recs []entity.Recommendation) error {
	f.bulk = append(f.bulk, recs...)
	return nil
}

func (f *fakeRecRepo) FindByRunID(context.Context, string, entity.Action, int) ([]entity.Recommendation, error) {
	return nil, nil
}

func (f *fakeRecRepo) FindLatestForSymbol(context.Context, string) (*entity.Recommendation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRecRepo) SectorMomentum(context.Context, string) ([]dto.SectorMomentum, error) {
	return nil, nil
}

type fakeMarketData struct {
	getSnapshotFunc func(ctx context.Context, ticker string) (*dto.MarketSnapshot, error)
}

func (f *fakeMarketData) GetSnapshot(ctx context.Context, ticker string) (*dto.MarketSnapshot, error) {
	if f.getSnapshotFunc != nil {
		return f.getSnapshotFunc(ctx, ticker)
	}
	return nil, errors.New("no snapshot configured")
}

func risingSnapshot(ticker string) *dto.MarketSnapshot {
	candles := make([]dto.Candle, 60)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = dto.Candle{Date: base.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1000}
	}
	return &dto.MarketSnapshot{Ticker: ticker, Candles: candles}
}

func newTestService(
	news repository.NewsFeedRepository,
	marketRepo repository.MarketDataRepository,
	symbols []entity.Symbol,
) (IntelService, *fakeRunRepo, *fakeRecRepo, *fakeArticleRepo) {
	cfg := testConfig()
	log := testLogger()
	runRepo := &fakeRunRepo{}
	recRepo := &fakeRecRepo{}
	articleRepo := &fakeArticleRepo{}
	coordinator := pipeline.NewCoordinator(marketRepo, market.NewScorer(), engine.New(cfg.Engine), log, cfg.Pipeline)
	svc := NewIntelService(
		cfg, log,
		news,
		&fakeSymbolRepo{symbols: symbols},
		articleRepo,
		runRepo,
		recRepo,
		coordinator,
		ner.NewPatternExtractor(),
		sentiment.NewLexiconModel(cfg.Sentiment.DampUncertainty),
		sentiment.NewAggregator(cfg.Sentiment.SaturationSamples),
	)
	return svc, runRepo, recRepo, articleRepo
}

func TestIntelService_Run_EndToEnd(t *testing.T) {
	published := time.Now().Add(-2 * time.Hour)
	news := &fakeNewsRepo{collectFunc: func(context.Context) ([]entity.Article, error) {
		return []entity.Article{
			{
				Title:          "Reliance Industries profit surges on record refining margins",
				Link:           "https://example.com/ril-q1",
				Source:         "economictimes.indiatimes.com",
				Summary:        "Strong growth and an upbeat outlook lifted Reliance Industries.",
				PublishedAt:    &published,
				HashIdentifier: "hash-ril-q1",
			},
		}, nil
	}}
	marketRepo := &fakeMarketData{getSnapshotFunc: func(_ context.Context, ticker string) (*dto.MarketSnapshot, error) {
		return risingSnapshot(ticker), nil
	}}
	svc, runRepo, recRepo, articleRepo := newTestService(news, marketRepo, testMaster())

	run, err := svc.Run(context.Background(), entity.RunTriggerManual)

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, entity.RunTriggerManual, run.Trigger)
	assert.NotEmpty(t, run.ID)
	require.NotNil(t, run.FinishedAt)

	assert.Equal(t, 1, run.ArticleCount)
	assert.Equal(t, 2, run.MentionCount)
	assert.Equal(t, 2, run.ResolvedCount)
	// news symbol + remaining baseline + watchlist
	assert.Equal(t, 3, run.SymbolCount)

	require.Len(t, articleRepo.articles, 1)
	stored := articleRepo.articles[0]
	require.NotEmpty(t, stored.Mentions)
	assert.Equal(t, "RELIANCE", stored.Mentions[0].SymbolCode)
	assert.True(t, stored.Mentions[0].Matched)
	assert.Equal(t, entity.ResolveMethodExact, stored.Mentions[0].Method)

	require.Len(t, recRepo.bulk, 3)
	for i, rec := range recRepo.bulk {
		assert.Equal(t, run.ID, rec.RunID)
		assert.Equal(t, i+1, rec.Rank)
		assert.NotEmpty(t, rec.Rationale)
	}
	// the symbol with news sentiment outranks the market-only names
	assert.Equal(t, "RELIANCE", recRepo.bulk[0].SymbolCode)
	assert.Equal(t, "Energy", recRepo.bulk[0].Sector)
	assert.NotNil(t, recRepo.bulk[0].SentimentScore)
	assert.Nil(t, recRepo.bulk[1].SentimentScore)

	require.NotNil(t, runRepo.created)
	require.NotNil(t, runRepo.updated)
	assert.Equal(t, entity.RunStatusCompleted, runRepo.updated.Status)
	assert.False(t, svc.IsRunning())
}

func TestIntelService_Run_CollectFailureDegrades(t *testing.T) {
	news := &fakeNewsRepo{collectFunc: func(context.Context) ([]entity.Article, error) {
		return nil, errors.New("feed timeout")
	}}
	marketRepo := &fakeMarketData{getSnapshotFunc: func(_ context.Context, ticker string) (*dto.MarketSnapshot, error) {
		return risingSnapshot(ticker), nil
	}}
	svc, runRepo, recRepo, _ := newTestService(news, marketRepo, testMaster())

	run, err := svc.Run(context.Background(), entity.RunTriggerCron)

	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Zero(t, run.ArticleCount)
	// baseline and watchlist are still scored on market data alone
	assert.Equal(t, 3, run.SymbolCount)
	assert.Len(t, recRepo.bulk, 3)

	require.NotEmpty(t, runRepo.diags)
	assert.Equal(t, entity.StageCollect, runRepo.diags[0].Stage)
	assert.Equal(t, run.ID, runRepo.diags[0].RunID)
	assert.Contains(t, runRepo.diags[0].Message, "feed timeout")
}

func TestIntelService_Run_EmptySymbolMasterFails(t *testing.T) {
	svc, runRepo, recRepo, _ := newTestService(&fakeNewsRepo{}, &fakeMarketData{}, nil)

	run, err := svc.Run(context.Background(), entity.RunTriggerManual)

	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.Contains(t, run.Notes, "symbol master is empty")
	assert.Empty(t, recRepo.bulk)

	require.NotNil(t, runRepo.updated)
	assert.Equal(t, entity.RunStatusFailed, runRepo.updated.Status)
	assert.False(t, svc.IsRunning())
}

func TestIntelService_Run_CreateFailureAborts(t *testing.T) {
	svc, runRepo, recRepo, _ := newTestService(&fakeNewsRepo{}, &fakeMarketData{}, testMaster())
	runRepo.createErr = errors.New("connection refused")

	run, err := svc.Run(context.Background(), entity.RunTriggerManual)

	require.Error(t, err)
	assert.Nil(t, run)
	assert.Empty(t, recRepo.bulk)
	assert.False(t, svc.IsRunning())
}

func TestIntelService_Run_RejectsOverlappingRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	news := &fakeNewsRepo{collectFunc: func(context.Context) ([]entity.Article, error) {
		close(started)
		<-release
		return nil, nil
	}}
	marketRepo := &fakeMarketData{getSnapshotFunc: func(context.Context, string) (*dto.MarketSnapshot, error) {
		return nil, errors.New("no data")
	}}
	svc, _, _, _ := newTestService(news, marketRepo, testMaster())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(context.Background(), entity.RunTriggerCron)
	}()

	<-started
	assert.True(t, svc.IsRunning())

	_, err := svc.Run(context.Background(), entity.RunTriggerAPI)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	<-done
	assert.False(t, svc.IsRunning())
}
