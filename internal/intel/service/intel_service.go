package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/metrics"
	"golang-market-intel/internal/intel/ner"
	"golang-market-intel/internal/intel/pipeline"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/internal/intel/resolver"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when a run is requested while another run is
// still executing. Runs never overlap.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// IntelService executes the full news-to-recommendation pipeline.
type IntelService interface {
	Run(ctx context.Context, trigger string) (*entity.PipelineRun, error)
	IsRunning() bool
}

// NewIntelService creates a new IntelService.
func NewIntelService(
	cfg *config.Config,
	log *logger.Logger,
	newsRepo repository.NewsFeedRepository,
	symbolRepo repository.SymbolRepository,
	articleRepo repository.ArticleRepository,
	runRepo repository.PipelineRunRepository,
	recRepo repository.RecommendationRepository,
	coordinator *pipeline.Coordinator,
	extractor ner.Extractor,
	model sentiment.Model,
	aggregator *sentiment.Aggregator,
) IntelService {
	return &intelService{
		cfg:         cfg,
		logger:      log,
		newsRepo:    newsRepo,
		symbolRepo:  symbolRepo,
		articleRepo: articleRepo,
		runRepo:     runRepo,
		recRepo:     recRepo,
		coordinator: coordinator,
		extractor:   extractor,
		model:       model,
		aggregator:  aggregator,
	}
}

type intelService struct {
	cfg         *config.Config
	logger      *logger.Logger
	newsRepo    repository.NewsFeedRepository
	symbolRepo  repository.SymbolRepository
	articleRepo repository.ArticleRepository
	runRepo     repository.PipelineRunRepository
	recRepo     repository.RecommendationRepository
	coordinator *pipeline.Coordinator
	extractor   ner.Extractor
	model       sentiment.Model
	aggregator  *sentiment.Aggregator
	running     atomic.Bool
}

// IsRunning reports whether a run is currently executing.
func (s *intelService) IsRunning() bool {
	return s.running.Load()
}

// Run executes one pipeline pass: collect, resolve, aggregate sentiment,
// score the universe, rank, and persist. The returned run record carries
// the final status even when the run failed partway.
func (s *intelService) Run(ctx context.Context, trigger string) (*entity.PipelineRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	run := &entity.PipelineRun{
		ID:        uuid.New().String(),
		Status:    entity.RunStatusRunning,
		Trigger:   trigger,
		StartedAt: utils.TimeNowIST(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create pipeline run: %w", err)
	}

	ctx = logger.WithRunID(ctx, run.ID)
	s.logger.InfoContext(ctx, "Pipeline run started", logger.StringField("trigger", trigger))

	start := time.Now()
	err := s.execute(ctx, run)
	metrics.RecordPipelineRun(trigger, time.Since(start), err)

	finished := utils.TimeNowIST()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = entity.RunStatusFailed
		run.Notes = err.Error()
		s.logger.ErrorContext(ctx, "Pipeline run failed", logger.ErrorField(err))
	} else {
		run.Status = entity.RunStatusCompleted
		s.logger.InfoContext(ctx, "Pipeline run completed",
			logger.IntField("articles", run.ArticleCount),
			logger.IntField("mentions", run.MentionCount),
			logger.IntField("resolved", run.ResolvedCount),
			logger.IntField("symbols", run.SymbolCount),
		)
	}
	if updateErr := s.runRepo.Update(ctx, run); updateErr != nil {
		s.logger.ErrorContext(ctx, "Failed to update pipeline run", logger.ErrorField(updateErr))
	}
	return run, err
}

func (s *intelService) execute(ctx context.Context, run *entity.PipelineRun) error {
	var diags []entity.RunDiagnostic

	symbols, err := s.symbolRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load symbol master: %w", err)
	}
	if len(symbols) == 0 {
		return fmt.Errorf("symbol master is empty, seed the symbols table first")
	}
	res := resolver.New(symbols, s.cfg.Resolver.FuzzyThreshold)

	// A dead feed window degrades the run, it does not abort it: baseline
	// symbols are still scored on market data alone.
	articles, err := s.newsRepo.Collect(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "News collection failed", logger.ErrorField(err))
		diags = append(diags, entity.RunDiagnostic{
			RunID:   run.ID,
			Stage:   entity.StageCollect,
			Message: err.Error(),
		})
		articles = nil
	}

	s.resolveAndPersist(ctx, run, res, articles, &diags)

	since := utils.TimeNowIST().Add(-s.cfg.News.MaxAge)
	window, err := s.articleRepo.FindSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load sentiment window: %w", err)
	}
	run.ArticleCount = len(window)
	for _, article := range window {
		run.MentionCount += len(article.Mentions)
		for _, m := range article.Mentions {
			if m.Matched {
				run.ResolvedCount++
			}
		}
	}

	samples := s.buildSamples(ctx, run, window, &diags)
	sentiments := s.aggregator.Aggregate(samples)

	newsCodes := make([]string, 0, len(sentiments))
	for code := range sentiments {
		newsCodes = append(newsCodes, code)
	}
	universe := pipeline.BuildUniverse(symbols, newsCodes, s.cfg.Pipeline.Watchlist, s.cfg.Pipeline.MaxSymbols)
	run.SymbolCount = len(universe)
	metrics.UniverseSize.WithLabelValues(run.Trigger).Set(float64(len(universe)))
	s.logger.InfoContext(ctx, "Universe assembled",
		logger.IntField("news_symbols", len(newsCodes)),
		logger.IntField("universe", len(universe)),
	)

	result := s.coordinator.Execute(ctx, universe, sentiments)
	for i := range result.Diagnostics {
		result.Diagnostics[i].RunID = run.ID
	}
	diags = append(diags, result.Diagnostics...)

	if err := s.persistRecommendations(ctx, run, result.Scored); err != nil {
		return err
	}

	if err := s.runRepo.AddDiagnostics(ctx, diags); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist run diagnostics", logger.ErrorField(err))
	}
	return nil
}

// resolveAndPersist extracts mentions from each collected article, resolves
// them against the symbol master, and stores article plus mentions. One bad
// article never stops the batch.
func (s *intelService) resolveAndPersist(ctx context.Context, run *entity.PipelineRun, res *resolver.Resolver, articles []entity.Article, diags *[]entity.RunDiagnostic) {
	for i := range articles {
		if !utils.ShouldContinue(ctx, s.logger) {
			return
		}
		article := &articles[i]

		mentions := s.extractor.Extract(article.Title + ". " + article.Summary)
		for _, r := range res.ResolveAll(mentions) {
			outcome := "unresolved"
			if r.Matched {
				outcome = r.Method
			}
			metrics.RecordResolution(outcome)
			article.Mentions = append(article.Mentions, entity.EntityMention{
				RawText:    r.Mention.Raw,
				SymbolCode: r.Symbol,
				Matched:    r.Matched,
				Method:     r.Method,
				Score:      r.Score,
			})
		}

		inserted, err := s.articleRepo.CreateIgnoreConflict(ctx, article)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to persist article",
				logger.ErrorField(err), logger.StringField("link", article.Link))
			*diags = append(*diags, entity.RunDiagnostic{
				RunID:   run.ID,
				Stage:   entity.StageResolve,
				Message: fmt.Sprintf("article %q: %v", article.Link, err),
			})
			continue
		}
		if inserted {
			metrics.ArticlesIngested.WithLabelValues(article.Source).Inc()
		}
	}
}

// buildSamples scores each window article once and fans the result out to
// every distinct symbol the article mentions.
func (s *intelService) buildSamples(ctx context.Context, run *entity.PipelineRun, window []entity.Article, diags *[]entity.RunDiagnostic) []sentiment.Sample {
	var samples []sentiment.Sample
	for _, article := range window {
		if !utils.ShouldContinue(ctx, s.logger) {
			return samples
		}
		matched := distinctMatchedSymbols(article.Mentions)
		if len(matched) == 0 {
			continue
		}

		result, err := s.model.Analyze(ctx, article.Title, article.Summary)
		if err != nil {
			s.logger.WarnContext(ctx, "Sentiment model failed for article",
				logger.ErrorField(err), logger.StringField("link", article.Link))
			*diags = append(*diags, entity.RunDiagnostic{
				RunID:   run.ID,
				Stage:   entity.StageSentiment,
				Message: fmt.Sprintf("article %q: %v", article.Link, err),
			})
			continue
		}
		metrics.SentimentSamples.WithLabelValues(s.model.Name()).Inc()

		published := article.CreatedAt
		if article.PublishedAt != nil {
			published = *article.PublishedAt
		}
		weight := s.cfg.SourceWeight(article.Source)
		for _, code := range matched {
			samples = append(samples, sentiment.Sample{
				Symbol:       code,
				Polarity:     result.Polarity,
				Magnitude:    result.Magnitude,
				SourceWeight: weight,
				ArticleID:    article.ID,
				PublishedAt:  published,
			})
		}
	}
	return samples
}

func distinctMatchedSymbols(mentions []entity.EntityMention) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, m := range mentions {
		if !m.Matched || m.SymbolCode == "" {
			continue
		}
		if _, dup := seen[m.SymbolCode]; dup {
			continue
		}
		seen[m.SymbolCode] = struct{}{}
		codes = append(codes, m.SymbolCode)
	}
	return codes
}

func (s *intelService) persistRecommendations(ctx context.Context, run *entity.PipelineRun, scored []pipeline.ScoredSymbol) error {
	if len(scored) == 0 {
		s.logger.WarnContext(ctx, "No symbols scored, nothing to persist")
		return nil
	}

	recs := make([]entity.Recommendation, 0, len(scored))
	for i, item := range scored {
		rec := item.Recommendation
		rationale, err := json.Marshal(rec.Rationale)
		if err != nil {
			return fmt.Errorf("failed to marshal rationale for %s: %w", rec.Symbol, err)
		}
		metrics.RecordRecommendation(string(rec.Action))
		recs = append(recs, entity.Recommendation{
			RunID:            run.ID,
			SymbolCode:       rec.Symbol,
			Sector:           item.Symbol.Sector,
			Action:           rec.Action,
			Composite:        rec.Composite,
			Confidence:       rec.Confidence,
			SentimentScore:   rec.SentimentScore,
			TechnicalScore:   rec.TechnicalScore,
			FundamentalScore: rec.FundamentalScore,
			DataCompleteness: rec.DataCompleteness,
			Rationale:        rationale,
			TargetLow:        rec.TargetLow,
			TargetHigh:       rec.TargetHigh,
			Rank:             i + 1,
		})
	}
	if err := s.recRepo.BulkCreate(ctx, recs); err != nil {
		return fmt.Errorf("failed to persist recommendations: %w", err)
	}
	return nil
}
