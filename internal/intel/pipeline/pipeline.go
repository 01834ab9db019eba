package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/engine"
	"golang-market-intel/internal/intel/market"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"
)

// ScoredSymbol pairs a universe symbol with its fused recommendation.
type ScoredSymbol struct {
	Symbol         entity.Symbol
	Recommendation engine.Recommendation
}

// Result is the outcome of one coordinator pass over the universe.
type Result struct {
	Scored      []ScoredSymbol
	Diagnostics []entity.RunDiagnostic
}

// Coordinator fans the universe out over a bounded worker pool, isolating
// every per-symbol failure, and returns deterministically ordered results.
type Coordinator struct {
	marketRepo repository.MarketDataRepository
	scorer     *market.Scorer
	engine     *engine.Engine
	logger     *logger.Logger
	maxWorkers int
	runTimeout time.Duration
}

// NewCoordinator creates a pipeline coordinator.
func NewCoordinator(
	marketRepo repository.MarketDataRepository,
	scorer *market.Scorer,
	eng *engine.Engine,
	log *logger.Logger,
	cfg config.Pipeline,
) *Coordinator {
	return &Coordinator{
		marketRepo: marketRepo,
		scorer:     scorer,
		engine:     eng,
		logger:     log,
		maxWorkers: cfg.MaxWorkers,
		runTimeout: cfg.RunTimeout,
	}
}

// BuildUniverse merges news-active symbols, baseline names, and the
// watchlist, in that priority order, capped at maxSymbols. Unknown or
// inactive codes are dropped. Order within each tier is alphabetical.
func BuildUniverse(master []entity.Symbol, newsCodes []string, watchlist []string, maxSymbols int) []entity.Symbol {
	byCode := make(map[string]entity.Symbol, len(master))
	var baselineCodes []string
	for _, sym := range master {
		if !sym.Active {
			continue
		}
		byCode[sym.Code] = sym
		if sym.Baseline {
			baselineCodes = append(baselineCodes, sym.Code)
		}
	}

	included := make(map[string]struct{})
	var universe []entity.Symbol

	appendTier := func(codes []string) {
		sorted := append([]string{}, codes...)
		sort.Strings(sorted)
		for _, code := range sorted {
			if len(universe) >= maxSymbols {
				return
			}
			sym, known := byCode[code]
			if !known {
				continue
			}
			if _, dup := included[code]; dup {
				continue
			}
			included[code] = struct{}{}
			universe = append(universe, sym)
		}
	}

	appendTier(newsCodes)
	appendTier(baselineCodes)
	appendTier(watchlist)
	return universe
}

// Execute scores every universe symbol through the worker pool. One
// symbol's failure or panic never stops the batch; symbols not started
// before the run timeout are recorded as skipped.
func (c *Coordinator) Execute(ctx context.Context, universe []entity.Symbol, sentiments map[string]sentiment.SymbolSentiment) Result {
	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	var (
		result Result
		wg     sync.WaitGroup
		mu     sync.Mutex
	)
	semaphore := make(chan struct{}, c.maxWorkers)

	for _, sym := range universe {
		if runCtx.Err() != nil {
			mu.Lock()
			result.Diagnostics = append(result.Diagnostics, entity.RunDiagnostic{
				SymbolCode: sym.Code,
				Stage:      entity.StageScore,
				Message:    fmt.Sprintf("skipped: %v", runCtx.Err()),
			})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			var (
				rec   engine.Recommendation
				diags []entity.RunDiagnostic
			)
			sent := sentimentFor(sentiments, sym.Code)
			if recovered := utils.RunSafe(func() {
				rec, diags = c.processSymbol(runCtx, sym, sent)
			}); recovered != nil {
				c.logger.Error("Symbol scoring panicked",
					logger.StringField("symbol", sym.Code),
					logger.Field("panic", recovered))
				rec = engine.Recommendation{Symbol: sym.Code, Action: entity.ActionInsufficientData}
				diags = append(diags, entity.RunDiagnostic{
					SymbolCode: sym.Code,
					Stage:      entity.StageScore,
					Message:    fmt.Sprintf("panic: %v", recovered),
				})
			}

			mu.Lock()
			result.Scored = append(result.Scored, ScoredSymbol{Symbol: sym, Recommendation: rec})
			result.Diagnostics = append(result.Diagnostics, diags...)
			mu.Unlock()
		})
	}
	wg.Wait()

	SortScored(result.Scored)
	return result
}

func (c *Coordinator) processSymbol(ctx context.Context, sym entity.Symbol, sent *sentiment.SymbolSentiment) (engine.Recommendation, []entity.RunDiagnostic) {
	var diags []entity.RunDiagnostic

	var sig market.Signal
	snap, err := c.marketRepo.GetSnapshot(ctx, sym.YahooTicker)
	if err != nil {
		c.logger.WarnContext(ctx, "Market data unavailable for symbol",
			logger.ErrorField(err), logger.StringField("symbol", sym.Code))
		diags = append(diags, entity.RunDiagnostic{
			SymbolCode: sym.Code,
			Stage:      entity.StageFetch,
			Message:    err.Error(),
		})
		sig = market.AllMissing(sym.Code)
	} else {
		sig = c.scorer.Score(sym.Code, snap)
	}

	return c.engine.Recommend(sym.Code, sent, &sig), diags
}

func sentimentFor(sentiments map[string]sentiment.SymbolSentiment, code string) *sentiment.SymbolSentiment {
	if s, ok := sentiments[code]; ok {
		return &s
	}
	return nil
}

// SortScored orders results by confidence·|composite| descending; symbols
// without a composite sort last; ties break by symbol code ascending.
func SortScored(scored []ScoredSymbol) {
	sort.Slice(scored, func(i, j int) bool {
		ki, iHas := sortKey(scored[i].Recommendation)
		kj, jHas := sortKey(scored[j].Recommendation)
		if iHas != jHas {
			return iHas
		}
		if ki != kj {
			return ki > kj
		}
		return scored[i].Symbol.Code < scored[j].Symbol.Code
	})
}

func sortKey(rec engine.Recommendation) (float64, bool) {
	if rec.Composite == nil {
		return 0, false
	}
	composite := *rec.Composite
	if composite < 0 {
		composite = -composite
	}
	return rec.Confidence * composite, true
}
