package config

import (
	"fmt"
	"math"
	"time"

	"golang-market-intel/pkg/config"
)

// News holds configuration for article collection.
type News struct {
	Feeds           []string           `mapstructure:"feeds"`
	SearchTerms     []string           `mapstructure:"search_terms"`
	MaxAge          time.Duration      `mapstructure:"max_age"`
	MinSummaryLen   int                `mapstructure:"min_summary_len"`
	SeenCacheTTL    time.Duration      `mapstructure:"seen_cache_ttl"`
	RequestTimeout  time.Duration      `mapstructure:"request_timeout"`
	SourceWeights   map[string]float64 `mapstructure:"source_weights"`
	DefaultWeight   float64            `mapstructure:"default_source_weight"`
	EnrichSummaries bool               `mapstructure:"enrich_summaries"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Sentiment holds configuration for sentiment scoring and aggregation.
type Sentiment struct {
	Provider          string  `mapstructure:"provider"`
	SaturationSamples int     `mapstructure:"saturation_samples"`
	Gemini            Gemini  `mapstructure:"gemini"`
	DampUncertainty   float64 `mapstructure:"damp_uncertainty"`
}

// MarketData holds the configuration for the market data provider.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	CandleRange         string        `mapstructure:"candle_range"`
}

// Weights holds the fusion weights for the recommendation engine.
type Weights struct {
	Sentiment   float64 `mapstructure:"sentiment"`
	Technical   float64 `mapstructure:"technical"`
	Fundamental float64 `mapstructure:"fundamental"`
}

// Engine holds configuration for the recommendation engine.
type Engine struct {
	Weights         Weights `mapstructure:"weights"`
	ActionThreshold float64 `mapstructure:"action_threshold"`
	MinConfidence   float64 `mapstructure:"min_confidence"`
}

// Resolver holds configuration for symbol resolution.
type Resolver struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
}

// Pipeline holds configuration for pipeline execution.
type Pipeline struct {
	MaxWorkers  int           `mapstructure:"max_workers"`
	MaxSymbols  int           `mapstructure:"max_symbols"`
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
	Schedule    string        `mapstructure:"schedule"`
	TopNReport  int           `mapstructure:"top_n_report"`
	Watchlist   []string      `mapstructure:"watchlist"`
	AutoMigrate bool          `mapstructure:"auto_migrate"`
}

// Config holds the full configuration for the intel service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Telegram   config.Telegram `mapstructure:"telegram"`
	News       News            `mapstructure:"news"`
	Sentiment  Sentiment       `mapstructure:"sentiment"`
	MarketData MarketData      `mapstructure:"market_data"`
	Engine     Engine          `mapstructure:"engine"`
	Resolver   Resolver        `mapstructure:"resolver"`
	Pipeline   Pipeline        `mapstructure:"pipeline"`
}

// Load loads the intel service configuration from the given path and
// validates it. Invalid configuration is fatal: the caller must not start.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.News.MaxAge == 0 {
		c.News.MaxAge = 36 * time.Hour
	}
	if c.News.SeenCacheTTL == 0 {
		c.News.SeenCacheTTL = 6 * time.Hour
	}
	if c.News.RequestTimeout == 0 {
		c.News.RequestTimeout = 15 * time.Second
	}
	if c.News.MinSummaryLen == 0 {
		c.News.MinSummaryLen = 80
	}
	if c.News.DefaultWeight == 0 {
		c.News.DefaultWeight = 0.5
	}
	if c.Sentiment.Provider == "" {
		c.Sentiment.Provider = "lexicon"
	}
	if c.Sentiment.SaturationSamples == 0 {
		c.Sentiment.SaturationSamples = 5
	}
	if c.Sentiment.DampUncertainty == 0 {
		c.Sentiment.DampUncertainty = 0.5
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.MaxRequestPerMinute == 0 {
		c.MarketData.MaxRequestPerMinute = 60
	}
	if c.MarketData.RequestTimeout == 0 {
		c.MarketData.RequestTimeout = 10 * time.Second
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = time.Hour
	}
	if c.MarketData.CandleRange == "" {
		c.MarketData.CandleRange = "1y"
	}
	if c.Engine.Weights == (Weights{}) {
		c.Engine.Weights = Weights{Sentiment: 0.40, Technical: 0.35, Fundamental: 0.25}
	}
	if c.Engine.ActionThreshold == 0 {
		c.Engine.ActionThreshold = 0.15
	}
	if c.Engine.MinConfidence == 0 {
		c.Engine.MinConfidence = 0.30
	}
	if c.Resolver.FuzzyThreshold == 0 {
		c.Resolver.FuzzyThreshold = 0.88
	}
	if c.Pipeline.MaxWorkers == 0 {
		c.Pipeline.MaxWorkers = 6
	}
	if c.Pipeline.MaxSymbols == 0 {
		c.Pipeline.MaxSymbols = 120
	}
	if c.Pipeline.RunTimeout == 0 {
		c.Pipeline.RunTimeout = 10 * time.Minute
	}
	if c.Pipeline.Schedule == "" {
		c.Pipeline.Schedule = "30 7 * * 1-5"
	}
	if c.Pipeline.TopNReport == 0 {
		c.Pipeline.TopNReport = 15
	}
}

// Validate checks cross-field constraints that would make a run meaningless.
func (c *Config) Validate() error {
	w := c.Engine.Weights
	if w.Sentiment <= 0 || w.Technical <= 0 || w.Fundamental <= 0 {
		return fmt.Errorf("engine.weights must all be positive, got %+v", w)
	}
	if sum := w.Sentiment + w.Technical + w.Fundamental; math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("engine.weights must sum to 1.0, got %.6f", sum)
	}
	if c.Engine.ActionThreshold <= 0 || c.Engine.ActionThreshold >= 1 {
		return fmt.Errorf("engine.action_threshold must be in (0,1), got %.3f", c.Engine.ActionThreshold)
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be in [0,1], got %.3f", c.Engine.MinConfidence)
	}
	if c.Resolver.FuzzyThreshold <= 0 || c.Resolver.FuzzyThreshold > 1 {
		return fmt.Errorf("resolver.fuzzy_threshold must be in (0,1], got %.3f", c.Resolver.FuzzyThreshold)
	}
	if c.Pipeline.MaxWorkers < 1 {
		return fmt.Errorf("pipeline.max_workers must be >= 1, got %d", c.Pipeline.MaxWorkers)
	}
	if c.Pipeline.MaxSymbols < 1 {
		return fmt.Errorf("pipeline.max_symbols must be >= 1, got %d", c.Pipeline.MaxSymbols)
	}
	if c.Sentiment.SaturationSamples < 1 {
		return fmt.Errorf("sentiment.saturation_samples must be >= 1, got %d", c.Sentiment.SaturationSamples)
	}
	if c.Sentiment.Provider != "lexicon" && c.Sentiment.Provider != "gemini" {
		return fmt.Errorf("sentiment.provider must be lexicon or gemini, got %q", c.Sentiment.Provider)
	}
	if c.Sentiment.Provider == "gemini" && c.Sentiment.Gemini.APIKey == "" {
		return fmt.Errorf("sentiment.gemini.api_key is required when provider is gemini")
	}
	for source, weight := range c.News.SourceWeights {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("news.source_weights[%s] must be in [0,1], got %.3f", source, weight)
		}
	}
	return nil
}

// SourceWeight returns the reliability weight for a news source, falling
// back to the default for unknown sources.
func (c *Config) SourceWeight(source string) float64 {
	if w, ok := c.News.SourceWeights[source]; ok {
		return w
	}
	return c.News.DefaultWeight
}
