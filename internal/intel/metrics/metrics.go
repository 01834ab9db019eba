package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"trigger", "status"}, // status: completed|failed
	)

	PipelineRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_intel_pipeline_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"trigger"},
	)

	PipelineLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_intel_pipeline_last_run_timestamp",
			Help: "Unix timestamp of the last pipeline run",
		},
		[]string{"trigger"},
	)

	// Ingestion metrics
	ArticlesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_articles_ingested_total",
			Help: "Total number of news articles ingested",
		},
		[]string{"source"},
	)

	MentionsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_mentions_resolved_total",
			Help: "Total number of entity mentions processed by the resolver",
		},
		[]string{"outcome"}, // outcome: exact|fuzzy|unresolved
	)

	// Provider metrics
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_provider_requests_total",
			Help: "Total number of market data provider requests",
		},
		[]string{"endpoint", "status"}, // status: success|error|rate_limited
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_intel_provider_latency_seconds",
			Help:    "Market data provider request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	SnapshotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_snapshot_cache_total",
			Help: "Total number of market snapshot cache lookups",
		},
		[]string{"result"}, // result: hit|miss
	)

	// Sentiment metrics
	SentimentSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_sentiment_samples_total",
			Help: "Total number of sentiment samples produced",
		},
		[]string{"model"},
	)

	// Recommendation metrics
	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_intel_recommendations_total",
			Help: "Total number of recommendations emitted",
		},
		[]string{"action"}, // action: BUY|SELL|HOLD|INSUFFICIENT_DATA
	)

	UniverseSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_intel_universe_size",
			Help: "Number of symbols scored in the last pipeline run",
		},
		[]string{"trigger"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Pipeline metrics
	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(PipelineRunDuration)
	prometheus.MustRegister(PipelineLastRun)

	// Ingestion metrics
	prometheus.MustRegister(ArticlesIngested)
	prometheus.MustRegister(MentionsResolved)

	// Provider metrics
	prometheus.MustRegister(ProviderRequests)
	prometheus.MustRegister(ProviderLatency)
	prometheus.MustRegister(SnapshotCache)

	// Sentiment metrics
	prometheus.MustRegister(SentimentSamples)

	// Recommendation metrics
	prometheus.MustRegister(Recommendations)
	prometheus.MustRegister(UniverseSize)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records the outcome of one pipeline run
func RecordPipelineRun(trigger string, duration time.Duration, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}

	PipelineRuns.WithLabelValues(trigger, status).Inc()
	PipelineRunDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	PipelineLastRun.WithLabelValues(trigger).SetToCurrentTime()
}

// RecordProviderRequest records one market data provider request
func RecordProviderRequest(endpoint string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ProviderRequests.WithLabelValues(endpoint, status).Inc()
	ProviderLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordResolution records one resolver outcome
func RecordResolution(outcome string) {
	MentionsResolved.WithLabelValues(outcome).Inc()
}

// RecordRecommendation records one emitted recommendation
func RecordRecommendation(action string) {
	Recommendations.WithLabelValues(action).Inc()
}
