package sentiment

import (
	"math"
	"time"
)

// Sample is one article's sentiment attributed to one resolved symbol.
type Sample struct {
	Symbol       string
	Polarity     float64
	Magnitude    float64
	SourceWeight float64
	ArticleID    uint
	PublishedAt  time.Time
}

// SymbolSentiment is the fused sentiment for one symbol across all samples
// in a run. Symbols with no samples have no entry: absence of evidence is
// not neutral evidence.
type SymbolSentiment struct {
	Symbol      string  `json:"symbol"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	SampleCount int     `json:"sample_count"`
}

// Aggregator folds per-article samples into per-symbol sentiment.
type Aggregator struct {
	saturationSamples int
}

// NewAggregator creates an aggregator. Confidence saturates once a symbol
// has saturationSamples samples.
func NewAggregator(saturationSamples int) *Aggregator {
	if saturationSamples < 1 {
		saturationSamples = 1
	}
	return &Aggregator{saturationSamples: saturationSamples}
}

type accumulator struct {
	weightedSum float64
	weightTotal float64
	sourceSum   float64
	count       int
}

// Aggregate computes, per symbol:
//
//	score      = Σ(polarity·magnitude·source_weight) / Σ(magnitude·source_weight)
//	confidence = min(1, n/K) · mean(source_weight)
//
// The result is independent of sample order.
func (a *Aggregator) Aggregate(samples []Sample) map[string]SymbolSentiment {
	accs := make(map[string]*accumulator)
	for _, s := range samples {
		acc, ok := accs[s.Symbol]
		if !ok {
			acc = &accumulator{}
			accs[s.Symbol] = acc
		}
		w := s.Magnitude * s.SourceWeight
		acc.weightedSum += s.Polarity * w
		acc.weightTotal += w
		acc.sourceSum += s.SourceWeight
		acc.count++
	}

	out := make(map[string]SymbolSentiment, len(accs))
	for symbol, acc := range accs {
		score := 0.0
		if acc.weightTotal > 0 {
			score = acc.weightedSum / acc.weightTotal
		}
		saturation := math.Min(1, float64(acc.count)/float64(a.saturationSamples))
		confidence := saturation * (acc.sourceSum / float64(acc.count))
		out[symbol] = SymbolSentiment{
			Symbol:      symbol,
			Score:       clampFloat(score, -1, 1),
			Confidence:  clampFloat(confidence, 0, 1),
			SampleCount: acc.count,
		}
	}
	return out
}
