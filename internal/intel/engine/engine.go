package engine

import (
	"sort"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/market"
	"golang-market-intel/internal/intel/sentiment"

	"github.com/shopspring/decimal"
)

// Component names used in rationale factors.
const (
	ComponentSentiment   = "sentiment"
	ComponentTechnical   = "technical"
	ComponentFundamental = "fundamental"
)

// Factor is one component's contribution to a composite score. Weight is
// the renormalized weight actually applied.
type Factor struct {
	Component    string  `json:"component"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Recommendation is the engine's verdict for one symbol. Composite is nil
// when no component was available.
type Recommendation struct {
	Symbol           string
	Action           entity.Action
	Composite        *float64
	Confidence       float64
	SentimentScore   *float64
	TechnicalScore   *float64
	FundamentalScore *float64
	DataCompleteness float64
	Rationale        []Factor
	TargetLow        *float64
	TargetHigh       *float64
}

// Engine fuses sentiment and market signals into actionable
// recommendations.
type Engine struct {
	weights       config.Weights
	threshold     float64
	minConfidence float64
}

// New creates a recommendation engine from validated config.
func New(cfg config.Engine) *Engine {
	return &Engine{
		weights:       cfg.Weights,
		threshold:     cfg.ActionThreshold,
		minConfidence: cfg.MinConfidence,
	}
}

type component struct {
	name       string
	baseWeight float64
	value      float64
	confidence float64
}

// Recommend fuses whatever components exist for a symbol. Missing
// components never contribute zero: their weight is renormalized away and
// the missing fraction discounts confidence. With nothing present the
// action is INSUFFICIENT_DATA at confidence 0.
func (e *Engine) Recommend(symbol string, sent *sentiment.SymbolSentiment, sig *market.Signal) Recommendation {
	rec := Recommendation{Symbol: symbol, Action: entity.ActionInsufficientData}

	var components []component
	if sent != nil {
		components = append(components, component{
			name:       ComponentSentiment,
			baseWeight: e.weights.Sentiment,
			value:      sent.Score,
			confidence: sent.Confidence,
		})
		score := sent.Score
		rec.SentimentScore = &score
	}
	if sig != nil {
		rec.DataCompleteness = sig.DataCompleteness
		if sig.Technical != nil {
			components = append(components, component{
				name:       ComponentTechnical,
				baseWeight: e.weights.Technical,
				value:      *sig.Technical,
				confidence: sig.TechnicalCompleteness,
			})
			rec.TechnicalScore = sig.Technical
		}
		if sig.Fundamental != nil {
			components = append(components, component{
				name:       ComponentFundamental,
				baseWeight: e.weights.Fundamental,
				value:      *sig.Fundamental,
				confidence: sig.FundamentalCompleteness,
			})
			rec.FundamentalScore = sig.Fundamental
		}
	}

	if len(components) == 0 {
		return rec
	}

	var weightTotal float64
	for _, c := range components {
		weightTotal += c.baseWeight
	}

	var composite, confidence float64
	for _, c := range components {
		w := c.baseWeight / weightTotal
		composite += w * c.value
		confidence += w * c.confidence
		rec.Rationale = append(rec.Rationale, Factor{
			Component:    c.name,
			Weight:       w,
			Value:        c.value,
			Contribution: w * c.value,
		})
	}
	confidence *= float64(len(components)) / 3.0

	sort.Slice(rec.Rationale, func(i, j int) bool {
		ci, cj := abs(rec.Rationale[i].Contribution), abs(rec.Rationale[j].Contribution)
		if ci != cj {
			return ci > cj
		}
		return rec.Rationale[i].Component < rec.Rationale[j].Component
	})

	rec.Composite = &composite
	rec.Confidence = confidence
	rec.Action = e.action(composite, confidence)

	if rec.Action == entity.ActionBuy && sig != nil {
		rec.TargetLow, rec.TargetHigh = targetBand(sig.LastClose, sig.ValueGap)
	}
	return rec
}

// action applies the decision thresholds. SELL intentionally skips the
// confidence floor: a low-confidence warning is still a warning.
func (e *Engine) action(composite, confidence float64) entity.Action {
	switch {
	case composite > e.threshold && confidence >= e.minConfidence:
		return entity.ActionBuy
	case composite < -e.threshold:
		return entity.ActionSell
	default:
		return entity.ActionHold
	}
}

// targetBand derives an indicative price range for a BUY: the close
// stretched by the valuation gap, banded ±15%. Requires a positive gap and
// a known close.
func targetBand(lastClose, valueGap *float64) (*float64, *float64) {
	if lastClose == nil || valueGap == nil || *valueGap <= 0 {
		return nil, nil
	}
	mid := decimal.NewFromFloat(*lastClose).Mul(decimal.NewFromFloat(1 + *valueGap))
	low := mid.Mul(decimal.NewFromFloat(0.85)).Round(2).InexactFloat64()
	high := mid.Mul(decimal.NewFromFloat(1.15)).Round(2).InexactFloat64()
	return &low, &high
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
