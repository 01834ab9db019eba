package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/market"
	"golang-market-intel/internal/intel/sentiment"
	"golang-market-intel/pkg/utils"
)

func testEngine() *Engine {
	return New(config.Engine{
		Weights:         config.Weights{Sentiment: 0.40, Technical: 0.35, Fundamental: 0.25},
		ActionThreshold: 0.15,
		MinConfidence:   0.30,
	})
}

func TestEngine_Recommend_AllComponents(t *testing.T) {
	e := testEngine()
	sent := &sentiment.SymbolSentiment{Symbol: "TCS", Score: 0.6, Confidence: 0.8, SampleCount: 4}
	sig := &market.Signal{
		Symbol:                  "TCS",
		Technical:               utils.ToPointer(0.5),
		Fundamental:             utils.ToPointer(0.4),
		TechnicalCompleteness:   1.0,
		FundamentalCompleteness: 1.0,
		DataCompleteness:        1.0,
	}

	rec := e.Recommend("TCS", sent, sig)

	require.NotNil(t, rec.Composite)
	// 0.40*0.6 + 0.35*0.5 + 0.25*0.4
	assert.InDelta(t, 0.515, *rec.Composite, 1e-9)
	// (0.40*0.8 + 0.35*1 + 0.25*1) * 3/3
	assert.InDelta(t, 0.92, rec.Confidence, 1e-9)
	assert.Equal(t, entity.ActionBuy, rec.Action)
	assert.InDelta(t, 1.0, rec.DataCompleteness, 1e-9)

	require.Len(t, rec.Rationale, 3)
	assert.Equal(t, ComponentSentiment, rec.Rationale[0].Component)
	assert.Equal(t, ComponentTechnical, rec.Rationale[1].Component)
	assert.Equal(t, ComponentFundamental, rec.Rationale[2].Component)
	assert.InDelta(t, 0.24, rec.Rationale[0].Contribution, 1e-9)
	assert.InDelta(t, 0.40, rec.Rationale[0].Weight, 1e-9)
}

func TestEngine_Recommend_MissingFundamentalRenormalizes(t *testing.T) {
	e := testEngine()
	sent := &sentiment.SymbolSentiment{Symbol: "RELIANCE", Score: 0.62, Confidence: 0.8}
	sig := &market.Signal{
		Symbol:                "RELIANCE",
		Technical:             utils.ToPointer(0.41),
		TechnicalCompleteness: 0.75,
		DataCompleteness:      0.375,
	}

	rec := e.Recommend("RELIANCE", sent, sig)

	require.NotNil(t, rec.Composite)
	// (0.40*0.62 + 0.35*0.41) / 0.75
	assert.InDelta(t, 0.522, *rec.Composite, 1e-3)
	assert.InDelta(t, 0.5178, rec.Confidence, 1e-3)
	assert.Equal(t, entity.ActionBuy, rec.Action)
	assert.Nil(t, rec.FundamentalScore)

	require.Len(t, rec.Rationale, 2)
	assert.Equal(t, ComponentSentiment, rec.Rationale[0].Component)
	assert.InDelta(t, 0.5333, rec.Rationale[0].Weight, 1e-3)
	assert.Equal(t, ComponentTechnical, rec.Rationale[1].Component)
	assert.InDelta(t, 0.4667, rec.Rationale[1].Weight, 1e-3)
}

func TestEngine_Recommend_BuyNeedsConfidence(t *testing.T) {
	e := testEngine()

	confident := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: 0.9, Confidence: 0.95}, nil)
	assert.Equal(t, entity.ActionBuy, confident.Action)

	hesitant := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: 0.9, Confidence: 0.6}, nil)
	require.NotNil(t, hesitant.Composite)
	assert.InDelta(t, 0.9, *hesitant.Composite, 1e-9)
	assert.Equal(t, entity.ActionHold, hesitant.Action)
}

func TestEngine_Recommend_SellSkipsConfidenceFloor(t *testing.T) {
	e := testEngine()

	rec := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: -0.9, Confidence: 0.15}, nil)

	assert.Equal(t, entity.ActionSell, rec.Action)
	assert.Less(t, rec.Confidence, 0.30)
}

func TestEngine_Recommend_ThresholdIsStrict(t *testing.T) {
	e := testEngine()

	at := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: 0.15, Confidence: 1.0}, nil)
	assert.Equal(t, entity.ActionHold, at.Action)

	below := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: -0.15, Confidence: 1.0}, nil)
	assert.Equal(t, entity.ActionHold, below.Action)
}

func TestEngine_Recommend_NoComponents(t *testing.T) {
	e := testEngine()

	rec := e.Recommend("GHOST", nil, nil)
	assert.Equal(t, entity.ActionInsufficientData, rec.Action)
	assert.Nil(t, rec.Composite)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.Rationale)

	allMissing := market.AllMissing("GHOST")
	rec = e.Recommend("GHOST", nil, &allMissing)
	assert.Equal(t, entity.ActionInsufficientData, rec.Action)
	assert.Nil(t, rec.Composite)
}

func TestEngine_Recommend_RationaleSortedByContribution(t *testing.T) {
	e := testEngine()
	sent := &sentiment.SymbolSentiment{Score: 0.1, Confidence: 0.9}
	sig := &market.Signal{
		Technical:               utils.ToPointer(-0.9),
		Fundamental:             utils.ToPointer(0.3),
		TechnicalCompleteness:   1,
		FundamentalCompleteness: 1,
	}

	rec := e.Recommend("ANY", sent, sig)

	require.Len(t, rec.Rationale, 3)
	assert.Equal(t, ComponentTechnical, rec.Rationale[0].Component)
	assert.Equal(t, ComponentFundamental, rec.Rationale[1].Component)
	assert.Equal(t, ComponentSentiment, rec.Rationale[2].Component)
	for i := 1; i < len(rec.Rationale); i++ {
		assert.GreaterOrEqual(t,
			abs(rec.Rationale[i-1].Contribution),
			abs(rec.Rationale[i].Contribution))
	}
}

func TestEngine_Recommend_TargetBandOnBuy(t *testing.T) {
	e := testEngine()
	sent := &sentiment.SymbolSentiment{Score: 0.8, Confidence: 0.9}
	sig := &market.Signal{
		Technical:               utils.ToPointer(0.6),
		Fundamental:             utils.ToPointer(0.5),
		TechnicalCompleteness:   1,
		FundamentalCompleteness: 1,
		DataCompleteness:        1,
		LastClose:               utils.ToPointer(100.0),
		ValueGap:                utils.ToPointer(0.2),
	}

	rec := e.Recommend("TCS", sent, sig)

	require.Equal(t, entity.ActionBuy, rec.Action)
	require.NotNil(t, rec.TargetLow)
	require.NotNil(t, rec.TargetHigh)
	// mid 120, banded 15% both ways
	assert.InDelta(t, 102.0, *rec.TargetLow, 1e-9)
	assert.InDelta(t, 138.0, *rec.TargetHigh, 1e-9)
}

func TestEngine_Recommend_NoTargetWithoutPositiveGap(t *testing.T) {
	e := testEngine()
	sent := &sentiment.SymbolSentiment{Score: 0.8, Confidence: 0.9}

	tests := []struct {
		name string
		gap  *float64
	}{
		{"negative gap", utils.ToPointer(-0.1)},
		{"zero gap", utils.ToPointer(0.0)},
		{"unknown gap", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := &market.Signal{
				Technical:             utils.ToPointer(0.6),
				TechnicalCompleteness: 1,
				LastClose:             utils.ToPointer(100.0),
				ValueGap:              tt.gap,
			}

			rec := e.Recommend("TCS", sent, sig)

			require.Equal(t, entity.ActionBuy, rec.Action)
			assert.Nil(t, rec.TargetLow)
			assert.Nil(t, rec.TargetHigh)
		})
	}
}

func TestEngine_Recommend_NoTargetOnSell(t *testing.T) {
	e := testEngine()
	sig := &market.Signal{
		Technical:             utils.ToPointer(-0.8),
		TechnicalCompleteness: 1,
		LastClose:             utils.ToPointer(100.0),
		ValueGap:              utils.ToPointer(0.3),
	}

	rec := e.Recommend("ANY", &sentiment.SymbolSentiment{Score: -0.9, Confidence: 0.9}, sig)

	require.Equal(t, entity.ActionSell, rec.Action)
	assert.Nil(t, rec.TargetLow)
	assert.Nil(t, rec.TargetHigh)
}
