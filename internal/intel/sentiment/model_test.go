package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconModel_Name(t *testing.T) {
	assert.Equal(t, "lexicon", NewLexiconModel(0.5).Name())
}

func TestLexiconModel_Analyze_Polarity(t *testing.T) {
	m := NewLexiconModel(0.5)

	tests := []struct {
		name      string
		title     string
		summary   string
		polarity  float64
		magnitude float64
	}{
		{
			name:      "positive headline",
			title:     "Infosys profit surges",
			summary:   "Strong growth and record profit beat estimates",
			polarity:  1.0,
			magnitude: 1.0,
		},
		{
			name:      "negative headline",
			title:     "Shares plunge amid fraud probe",
			polarity:  -1.0,
			magnitude: 0.6,
		},
		{
			name:      "mixed leans negative",
			title:     "Profit rises but concerns over weak demand",
			polarity:  -1.0 / 3.0,
			magnitude: 0.6,
		},
		{
			name:      "upper case input",
			title:     "PROFIT SURGES",
			polarity:  1.0,
			magnitude: 0.4,
		},
		{
			name:  "no signal words",
			title: "Quarterly results announced on Friday",
		},
		{
			name: "empty input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Analyze(context.Background(), tt.title, tt.summary)

			require.NoError(t, err)
			assert.InDelta(t, tt.polarity, res.Polarity, 1e-9)
			assert.InDelta(t, tt.magnitude, res.Magnitude, 1e-9)
		})
	}
}

func TestLexiconModel_Analyze_UncertaintyDampsPolarity(t *testing.T) {
	title := "Stock might gain amid uncertainty"

	plain, err := NewLexiconModel(0).Analyze(context.Background(), title, "")
	require.NoError(t, err)
	damped, err := NewLexiconModel(0.5).Analyze(context.Background(), title, "")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, plain.Polarity, 1e-9)
	// two hedge words: 1 / (1 + 0.5*2)
	assert.InDelta(t, 0.5, damped.Polarity, 1e-9)
	assert.Less(t, damped.Polarity, plain.Polarity)
	assert.Equal(t, plain.Magnitude, damped.Magnitude)
}

func TestLexiconModel_Analyze_MagnitudeSaturation(t *testing.T) {
	m := NewLexiconModel(0.5)

	tests := []struct {
		name      string
		title     string
		magnitude float64
	}{
		{"two terms", "profit beat", 0.4},
		{"five terms saturate", "gain rally surge jump record", 1.0},
		{"beyond saturation stays capped", "gain rally surge jump record profit growth", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Analyze(context.Background(), tt.title, "")

			require.NoError(t, err)
			assert.InDelta(t, tt.magnitude, res.Magnitude, 1e-9)
			assert.InDelta(t, 1.0, res.Polarity, 1e-9)
		})
	}
}
