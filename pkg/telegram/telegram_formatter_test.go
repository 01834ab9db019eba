package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/dto"
	"golang-market-intel/pkg/utils"
)

func sampleBrief() *dto.RunBrief {
	return &dto.RunBrief{
		Run: &entity.PipelineRun{
			ID:           "run-1",
			Status:       entity.RunStatusCompleted,
			ArticleCount: 87,
			MentionCount: 1234,
			SymbolCount:  42,
			Diagnostics: []entity.RunDiagnostic{
				{Stage: entity.StageFetch, SymbolCode: "PAYTM", Message: "provider timeout"},
				{Stage: entity.StageScore, SymbolCode: "ZOMATO", Message: "too few candles"},
			},
		},
		Recommendations: []entity.Recommendation{
			{
				Rank:             1,
				SymbolCode:       "RELIANCE",
				Sector:           "Energy",
				Action:           entity.ActionBuy,
				Composite:        utils.ToPointer(0.52),
				Confidence:       0.74,
				SentimentScore:   utils.ToPointer(0.8),
				TechnicalScore:   utils.ToPointer(0.41),
				DataCompleteness: 1.0,
				TargetLow:        utils.ToPointer(2650.0),
				TargetHigh:       utils.ToPointer(3580.0),
			},
			{
				Rank:             2,
				SymbolCode:       "TATASTEEL",
				Sector:           "Metals",
				Action:           entity.ActionSell,
				Composite:        utils.ToPointer(-0.31),
				Confidence:       0.55,
				TechnicalScore:   utils.ToPointer(-0.62),
				DataCompleteness: 0.5,
			},
			{
				Rank:       3,
				SymbolCode: "PAYTM",
				Action:     entity.ActionInsufficientData,
				Confidence: 0,
			},
		},
		Sectors: []dto.SectorMomentum{
			{Sector: "Energy", AvgComposite: 0.412, TopSymbol: "RELIANCE", SymbolCount: 3},
		},
		GeneratedAt: time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC),
	}
}

func TestFormatRunBriefForTelegram_SinglePart(t *testing.T) {
	messages := FormatRunBriefForTelegram(sampleBrief())

	require.Len(t, messages, 1)
	msg := messages[0]

	assert.Contains(t, msg, "📊 *Market Intel Brief*")
	assert.Contains(t, msg, "87 articles, 1,234 mentions, 42 symbols scored")

	assert.Contains(t, msg, "🟢 *1. RELIANCE* — BUY")
	assert.Contains(t, msg, "*Composite:* +0.520 | 🎯 *Confidence:* 74%")
	assert.Contains(t, msg, "*Signals:* news +0.80 | tech +0.41")
	assert.Contains(t, msg, "*Target Band:* 2,650 – 3,580")

	assert.Contains(t, msg, "🔴 *2. TATASTEEL* — SELL")
	assert.Contains(t, msg, "*Composite:* -0.310")

	// no composite line for the data-starved symbol, only confidence
	assert.Contains(t, msg, "⚪️ *3. PAYTM* — INSUFFICIENT_DATA")
	assert.Contains(t, msg, "*Coverage:* 0%")

	assert.Contains(t, msg, "🏭 *Sector Momentum:*")
	assert.Contains(t, msg, "• Energy: +0.412 (top: RELIANCE, 3 covered)")
	assert.Contains(t, msg, "_2 diagnostics recorded this run._")
}

func TestFormatRunBriefForTelegram_SplitsLongReports(t *testing.T) {
	brief := sampleBrief()
	brief.Sectors = nil
	brief.Run.Diagnostics = nil
	brief.Recommendations = nil
	for i := 0; i < 200; i++ {
		brief.Recommendations = append(brief.Recommendations, entity.Recommendation{
			Rank:             i + 1,
			SymbolCode:       fmt.Sprintf("SYMBOL%03d", i),
			Action:           entity.ActionHold,
			Composite:        utils.ToPointer(0.01),
			Confidence:       0.4,
			TechnicalScore:   utils.ToPointer(0.02),
			DataCompleteness: 0.5,
		})
	}

	messages := FormatRunBriefForTelegram(brief)

	require.Greater(t, len(messages), 1)
	assert.Contains(t, messages[1], "*Market Intel Brief Part 2*")
	for _, msg := range messages {
		assert.LessOrEqual(t, len(msg), 4096)
	}

	joined := strings.Join(messages, "\n")
	assert.Equal(t, 1, strings.Count(joined, "SYMBOL000"))
	assert.Equal(t, 1, strings.Count(joined, "SYMBOL199"))
}

func TestFormatRunBriefForTelegram_EmptyRun(t *testing.T) {
	empty := []string{"No recommendations were produced in the last run."}

	assert.Equal(t, empty, FormatRunBriefForTelegram(nil))

	brief := sampleBrief()
	brief.Recommendations = nil
	assert.Equal(t, empty, FormatRunBriefForTelegram(brief))
}

func TestFormatRunBriefForTelegram_HonorsTopN(t *testing.T) {
	brief := sampleBrief()
	brief.TopN = 2

	messages := FormatRunBriefForTelegram(brief)

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "RELIANCE")
	assert.Contains(t, messages[0], "TATASTEEL")
	assert.NotContains(t, messages[0], "*3. PAYTM*")
}

func TestFormatRunFailureForTelegram(t *testing.T) {
	run := &entity.PipelineRun{
		ID:     "0e6f4c1a",
		Status: entity.RunStatusFailed,
		Notes:  "failed to load symbol master: connection refused",
	}

	msg := FormatRunFailureForTelegram(run, time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC))

	assert.Contains(t, msg, "[RUN FAILED]")
	assert.Contains(t, msg, "0e6f4c1a")
	assert.Contains(t, msg, "connection refused")
}
