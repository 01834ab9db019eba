package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/dto"
	"golang-market-intel/pkg/utils"

	"github.com/dustin/go-humanize"
)

// FormatRunBriefForTelegram formats a pipeline run brief into multiple
// Markdown strings for Telegram, ensuring each message does not exceed the
// maximum length.
func FormatRunBriefForTelegram(brief *dto.RunBrief) []string {
	if brief == nil || len(brief.Recommendations) == 0 {
		return []string{"No recommendations were produced in the last run."}
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder
	part := 1

	// Helper function to start a new message part with the correct header
	startNewPart := func() {
		currentMessage.Reset()
		var header string
		if part == 1 {
			header = fmt.Sprintf("📊 *Market Intel Brief* — %s\n", utils.PrettyDate(brief.GeneratedAt))
			header += fmt.Sprintf("_%s articles, %s mentions, %d symbols scored_\n\n",
				humanize.Comma(int64(brief.Run.ArticleCount)),
				humanize.Comma(int64(brief.Run.MentionCount)),
				brief.Run.SymbolCount)
		} else {
			header = fmt.Sprintf("---*Market Intel Brief Part %d*---\n\n", part)
		}
		currentMessage.WriteString(header)
	}

	startNewPart()

	topN := brief.TopN
	if topN <= 0 || topN > len(brief.Recommendations) {
		topN = len(brief.Recommendations)
	}

	for _, rec := range brief.Recommendations[:topN] {
		entryString := formatRecommendationEntry(rec)

		// We assume a single entry never exceeds the limit on its own.
		if currentMessage.Len()+len(entryString) > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entryString)
	}

	if sectorBlock := formatSectorBlock(brief.Sectors); sectorBlock != "" {
		if currentMessage.Len()+len(sectorBlock) > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(sectorBlock)
	}

	if diagCount := len(brief.Run.Diagnostics); diagCount > 0 {
		currentMessage.WriteString(fmt.Sprintf("\n⚠️ _%d diagnostics recorded this run._\n", diagCount))
	}

	messages = append(messages, currentMessage.String())
	return messages
}

func formatRecommendationEntry(rec entity.Recommendation) string {
	var entryBuilder strings.Builder

	entryBuilder.WriteString(fmt.Sprintf("%s *%d. %s* — %s\n",
		actionIcon(rec.Action), rec.Rank, rec.SymbolCode, rec.Action))

	if rec.Composite != nil {
		entryBuilder.WriteString(fmt.Sprintf("🧮 *Composite:* %+.3f | 🎯 *Confidence:* %.0f%%\n",
			*rec.Composite, rec.Confidence*100))
	} else {
		entryBuilder.WriteString(fmt.Sprintf("🎯 *Confidence:* %.0f%%\n", rec.Confidence*100))
	}

	var parts []string
	if rec.SentimentScore != nil {
		parts = append(parts, fmt.Sprintf("news %+.2f", *rec.SentimentScore))
	}
	if rec.TechnicalScore != nil {
		parts = append(parts, fmt.Sprintf("tech %+.2f", *rec.TechnicalScore))
	}
	if rec.FundamentalScore != nil {
		parts = append(parts, fmt.Sprintf("fund %+.2f", *rec.FundamentalScore))
	}
	if len(parts) > 0 {
		entryBuilder.WriteString(fmt.Sprintf("🧩 *Signals:* %s\n", strings.Join(parts, " | ")))
	}

	if rec.TargetLow != nil && rec.TargetHigh != nil {
		entryBuilder.WriteString(fmt.Sprintf("💰 *Target Band:* %s – %s\n",
			humanize.CommafWithDigits(*rec.TargetLow, 2),
			humanize.CommafWithDigits(*rec.TargetHigh, 2)))
	}

	entryBuilder.WriteString(fmt.Sprintf("📋 *Coverage:* %.0f%%\n", rec.DataCompleteness*100))
	entryBuilder.WriteString("\n")
	return entryBuilder.String()
}

func formatSectorBlock(sectors []dto.SectorMomentum) string {
	if len(sectors) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("🏭 *Sector Momentum:*\n")
	for _, s := range sectors {
		builder.WriteString(fmt.Sprintf("• %s: %+.3f (top: %s, %d covered)\n",
			s.Sector, s.AvgComposite, s.TopSymbol, s.SymbolCount))
	}
	builder.WriteString("\n")
	return builder.String()
}

func actionIcon(action entity.Action) string {
	switch action {
	case entity.ActionBuy:
		return "🟢"
	case entity.ActionSell:
		return "🔴"
	case entity.ActionHold:
		return "🟡"
	default:
		return "⚪️"
	}
}

// FormatRunFailureForTelegram formats a failed run alert.
func FormatRunFailureForTelegram(run *entity.PipelineRun, failedAt time.Time) string {
	return fmt.Sprintf(`📛 [RUN FAILED]
%s
🆔 %s
⚠️ %s
`, utils.PrettyDate(failedAt), run.ID, run.Notes)
}
