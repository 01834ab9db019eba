package ner

import (
	"regexp"
	"sort"
	"strings"
)

// Mention is a candidate company reference found in article text.
type Mention struct {
	Raw   string
	Start int
	End   int
}

// Extractor finds candidate company mentions in free text.
type Extractor interface {
	Extract(text string) []Mention
}

var (
	// NSE:TCS, BSE: TCS
	exchangePrefixPattern = regexp.MustCompile(`\b(?:NSE|BSE):\s?([A-Z][A-Z0-9&-]{1,11})\b`)
	// TCS.NS, TATAMOTORS.BO
	exchangeSuffixPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9&-]{1,11})\.(?:NS|BO)\b`)
	// bare upper-case ticker tokens: RIL, HDFCBANK, M&M
	tickerPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9&-]{1,11}\b`)
	// capitalized multi-word company phrases: Tata Motors, Reliance Industries Ltd
	phrasePattern = regexp.MustCompile(`\b[A-Z][A-Za-z&'-]+(?: [A-Z][A-Za-z&'.-]+){1,3}`)
)

// Finance vocabulary that looks like a ticker but never is one.
var tickerStopwords = map[string]struct{}{
	"A": {}, "I": {}, "CEO": {}, "CFO": {}, "CTO": {}, "MD": {}, "IPO": {},
	"GDP": {}, "RBI": {}, "SEBI": {}, "NSE": {}, "BSE": {}, "US": {}, "UK": {},
	"USD": {}, "INR": {}, "EPS": {}, "PE": {}, "ROE": {}, "YOY": {}, "QOQ": {},
	"EBITDA": {}, "PAT": {}, "FY": {}, "FY24": {}, "FY25": {}, "FY26": {},
	"Q1": {}, "Q2": {}, "Q3": {}, "Q4": {}, "AI": {}, "IT": {}, "EV": {},
	"ETF": {}, "FII": {}, "DII": {}, "NIFTY": {}, "SENSEX": {}, "GST": {},
	"LIVE": {}, "NEWS": {}, "BUY": {}, "SELL": {}, "HOLD": {}, "INDIA": {},
}

// Leading words that start generic, non-company capitalized phrases.
var phraseStopPrefixes = []string{
	"The ", "This ", "That ", "These ", "Those ", "In ", "On ", "At ", "For ",
	"After ", "Before ", "According ", "Why ", "How ", "What ", "When ",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"January", "February", "March", "April", "June", "July", "August",
	"September", "October", "November", "December",
	"Reserve Bank", "Union Budget", "Supreme Court", "New Delhi", "Wall Street",
	"Dalal Street", "Stock Market", "Sensex ", "Nifty ",
}

type patternExtractor struct{}

// NewPatternExtractor returns the default regex-based mention extractor.
// It recognizes exchange-qualified tickers, bare upper-case tickers, and
// capitalized company phrases; overlapping candidates keep the longest span.
func NewPatternExtractor() Extractor {
	return &patternExtractor{}
}

func (e *patternExtractor) Extract(text string) []Mention {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []Mention

	for _, idx := range exchangePrefixPattern.FindAllStringSubmatchIndex(text, -1) {
		// submatch 1 is the ticker without the exchange prefix
		candidates = append(candidates, Mention{
			Raw:   text[idx[2]:idx[3]],
			Start: idx[0],
			End:   idx[1],
		})
	}
	for _, idx := range exchangeSuffixPattern.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, Mention{
			Raw:   text[idx[2]:idx[3]],
			Start: idx[0],
			End:   idx[1],
		})
	}
	for _, idx := range tickerPattern.FindAllStringIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		if _, stop := tickerStopwords[raw]; stop {
			continue
		}
		if len(raw) < 2 {
			continue
		}
		candidates = append(candidates, Mention{Raw: raw, Start: idx[0], End: idx[1]})
	}
	for _, idx := range phrasePattern.FindAllStringIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		if hasStopPrefix(raw) {
			continue
		}
		candidates = append(candidates, Mention{Raw: raw, Start: idx[0], End: idx[1]})
	}

	return dedupeLongest(candidates)
}

func hasStopPrefix(phrase string) bool {
	for _, prefix := range phraseStopPrefixes {
		if strings.HasPrefix(phrase, prefix) {
			return true
		}
	}
	return false
}

// dedupeLongest drops candidates fully or partially covered by a longer
// span, so "Tata Motors" wins over the inner "Tata" and "Motors".
func dedupeLongest(candidates []Mention) []Mention {
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		li := candidates[i].End - candidates[i].Start
		lj := candidates[j].End - candidates[j].Start
		if li != lj {
			return li > lj
		}
		return candidates[i].Start < candidates[j].Start
	})

	var kept []Mention
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.Start < k.End && k.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
