package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// Result is one model's read of a single article.
type Result struct {
	Polarity  float64 `json:"polarity"`
	Magnitude float64 `json:"magnitude"`
}

// Model scores the sentiment of one article. Polarity is in [-1,1],
// magnitude in [0,1].
type Model interface {
	Name() string
	Analyze(ctx context.Context, title, summary string) (Result, error)
}

var positiveWords = map[string]struct{}{
	"gain": {}, "gains": {}, "gained": {}, "rally": {}, "rallies": {},
	"surge": {}, "surges": {}, "surged": {}, "soar": {}, "soars": {},
	"soared": {}, "jump": {}, "jumps": {}, "jumped": {}, "record": {},
	"beat": {}, "beats": {}, "upgrade": {}, "upgraded": {}, "outperform": {},
	"bullish": {}, "profit": {}, "profits": {}, "profitable": {},
	"growth": {}, "strong": {}, "robust": {}, "expansion": {},
	"dividend": {}, "buyback": {}, "award": {}, "awarded": {}, "win": {},
	"wins": {}, "won": {}, "approval": {}, "approved": {}, "launch": {},
	"breakthrough": {}, "milestone": {}, "upbeat": {}, "optimistic": {},
	"recovery": {}, "rebound": {}, "momentum": {}, "exceed": {},
	"exceeded": {}, "raise": {}, "raised": {}, "improved": {},
	"improvement": {}, "positive": {},
}

var negativeWords = map[string]struct{}{
	"loss": {}, "losses": {}, "fall": {}, "falls": {}, "fell": {},
	"drop": {}, "drops": {}, "dropped": {}, "plunge": {}, "plunges": {},
	"plunged": {}, "slump": {}, "slumped": {}, "crash": {}, "crashed": {},
	"decline": {}, "declines": {}, "declined": {}, "downgrade": {},
	"downgraded": {}, "underperform": {}, "bearish": {}, "weak": {},
	"weakness": {}, "miss": {}, "missed": {}, "cut": {}, "cuts": {},
	"fraud": {}, "probe": {}, "investigation": {}, "penalty": {},
	"fine": {}, "fined": {}, "lawsuit": {}, "default": {},
	"bankruptcy": {}, "insolvency": {}, "layoff": {}, "layoffs": {},
	"recall": {}, "strike": {}, "shutdown": {}, "warning": {}, "warns": {},
	"slowdown": {}, "concern": {}, "concerns": {}, "risk": {}, "risks": {},
	"negative": {}, "scam": {},
}

var uncertaintyWords = map[string]struct{}{
	"might": {}, "could": {}, "possibly": {}, "uncertain": {},
	"uncertainty": {}, "volatile": {}, "volatility": {}, "unclear": {},
	"pending": {}, "awaited": {}, "speculation": {}, "rumor": {},
	"rumour": {}, "reportedly": {},
}

// lexiconModel scores sentiment from finance word lists. It is the default
// model: deterministic, offline, and cheap.
type lexiconModel struct {
	dampUncertainty float64
}

// NewLexiconModel creates the word-list sentiment model. dampUncertainty
// controls how strongly hedging language pulls polarity toward zero.
func NewLexiconModel(dampUncertainty float64) Model {
	return &lexiconModel{dampUncertainty: dampUncertainty}
}

func (m *lexiconModel) Name() string { return "lexicon" }

func (m *lexiconModel) Analyze(_ context.Context, title, summary string) (Result, error) {
	tokens := tokenize(title + " " + summary)
	if len(tokens) == 0 {
		return Result{}, nil
	}

	var pos, neg, unc int
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
		if _, ok := uncertaintyWords[tok]; ok {
			unc++
		}
	}

	matched := pos + neg
	if matched == 0 {
		return Result{}, nil
	}

	polarity := float64(pos-neg) / float64(matched)
	polarity /= 1 + m.dampUncertainty*float64(unc)

	// Magnitude saturates at 5 matched terms.
	magnitude := math.Min(1, float64(matched)/5.0)

	return Result{Polarity: polarity, Magnitude: magnitude}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
