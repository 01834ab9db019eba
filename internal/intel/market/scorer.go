package market

import (
	"math"

	"golang-market-intel/internal/intel/dto"

	"github.com/markcheno/go-talib"
)

// Indicator weights. Each side's weights sum to 1; a missing indicator
// drops its weight from that side's completeness and the remaining
// indicators renormalize.
const (
	weightTrend    = 0.40
	weightMomentum = 0.35
	weightRSI      = 0.25

	weightValuation = 0.50
	weightQuality   = 0.30
	weightLeverage  = 0.20

	smaShortPeriod = 20
	smaLongPeriod  = 50
	rsiPeriod      = 14
)

// Indicator names recorded in Signal.Missing.
const (
	IndicatorTrend     = "trend_sma20_sma50"
	IndicatorMomentum  = "momentum_close_sma50"
	IndicatorRSI       = "rsi14"
	IndicatorValuation = "trailing_pe"
	IndicatorQuality   = "return_on_equity"
	IndicatorLeverage  = "debt_to_equity"
)

// Signal is the market-side read of one symbol. Technical and Fundamental
// are nil when not computable; nil is never scored as zero.
type Signal struct {
	Symbol           string
	Technical        *float64
	Fundamental      *float64
	DataCompleteness float64
	Missing          []string

	// Per-side fraction of indicator weights that were computable. The
	// engine uses these as component confidences.
	TechnicalCompleteness   float64
	FundamentalCompleteness float64

	// Carried for downstream target-band math.
	LastClose *float64
	ValueGap  *float64
}

// Scorer computes deterministic technical and fundamental sub-scores from a
// snapshot.
type Scorer struct{}

// NewScorer creates a market signal scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// AllMissing returns the degenerate signal recorded when the provider
// failed outright for a symbol.
func AllMissing(symbol string) Signal {
	return Signal{
		Symbol: symbol,
		Missing: []string{
			IndicatorTrend, IndicatorMomentum, IndicatorRSI,
			IndicatorValuation, IndicatorQuality, IndicatorLeverage,
		},
	}
}

// Score computes the signal for one symbol. Same snapshot in, same signal
// out.
func (s *Scorer) Score(symbol string, snap *dto.MarketSnapshot) Signal {
	if snap == nil {
		return AllMissing(symbol)
	}

	sig := Signal{Symbol: symbol, LastClose: snap.LastClose()}

	techScore, techCompleteness, techMissing := scoreTechnical(snap.Candles)
	sig.Technical = techScore
	sig.TechnicalCompleteness = techCompleteness
	sig.Missing = append(sig.Missing, techMissing...)

	fundScore, fundCompleteness, fundMissing, valueGap := scoreFundamental(snap.Fundamentals)
	sig.Fundamental = fundScore
	sig.FundamentalCompleteness = fundCompleteness
	sig.ValueGap = valueGap
	sig.Missing = append(sig.Missing, fundMissing...)

	sig.DataCompleteness = 0.5*techCompleteness + 0.5*fundCompleteness
	return sig
}

func scoreTechnical(candles []dto.Candle) (*float64, float64, []string) {
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		if c.Close > 0 {
			closes = append(closes, c.Close)
		}
	}

	var (
		weightedSum float64
		present     float64
		missing     []string
	)

	trend, ok := trendScore(closes)
	if ok {
		weightedSum += weightTrend * trend
		present += weightTrend
	} else {
		missing = append(missing, IndicatorTrend)
	}

	momentum, ok := momentumScore(closes)
	if ok {
		weightedSum += weightMomentum * momentum
		present += weightMomentum
	} else {
		missing = append(missing, IndicatorMomentum)
	}

	rsi, ok := rsiScore(closes)
	if ok {
		weightedSum += weightRSI * rsi
		present += weightRSI
	} else {
		missing = append(missing, IndicatorRSI)
	}

	if present == 0 {
		return nil, 0, missing
	}
	score := clamp(weightedSum/present, -1, 1)
	return &score, present, missing
}

// trendScore compares SMA20 against SMA50: +1 above, -1 below, 0 equal.
func trendScore(closes []float64) (float64, bool) {
	if len(closes) < smaLongPeriod {
		return 0, false
	}
	smaShort := lastValid(talib.Sma(closes, smaShortPeriod))
	smaLong := lastValid(talib.Sma(closes, smaLongPeriod))
	if smaShort == nil || smaLong == nil {
		return 0, false
	}
	switch {
	case *smaShort > *smaLong:
		return 1, true
	case *smaShort < *smaLong:
		return -1, true
	default:
		return 0, true
	}
}

// momentumScore maps the close's distance from SMA50 through tanh so large
// dislocations saturate instead of dominating.
func momentumScore(closes []float64) (float64, bool) {
	if len(closes) < smaLongPeriod {
		return 0, false
	}
	smaLong := lastValid(talib.Sma(closes, smaLongPeriod))
	if smaLong == nil || *smaLong == 0 {
		return 0, false
	}
	lastClose := closes[len(closes)-1]
	return math.Tanh(5 * (lastClose / *smaLong - 1)), true
}

// rsiScore centers RSI(14) on 50 and scales to [-1,1].
func rsiScore(closes []float64) (float64, bool) {
	if len(closes) < rsiPeriod+1 {
		return 0, false
	}
	rsi := lastValid(talib.Rsi(closes, rsiPeriod))
	if rsi == nil {
		return 0, false
	}
	return clamp((*rsi-50)/50, -1, 1), true
}

func scoreFundamental(f *dto.FundamentalData) (*float64, float64, []string, *float64) {
	var (
		weightedSum float64
		present     float64
		missing     []string
		valueGap    *float64
	)

	if f == nil {
		return nil, 0, []string{IndicatorValuation, IndicatorQuality, IndicatorLeverage}, nil
	}

	if f.TrailingPE != nil && *f.TrailingPE > 0 {
		gap := clamp(fairPE(f.ReturnOnEquity)/(*f.TrailingPE)-1, -1, 1)
		valueGap = &gap
		weightedSum += weightValuation * gap
		present += weightValuation
	} else {
		missing = append(missing, IndicatorValuation)
	}

	if f.ReturnOnEquity != nil {
		weightedSum += weightQuality * clamp(2*(*f.ReturnOnEquity), -1, 1)
		present += weightQuality
	} else {
		missing = append(missing, IndicatorQuality)
	}

	if f.DebtToEquity != nil {
		weightedSum += weightLeverage * clamp(1-normalizeDebtToEquity(*f.DebtToEquity), -1, 1)
		present += weightLeverage
	} else {
		missing = append(missing, IndicatorLeverage)
	}

	if present == 0 {
		return nil, 0, missing, valueGap
	}
	score := clamp(weightedSum/present, -1, 1)
	return &score, present, missing, valueGap
}

// fairPE is the P/E a company "deserves" given its return on equity:
// 22 for high-ROE names, 14 for low, 18 otherwise (ROE unknown included).
func fairPE(roe *float64) float64 {
	if roe == nil {
		return 18
	}
	switch {
	case *roe > 0.15:
		return 22
	case *roe < 0.08:
		return 14
	default:
		return 18
	}
}

// normalizeDebtToEquity folds Yahoo's percent-style D/E (e.g. 45.2) into a
// plain ratio. Values above 3 are assumed to be percentages.
func normalizeDebtToEquity(dte float64) float64 {
	if dte > 3 {
		return dte / 100
	}
	return dte
}

// lastValid returns the last non-zero, non-NaN value of a talib output
// series, nil when none exists. go-talib pads warm-up slots with zero.
func lastValid(series []float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if v != 0 && !math.IsNaN(v) {
			return &v
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
