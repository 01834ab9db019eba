package dto

import "time"

// Candle is one daily OHLCV bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalData holds best-effort valuation fields from the provider.
// Every field is optional; a nil field is "unknown", never zero.
type FundamentalData struct {
	TrailingPE     *float64 `json:"trailing_pe,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
}

// MarketSnapshot is everything the scorer needs about one symbol at one
// point in time.
type MarketSnapshot struct {
	Ticker       string           `json:"ticker"`
	Candles      []Candle         `json:"candles"`
	Fundamentals *FundamentalData `json:"fundamentals,omitempty"`
	FetchedAt    time.Time        `json:"fetched_at"`
}

// LastClose returns the most recent close price, or nil without candles.
func (s *MarketSnapshot) LastClose() *float64 {
	if s == nil || len(s.Candles) == 0 {
		return nil
	}
	last := s.Candles[len(s.Candles)-1].Close
	return &last
}

// YahooValue is Yahoo Finance's raw/fmt number wrapper.
type YahooValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// YahooChartResponse mirrors /v8/finance/chart.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *YahooAPIError `json:"error"`
	} `json:"chart"`
}

// YahooQuoteSummaryResponse mirrors /v10/finance/quoteSummary.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE YahooValue `json:"trailingPE"`
				MarketCap  YahooValue `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ReturnOnEquity YahooValue `json:"returnOnEquity"`
				DebtToEquity   YahooValue `json:"debtToEquity"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				TrailingEps YahooValue `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *YahooAPIError `json:"error"`
	} `json:"quoteSummary"`
}

// YahooAPIError is the error object Yahoo embeds in responses.
type YahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
