package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-market-intel/internal/intel/config"
	"golang-market-intel/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const geminiSentimentPrompt = `You are a financial news sentiment rater for Indian equities.
Rate the article below and respond with ONLY a JSON object, no prose:
{"polarity": <float -1.0..1.0, negative=bearish positive=bullish>, "magnitude": <float 0.0..1.0, strength of the signal>}

Title: %s
Summary: %s`

// geminiModel scores sentiment with the Gemini API. Model failures degrade
// to a neutral result so a provider outage never aborts a run.
type geminiModel struct {
	client         *genai.Client
	cfg            config.Gemini
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewGeminiModel creates the Gemini-backed sentiment model.
func NewGeminiModel(ctx context.Context, cfg config.Gemini, log *logger.Logger) (Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	maxPerMinute := cfg.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 15
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)

	return &geminiModel{
		client:         client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

func (m *geminiModel) Name() string { return "gemini" }

func (m *geminiModel) Analyze(ctx context.Context, title, summary string) (Result, error) {
	if err := m.requestLimiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := fmt.Sprintf(geminiSentimentPrompt, title, summary)
	contents := []*genai.Content{genai.NewContentFromText(prompt, "user")}

	resp, err := m.client.Models.GenerateContent(ctx, m.cfg.Model, contents, nil)
	if err != nil {
		m.logger.Warn("Gemini sentiment request failed, falling back to neutral",
			logger.ErrorField(err), logger.StringField("title", title))
		return Result{}, nil
	}

	result, err := parseGeminiSentiment(resp)
	if err != nil {
		m.logger.Warn("Failed to parse Gemini sentiment, falling back to neutral",
			logger.ErrorField(err), logger.StringField("title", title))
		return Result{}, nil
	}
	return result, nil
}

func parseGeminiSentiment(resp *genai.GenerateContentResponse) (Result, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	jsonString := resp.Candidates[0].Content.Parts[0].Text
	jsonString = strings.Trim(jsonString, "`json\n`")

	var result Result
	if err := json.Unmarshal([]byte(jsonString), &result); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal sentiment from Gemini response: %w", err)
	}
	result.Polarity = clampFloat(result.Polarity, -1, 1)
	result.Magnitude = clampFloat(result.Magnitude, 0, 1)
	return result, nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
