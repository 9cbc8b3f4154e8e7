package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fedelife/expense-extractor/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey        string
	Model         string
	Temperature   float64
	MaxInputChars int
	Timeout       time.Duration
	LocalCode     string
	ForeignCode   string
}

// GeminiClient calls the Google Gemini API. A client is opened per request and
// closed when the call returns.
type GeminiClient struct {
	config GeminiConfig
	logger logging.Logger
}

// NewGeminiClient validates the configuration and returns a client.
func NewGeminiClient(cfg GeminiConfig, logger logging.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.LocalCode == "" {
		cfg.LocalCode = "UYU"
	}
	if cfg.ForeignCode == "" {
		cfg.ForeignCode = "USD"
	}
	return &GeminiClient{config: cfg, logger: logging.OrDefault(logger)}, nil
}

// Name returns the configured model name.
func (c *GeminiClient) Name() string {
	return c.config.Model
}

// ExtractExpenses sends the statement to Gemini and concatenates the text parts of
// the first candidate.
func (c *GeminiClient) ExtractExpenses(ctx context.Context, statement string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.config.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.config.Model)
	model.SetTemperature(float32(c.config.Temperature))
	model.ResponseMIMEType = "application/json"

	prompt := BuildPrompt(statement, c.config.LocalCode, c.config.ForeignCode, c.config.MaxInputChars)
	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("Gemini response received",
		logging.F(logging.FieldModel, c.config.Model),
		logging.F(logging.FieldDuration, time.Since(start).String()),
		logging.F(logging.FieldCount, sb.Len()))
	return sb.String(), nil
}
