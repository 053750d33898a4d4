package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash-latest"

// GeminiConfig configures a Gemini completer.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Gemini implements Completer on the Google Gen AI SDK.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	log    zerolog.Logger
}

// NewGemini creates a Gemini completer. An empty API key is an error.
func NewGemini(ctx context.Context, cfg GeminiConfig, log zerolog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: api key not set", ErrUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	gc := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.MaxOutputTokens
	}

	return &Gemini{
		client: client,
		model:  model,
		config: gc,
		log:    log.With().Str("component", "gemini").Str("model", model).Logger(),
	}, nil
}

// Complete sends prompt as a single user turn and returns the first candidate's text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrNoCandidates
	}
	if fb := resp.PromptFeedback; fb != nil {
		if reason := string(fb.BlockReason); reason != "" && reason != "BLOCKED_REASON_UNSPECIFIED" {
			return "", &BlockedError{Reason: reason}
		}
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	c := resp.Candidates[0]
	var b strings.Builder
	if c.Content != nil {
		for _, part := range c.Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}
	if b.Len() == 0 {
		if c.FinishReason == genai.FinishReasonSafety {
			return "", &BlockedError{Reason: string(c.FinishReason)}
		}
		return "", ErrNoCandidates
	}
	return b.String(), nil
}
