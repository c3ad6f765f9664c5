// Package ai implements the OpenAI-backed collaborators: question
// generation, topic extraction and open-answer evaluation.
package ai

import (
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Config holds model selection for the collaborators.
type Config struct {
	APIKey    string
	Model     string // generation + topic extraction
	EvalModel string // open-answer evaluation
}

// Client talks to the OpenAI chat completion API.
type Client struct {
	api       *openai.Client
	model     string
	evalModel string
	logger    zerolog.Logger
}

// NewClient creates a client for all three collaborators.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	evalModel := cfg.EvalModel
	if evalModel == "" {
		evalModel = model
	}
	return &Client{
		api:       openai.NewClient(cfg.APIKey),
		model:     model,
		evalModel: evalModel,
		logger:    logger.With().Str("component", "ai_client").Logger(),
	}
}
