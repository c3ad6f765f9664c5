package ai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// TopicResult is the extracted subject of a document.
type TopicResult struct {
	Name        string
	Description string
}

const topicExcerptLimit = 4000

// ExtractTopic derives a short topic name and description for a document.
// Callers fall back to a filename-derived topic when this errors.
func (c *Client) ExtractTopic(ctx context.Context, text, filename string) (TopicResult, error) {
	excerpt := text
	if len(excerpt) > topicExcerptLimit {
		excerpt = excerpt[:topicExcerptLimit]
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You classify study material. Name the single subject the text covers, as a short noun phrase.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Filename: %s\n\nText:\n%s", filename, excerpt),
			},
		},
		Tools:      []openai.Tool{submitTopicTool},
		ToolChoice: toolChoice("submit_topic"),
	})
	if err != nil {
		return TopicResult{}, fmt.Errorf("extract topic: %w", err)
	}

	args, err := toolArguments(resp, "submit_topic")
	if err != nil {
		return TopicResult{}, err
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		return TopicResult{}, fmt.Errorf("decode topic: %w", err)
	}
	if payload.Name == "" {
		return TopicResult{}, fmt.Errorf("empty topic name")
	}
	return TopicResult{Name: payload.Name, Description: payload.Description}, nil
}

var submitTopicTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "submit_topic",
		Description: "Submit the extracted topic",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Short topic name, max 5 words",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "One-sentence description",
				},
			},
			"required": []string{"name"},
		},
	},
}
