package ai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// EvaluateAnswer asks the model whether a free-text answer matches the model
// answer. Callers fall back to a lenient heuristic when this errors.
func (c *Client) EvaluateAnswer(ctx context.Context, questionText, modelAnswer, submitted string) (bool, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.evalModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You grade a student's free-text answer against a model answer. Accept answers that capture the core meaning even with different wording.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Question: %s\n\nModel answer: %s\n\nStudent answer: %s",
					questionText, modelAnswer, submitted),
			},
		},
		Tools:      []openai.Tool{submitVerdictTool},
		ToolChoice: toolChoice("submit_verdict"),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate answer: %w", err)
	}

	args, err := toolArguments(resp, "submit_verdict")
	if err != nil {
		return false, err
	}

	var payload struct {
		Correct bool `json:"correct"`
	}
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		return false, fmt.Errorf("decode verdict: %w", err)
	}
	return payload.Correct, nil
}

var submitVerdictTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "submit_verdict",
		Description: "Submit the grading verdict",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"correct": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the student answer is acceptable",
				},
			},
			"required": []string{"correct"},
		},
	},
}
