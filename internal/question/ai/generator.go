package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lernquiz/backend/internal/question"
)

// GenerateRequest describes one generation call for a single document.
type GenerateRequest struct {
	SourceText string
	Types      []string
	Count      int
	Difficulty string
}

// GenerateQuestions asks the model for question drafts over the source text.
// The output is untrusted; callers must run it through question.FilterDrafts.
func (c *Client) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]question.Draft, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert quiz author. Generate exam questions strictly from the provided source text. Multiple-choice questions need 4 options and may have more than one correct option.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.buildGeneratePrompt(req),
			},
		},
		Tools:      []openai.Tool{submitQuestionsTool},
		ToolChoice: toolChoice("submit_questions"),
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	args, err := toolArguments(resp, "submit_questions")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []struct {
			Type    string `json:"type"`
			Text    string `json:"text"`
			Options []struct {
				Text      string `json:"text"`
				IsCorrect bool   `json:"is_correct"`
			} `json:"options"`
			CorrectAnswer string `json:"correct_answer"`
			Explanation   string `json:"explanation"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}

	drafts := make([]question.Draft, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		draft := question.Draft{
			Type:          q.Type,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		for _, opt := range q.Options {
			draft.Options = append(draft.Options, question.Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func (c *Client) buildGeneratePrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quiz questions at %s difficulty.\n", req.Count, req.Difficulty)
	fmt.Fprintf(&b, "Allowed question types: %s.\n", strings.Join(req.Types, ", "))
	b.WriteString("Type 'open' questions get a model answer in correct_answer and no options; all other types get options with is_correct flags and no correct_answer.\n\n")
	b.WriteString("Source text:\n")
	b.WriteString(req.SourceText)
	return b.String()
}

var submitQuestionsTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "submit_questions",
		Description: "Submit generated quiz questions",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"questions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"type": map[string]interface{}{
								"type": "string",
								"enum": []string{"definition", "case", "assignment", "open"},
							},
							"text": map[string]interface{}{
								"type":        "string",
								"description": "The question text",
							},
							"options": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"text":       map[string]interface{}{"type": "string"},
										"is_correct": map[string]interface{}{"type": "boolean"},
									},
									"required": []string{"text", "is_correct"},
								},
								"description": "Answer options, omitted for open questions",
							},
							"correct_answer": map[string]interface{}{
								"type":        "string",
								"description": "Model answer, only for open questions",
							},
							"explanation": map[string]interface{}{
								"type":        "string",
								"description": "Brief explanation of the correct answer",
							},
						},
						"required": []string{"type", "text", "explanation"},
					},
				},
			},
			"required": []string{"questions"},
		},
	},
}

func toolChoice(name string) openai.ToolChoice {
	return openai.ToolChoice{
		Type:     openai.ToolTypeFunction,
		Function: openai.ToolFunction{Name: name},
	}
}

func toolArguments(resp openai.ChatCompletionResponse, name string) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name == name {
			return call.Function.Arguments, nil
		}
	}
	return "", fmt.Errorf("missing %s tool call", name)
}
