// Package inference provides OpenAI implementation of the Client interface.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	openai "github.com/sashabaranov/go-openai"

	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/normalize"
)

const detectorPrompt = `You are a strict fake news detector.
Analyze the following news and respond ONLY in valid JSON format with two fields:
- "prediction": either "FAKE" or "REAL"
- "confidence": a number between 0 and 1 (higher = more confident)

News:
%s`

// maxPromptRunes bounds the text sent for file submissions.
const maxPromptRunes = 3000

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// OpenAIClient classifies submissions with a chat model instead of the
// dedicated inference service.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// PredictText asks the chat model for a strict-JSON verdict.
func (c *OpenAIClient) PredictText(ctx context.Context, text string, model models.Model, lang models.Language) (normalize.Payload, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(detectorPrompt, text),
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return normalize.Payload{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return normalize.Payload{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return salvagePayload(resp.Choices[0].Message.Content), nil
}

// PredictFile extracts text from the upload locally and classifies it like a
// text submission.
func (c *OpenAIClient) PredictFile(ctx context.Context, fileName string, data []byte, model models.Model, lang models.Language) (normalize.Payload, error) {
	text, err := ExtractText(fileName, data)
	if err != nil {
		return normalize.Payload{}, err
	}
	runes := []rune(text)
	if len(runes) > maxPromptRunes {
		text = string(runes[:maxPromptRunes])
	}
	return c.PredictText(ctx, text, model, lang)
}

// salvagePayload pulls the first {...} block out of a model reply. A reply
// with no parseable JSON yields an empty payload, which normalizes to
// UNKNOWN with zero confidence.
func salvagePayload(reply string) normalize.Payload {
	block := jsonBlockPattern.FindString(reply)
	if block == "" {
		return normalize.Payload{}
	}
	var payload normalize.Payload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return normalize.Payload{}
	}
	return payload
}
