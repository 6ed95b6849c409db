// Package openai implements the live extraction and interpretation engines
// on top of the OpenAI chat API. Both return ai.ErrNotConfigured when
// invoked without credentials; the pipeline never falls back to mock
// silently.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/permitpro/permitpro/internal/domain/ai"
	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
	"github.com/permitpro/permitpro/internal/infra/ai/prompt"
)

const maxTokens = 2048

type Interpreter struct {
	client *openai.Client
	model  string
}

func NewInterpreter(apiKey, model string) *Interpreter {
	it := &Interpreter{model: model}
	if apiKey != "" {
		it.client = openai.NewClient(apiKey)
	}
	return it
}

func (it *Interpreter) Interpret(ctx context.Context, doc *document.StructuredDocument, results []rules.Result) (*analysis.Interpretation, error) {
	if it.client == nil {
		return nil, fmt.Errorf("live interpretation: %w", ai.ErrNotConfigured)
	}

	user, err := prompt.InterpretUserPrompt(doc, results)
	if err != nil {
		return nil, &ai.InterpretationError{Err: err}
	}

	content, err := complete(ctx, it.client, it.model, prompt.InterpretSystemPrompt(), user)
	if err != nil {
		return nil, wrapProviderErr(err)
	}

	var out analysis.Interpretation
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, &ai.InterpretationError{Err: fmt.Errorf("invalid engine response: %w", err)}
	}
	if out.MissingInformation == nil {
		out.MissingInformation = []analysis.MissingInformation{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []analysis.Recommendation{}
	}
	if out.RejectionRisks == nil {
		out.RejectionRisks = []analysis.RejectionRisk{}
	}
	return &out, nil
}

func complete(ctx context.Context, client *openai.Client, model, system, user string) (string, error) {
	if model == "" {
		model = "o3-2025-04-16"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func wrapProviderErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return ai.ErrQuotaExceeded
	}
	return err
}
