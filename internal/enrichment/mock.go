package enrichment

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// MockCompletionClient returns canned completion responses, for tests
// and local development without API credentials.
type MockCompletionClient struct {
	Response string
	Err      error

	// Requests records every request received, newest last.
	Requests []openai.ChatCompletionRequest
}

func (m *MockCompletionClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return openai.ChatCompletionResponse{}, m.Err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.Response}},
		},
	}, nil
}
