package anthropic

import "context"

// MockSummarizerClient implements clients.SummarizerClient for testing.
type MockSummarizerClient struct {
	MockCreateSummary func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func NewMockSummarizerClient() *MockSummarizerClient {
	return &MockSummarizerClient{}
}

func (m *MockSummarizerClient) CreateSummary(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.MockCreateSummary != nil {
		return m.MockCreateSummary(ctx, systemPrompt, userPrompt)
	}
	return "mock summary", nil
}
