package mock

import (
	"context"

	"github.com/callvista/callsight/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// ReplyFunc is called by Reply if set.
	// If nil, the prompt is echoed back.
	ReplyFunc func(ctx context.Context, history []ai.Message, prompt string) (string, error)

	callCount int
}

// NewMockChatModel creates a mock chat model with default echo behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Reply echoes the prompt back unless ReplyFunc is set.
func (m *MockChatModel) Reply(ctx context.Context, history []ai.Message, prompt string) (string, error) {
	m.callCount++

	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, history, prompt)
	}

	return prompt, nil
}

// CallCount returns the number of times Reply was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.ReplyFunc = nil
}
