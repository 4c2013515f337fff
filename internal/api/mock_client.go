package api

import (
	"context"
	"sync"

	"github.com/diogo/ai29/internal/models"
)

// MockClient is a scriptable ChatAPI for tests.
// The *Func fields take precedence over the static values.
type MockClient struct {
	History    []models.Message
	HistoryErr error
	Reply      string
	ReplyErr   error
	ClearErr   error

	HistoryFunc func(ctx context.Context) ([]models.Message, error)
	SendFunc    func(ctx context.Context, text string) (string, error)
	ClearFunc   func(ctx context.Context) error

	mu           sync.Mutex
	historyCalls int
	clearCalls   int
	sent         []string
}

var _ ChatAPI = (*MockClient)(nil)

// NewMockClient creates a mock that answers every message with reply
func NewMockClient(reply string) *MockClient {
	return &MockClient{Reply: reply}
}

// FetchHistory implements ChatAPI
func (m *MockClient) FetchHistory(ctx context.Context) ([]models.Message, error) {
	m.mu.Lock()
	m.historyCalls++
	fn := m.HistoryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	out := make([]models.Message, len(m.History))
	copy(out, m.History)
	return out, nil
}

// SendMessage implements ChatAPI
func (m *MockClient) SendMessage(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	if m.ReplyErr != nil {
		return "", m.ReplyErr
	}
	return m.Reply, nil
}

// ClearHistory implements ChatAPI
func (m *MockClient) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	m.clearCalls++
	fn := m.ClearFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return m.ClearErr
}

// Sent returns the texts passed to SendMessage, in call order
func (m *MockClient) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

// HistoryCalls returns how many times FetchHistory was called
func (m *MockClient) HistoryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyCalls
}

// ClearCalls returns how many times ClearHistory was called
func (m *MockClient) ClearCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}
