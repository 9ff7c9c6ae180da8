package llm

import (
	"context"
	"sync"
)

// Reply is one scripted MockClient answer.
type Reply struct {
	Text string
	Err  error
}

// MockClient replays scripted replies in order and records every call. Once
// the script is exhausted the last reply repeats.
type MockClient struct {
	mu      sync.Mutex
	replies []Reply
	calls   [][]Message
}

var _ Completer = (*MockClient)(nil)

func NewMockClient(replies ...Reply) *MockClient {
	return &MockClient{replies: replies}
}

func (m *MockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]Message(nil), messages...))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	idx := len(m.calls) - 1
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	r := m.replies[idx]
	return r.Text, r.Err
}

// Calls returns the recorded conversations.
func (m *MockClient) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]Message(nil), m.calls...)
}
