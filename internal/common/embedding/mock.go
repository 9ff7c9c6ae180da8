package embedding

import (
	"context"
	"sync/atomic"
)

// MockClient returns a fixed vector, or Err when set.
type MockClient struct {
	Vector []float32
	Err    error
	calls  int32
}

var _ BatchEmbedder = (*MockClient)(nil)

func (m *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *MockClient) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}
