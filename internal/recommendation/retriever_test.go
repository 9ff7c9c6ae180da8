package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"solar-advisor/internal/common/embedding"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searcherFunc func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error)

func (f searcherFunc) Search(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
	return f(ctx, vector, topK)
}

func staticSearcher(matches []models.CandidateMatch) searcherFunc {
	return func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
		return matches, nil
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	matches := []models.CandidateMatch{
		{ID: "a", Score: 0.93, Metadata: map[string]interface{}{"text": "300L indirect for borehole homes"}},
		{ID: "b", Score: 0.81},
	}

	var gotTopK int
	var gotVector []float32
	searcher := searcherFunc(func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
		gotTopK, gotVector = topK, vector
		return matches, nil
	})

	r := NewRetriever(&embedding.MockClient{Vector: []float32{0.1, 0.2}}, searcher, time.Second, logger.NewTestLogger(t))

	got := r.Retrieve(context.Background(), "Property Type: Residential", 0)
	assert.Equal(t, matches, got)
	assert.Equal(t, DefaultTopK, gotTopK)
	assert.Equal(t, []float32{0.1, 0.2}, gotVector)
}

func TestRetriever_NeverFails(t *testing.T) {
	tests := []struct {
		name     string
		embedder *embedding.MockClient
		searcher searcherFunc
	}{
		{
			name:     "embedding failure",
			embedder: &embedding.MockClient{Err: errors.New("401 unauthorized")},
			searcher: staticSearcher([]models.CandidateMatch{{ID: "x"}}),
		},
		{
			name:     "index failure",
			embedder: &embedding.MockClient{Vector: []float32{1}},
			searcher: func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
				return nil, errors.New("index product_embeddings not found")
			},
		},
		{
			name:     "index timeout",
			embedder: &embedding.MockClient{Vector: []float32{1}},
			searcher: func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		},
		{
			name:     "index panic",
			embedder: &embedding.MockClient{Vector: []float32{1}},
			searcher: func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
				panic("nil client")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(tt.embedder, tt.searcher, 50*time.Millisecond, logger.NewTestLogger(t))

			got := r.Retrieve(context.Background(), "text", 5)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestRetriever_TrimsToTopK(t *testing.T) {
	many := make([]models.CandidateMatch, 8)
	r := NewRetriever(&embedding.MockClient{Vector: []float32{1}}, staticSearcher(many), 0, logger.NewNoOpLogger())

	assert.Len(t, r.Retrieve(context.Background(), "text", 3), 3)
}
