package recommendation

import (
	"context"
	"fmt"
	"time"

	"solar-advisor/internal/common/embedding"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/metrics"
	"solar-advisor/internal/common/vectorstore"
	"solar-advisor/internal/models"
)

const DefaultTopK = 5

// Retriever finds catalog snippets similar to a prompt. A failing embedder
// or index degrades to no candidates.
type Retriever struct {
	embedder embedding.Embedder
	searcher vectorstore.Searcher
	timeout  time.Duration
	logger   logger.Logger
}

// NewRetriever bounds each retrieval (embedding plus search) by timeout when
// it is positive.
func NewRetriever(embedder embedding.Embedder, searcher vectorstore.Searcher, timeout time.Duration, log logger.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		timeout:  timeout,
		logger:   log,
	}
}

// Retrieve returns up to topK matches in descending score order. It never
// returns an error; failures are logged and yield an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, text string, topK int) []models.CandidateMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	matches, stage, err := r.retrieve(ctx, text, topK)
	if err != nil {
		metrics.RetrievalFailures.Inc()
		r.logger.Warn("Similarity retrieval failed, continuing without candidates", map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		})
		return []models.CandidateMatch{}
	}
	if matches == nil {
		matches = []models.CandidateMatch{}
	}
	return matches
}

func (r *Retriever) retrieve(ctx context.Context, text string, topK int) (matches []models.CandidateMatch, stage string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			matches, err = nil, fmt.Errorf("retrieval panicked: %v", rec)
		}
	}()

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, "embed", err
	}
	matches, err = r.searcher.Search(ctx, vector, topK)
	if err != nil {
		return nil, "search", err
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, "", nil
}
