package recommendation

import (
	"context"
	"time"

	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/metrics"
	"solar-advisor/internal/common/observability"
	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"

	"go.opentelemetry.io/otel/attribute"
)

// Service runs the whole pipeline. It holds only read-only collaborators and
// is safe for concurrent use.
type Service struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	catalog     *catalog.Catalog
	topK        int
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(retriever *Retriever, synthesizer *Synthesizer, cat *catalog.Catalog, topK int, obs *observability.Observability, log logger.Logger) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Service{
		retriever:   retriever,
		synthesizer: synthesizer,
		catalog:     cat,
		topK:        topK,
		obs:         obs,
		logger:      log,
	}
}

// Recommend analyses q, retrieves similar products, then synthesises and
// checks the recommendation. The only error is LLM_UNAVAILABLE.
func (s *Service) Recommend(ctx context.Context, q models.QuestionnaireResponse) (*models.RecommendationResponse, error) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "recommendation.Recommend")
	defer span.End()

	analysis := Analyze(q)
	text := BuildPrompt(q)

	retrieveCtx, retrieveSpan := s.obs.StartSpan(ctx, "recommendation.Retrieve")
	candidates := s.retriever.Retrieve(retrieveCtx, text, s.topK)
	retrieveSpan.SetAttributes(attribute.Int("candidates", len(candidates)))
	retrieveSpan.End()

	synthCtx, synthSpan := s.obs.StartSpan(ctx, "recommendation.Synthesize")
	resp, outcome, err := s.synthesizer.Synthesize(synthCtx, analysis, candidates, q)
	synthSpan.SetAttributes(attribute.String("outcome", string(outcome)))
	synthSpan.End()

	metrics.RecommendationsTotal.WithLabelValues(string(outcome)).Inc()
	s.obs.RecordPipeline(ctx, time.Since(start), string(outcome))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if invalid := ValidateNames(resp.RecommendedSystems, s.catalog); len(invalid) > 0 {
		metrics.CatalogMismatches.Add(float64(len(invalid)))
		s.logger.Warn("Recommended names not found in catalog", map[string]interface{}{
			"names": invalid,
		})
	}

	s.logger.Info("Recommendation generated", map[string]interface{}{
		"outcome":     string(outcome),
		"candidates":  len(candidates),
		"systems":     len(resp.RecommendedSystems),
		"idealLiters": analysis.IdealCapacityLiters,
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return resp, nil
}
