package recommendation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/embedding"
	"solar-advisor/internal/common/llm"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, mock *llm.MockClient, searcher searcherFunc) *Service {
	t.Helper()
	log := logger.NewTestLogger(t)
	cat := catalog.Default()
	return NewService(
		NewRetriever(&embedding.MockClient{Vector: []float32{0.5}}, searcher, time.Second, log),
		NewSynthesizer(mock, cat, time.Second, log),
		cat, 5, nil, log,
	)
}

func TestService_Recommend_BoreholeScenario(t *testing.T) {
	mock := llm.NewMockClient(llm.Reply{Text: prose})
	svc := newTestService(t, mock, staticSearcher(nil))
	q := testQuestionnaire()

	analysis := Analyze(q)
	assert.Equal(t, 200.0, analysis.DailyHotWaterNeeded)
	assert.Equal(t, 240.0, analysis.IdealCapacityLiters)
	assert.Equal(t, 5.5, analysis.EffectiveSunlightHours)

	for i := 0; i < 2; i++ {
		resp, err := svc.Recommend(context.Background(), q)
		require.NoError(t, err)
		require.NotEmpty(t, resp.RecommendedSystems)
		assert.True(t, resp.RecommendedSystems[0].IsPrimary)
		assert.Equal(t, "240 Liters", resp.RecommendedSystems[0].Specifications.TankSize)
	}

	firstPrompt := mock.Calls()[0][1].Content
	assert.Contains(t, firstPrompt, "borehole")
	assert.Contains(t, firstPrompt, `model codes ending in "I"`)
}

func TestService_Recommend_RetrievalFailureStillAnswers(t *testing.T) {
	mock := llm.NewMockClient(llm.Reply{Text: validJSON})
	svc := newTestService(t, mock, func(ctx context.Context, vector []float32, topK int) ([]models.CandidateMatch, error) {
		return nil, assert.AnError
	})

	resp, err := svc.Recommend(context.Background(), testQuestionnaire())
	require.NoError(t, err)
	assert.Equal(t, "SMF300I", resp.RecommendedSystems[0].ModelCode)
	assert.NotContains(t, mock.Calls()[0][1].Content, "Similar products")
}

func TestService_Recommend_CandidatesReachPrompt(t *testing.T) {
	mock := llm.NewMockClient(llm.Reply{Text: validJSON})
	svc := newTestService(t, mock, staticSearcher([]models.CandidateMatch{
		{ID: "doc-7", Score: 0.88, Metadata: map[string]interface{}{"text": "Split system for a school dormitory"}},
	}))

	_, err := svc.Recommend(context.Background(), testQuestionnaire())
	require.NoError(t, err)
	assert.Contains(t, mock.Calls()[0][1].Content, "Split system for a school dormitory")
}

func TestService_Recommend_UnknownNameIsReportedNotChanged(t *testing.T) {
	invented := strings.Replace(validJSON, "Solarmax Evacuated Tube 300L Indirect", "SunBlaster 9000", 1)
	mock := llm.NewMockClient(llm.Reply{Text: invented})
	svc := newTestService(t, mock, staticSearcher(nil))

	resp, err := svc.Recommend(context.Background(), testQuestionnaire())
	require.NoError(t, err)

	rec, err := decode(invented)
	require.NoError(t, err)
	want := toResponse(rec)
	assert.Equal(t, want, resp)
	assert.Equal(t, []string{"SunBlaster 9000"}, ValidateNames(resp.RecommendedSystems, catalog.Default()))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SunBlaster 9000")
}

func TestService_Recommend_LLMUnavailable(t *testing.T) {
	mock := llm.NewMockClient(llm.Reply{Err: hardErr()})
	svc := newTestService(t, mock, staticSearcher(nil))

	resp, err := svc.Recommend(context.Background(), testQuestionnaire())
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeLLMUnavailable, apperrors.AsStandardError(err).Code)
	assert.Len(t, mock.Calls(), 2)
}
