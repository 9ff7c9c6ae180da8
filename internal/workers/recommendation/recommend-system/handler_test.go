package recommendsystem

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecommender struct {
	resp *models.RecommendationResponse
	err  error
	got  models.QuestionnaireResponse
}

func (s *stubRecommender) Recommend(ctx context.Context, q models.QuestionnaireResponse) (*models.RecommendationResponse, error) {
	s.got = q
	return s.resp, s.err
}

const variables = `{
	"questionnaire": {
		"propertyType": "Residential",
		"occupants": "6",
		"budget": "KES 200,000",
		"location": "Mombasa",
		"existingSystem": "Pitched tile roof",
		"timeline": "ASAP",
		"waterSource": "Municipal",
		"electricitySource": "Grid"
	},
	"customerId": "C00042"
}`

func newTestHandler(t *testing.T, rec Recommender) *Handler {
	t.Helper()
	return NewHandler(&Config{Timeout: time.Second}, rec, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	rec := &stubRecommender{resp: &models.RecommendationResponse{
		RecommendedSystems: []models.RecommendedSystem{
			{Name: "Solarmax Flat Plate 300L Direct", IsPrimary: true},
			{Name: "Solarmax Flat Plate 200L Direct"},
		},
	}}

	out, err := newTestHandler(t, rec).execute(context.Background(), variables)
	require.NoError(t, err)
	assert.Equal(t, "Solarmax Flat Plate 300L Direct", out.PrimarySystem)
	assert.Len(t, out.Recommendation.RecommendedSystems, 2)
	assert.Equal(t, "6", rec.got.Occupants)
	assert.Equal(t, "Mombasa", rec.got.Location)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		recErr    error
		wantCode  apperrors.ErrorCode
	}{
		{"malformed variables", `{"questionnaire":`, nil, apperrors.ErrCodeQuestionnaireInvalid},
		{"missing questionnaire", `{"customerId":"C1"}`, nil, apperrors.ErrCodeQuestionnaireInvalid},
		{"llm unavailable", variables, apperrors.NewLLMUnavailableError(errors.New("503")), apperrors.ErrCodeLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &stubRecommender{resp: &models.RecommendationResponse{}, err: tt.recErr}
			_, err := newTestHandler(t, rec).execute(context.Background(), tt.variables)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}
