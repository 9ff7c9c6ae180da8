package manual

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/llm"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retrieverFunc func(ctx context.Context, text string, topK int) []models.CandidateMatch

func (f retrieverFunc) Retrieve(ctx context.Context, text string, topK int) []models.CandidateMatch {
	return f(ctx, text, topK)
}

func TestService_Answer(t *testing.T) {
	var gotTopK int
	retriever := retrieverFunc(func(ctx context.Context, text string, topK int) []models.CandidateMatch {
		gotTopK = topK
		return []models.CandidateMatch{
			{ID: "m-1", Metadata: map[string]interface{}{"text": "Drain the tank every six months."}},
			{ID: "m-2"},
		}
	})
	mock := llm.NewMockClient(llm.Reply{Text: "  Every six months.  \n"})
	svc := NewService(retriever, mock, time.Second, logger.NewTestLogger(t))

	resp, err := svc.Answer(context.Background(), models.QuestionRequest{
		Question:    "How often should I drain it?",
		ChatHistory: []models.ChatTurn{{Question: "Hi", Answer: "Hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Every six months.", resp.Answer)
	assert.Equal(t, 5, gotTopK)

	prompt := mock.Calls()[0][0].Content
	assert.Contains(t, prompt, "Drain the tank every six months.\n\nm-2")
	assert.Contains(t, prompt, "Human: Hi\nAssistant: Hello\n\n")
	assert.True(t, strings.HasSuffix(prompt, "Human: How often should I drain it?\nAssistant: "))
}

func TestService_Answer_NoContextStillAsks(t *testing.T) {
	empty := retrieverFunc(func(ctx context.Context, text string, topK int) []models.CandidateMatch {
		return []models.CandidateMatch{}
	})
	mock := llm.NewMockClient(llm.Reply{Text: "I don't know."})
	svc := NewService(empty, mock, time.Second, logger.NewNoOpLogger())

	resp, err := svc.Answer(context.Background(), models.QuestionRequest{Question: "Warranty?"})
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", resp.Answer)
	assert.Len(t, mock.Calls(), 1)
}

func TestService_Answer_Errors(t *testing.T) {
	none := retrieverFunc(func(ctx context.Context, text string, topK int) []models.CandidateMatch { return nil })

	tests := []struct {
		name     string
		question string
		reply    llm.Reply
		wantCode apperrors.ErrorCode
	}{
		{"blank question", " ", llm.Reply{Text: "x"}, apperrors.ErrCodeRequestInvalid},
		{"llm down", "Warranty?", llm.Reply{Err: errors.New("502 bad gateway")}, apperrors.ErrCodeLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(none, llm.NewMockClient(tt.reply), time.Second, logger.NewNoOpLogger())
			_, err := svc.Answer(context.Background(), models.QuestionRequest{Question: tt.question})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}
