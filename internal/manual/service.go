// Package manual answers product manual questions from indexed manual
// snippets and the running conversation.
package manual

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/llm"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"
)

const snippetCount = 5

const systemPrompt = `You are an assistant for question-answering tasks about Davis & Shirliff solar water heating products.
Use the following pieces of retrieved context to answer the question. If you don't know the answer, say that you don't know.
Use three sentences maximum and keep the answer concise.

%s`

// Retriever returns manual snippets similar to a question. It never fails;
// an empty result means no context.
type Retriever interface {
	Retrieve(ctx context.Context, text string, topK int) []models.CandidateMatch
}

type Service struct {
	retriever Retriever
	llm       llm.Completer
	timeout   time.Duration
	logger    logger.Logger
}

func NewService(retriever Retriever, completer llm.Completer, timeout time.Duration, log logger.Logger) *Service {
	return &Service{retriever: retriever, llm: completer, timeout: timeout, logger: log}
}

// Answer asks the model to answer req.Question given up to five retrieved
// snippets and the earlier turns.
func (s *Service) Answer(ctx context.Context, req models.QuestionRequest) (*models.AnswerResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.NewRequestInvalidError("question is required")
	}

	matches := s.retriever.Retrieve(ctx, question, snippetCount)
	snippets := make([]string, 0, len(matches))
	for _, m := range matches {
		snippets = append(snippets, m.Text())
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := BuildPrompt(snippets, req.ChatHistory, question)
	raw, err := s.llm.Complete(callCtx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		s.logger.Error("Manual answer failed", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.NewLLMUnavailableError(err)
	}

	s.logger.Debug("Manual question answered", map[string]interface{}{
		"snippets": len(snippets),
		"history":  len(req.ChatHistory),
	})
	return &models.AnswerResponse{Answer: strings.TrimSpace(raw)}, nil
}

// BuildPrompt renders the context block, the earlier turns as Human/Assistant
// pairs and the open question.
func BuildPrompt(snippets []string, history []models.ChatTurn, question string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(systemPrompt, strings.Join(snippets, "\n\n")))
	b.WriteString("\n\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "Human: %s\nAssistant: %s\n\n", turn.Question, turn.Answer)
	}
	fmt.Fprintf(&b, "Human: %s\nAssistant: ", question)
	return b.String()
}
