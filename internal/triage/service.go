// Package triage turns a free text enquiry into five qualifying questions.
package triage

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

// QuestionCount is the number of questions a triage must produce.
const QuestionCount = 5

const systemPrompt = "You are a helpful assistant for solar water heating system selection. " +
	"You assist users by asking relevant questions based on their query to gather details about their needs."

const instructions = `Based on the user's inquiry, generate a list of 5 well-structured and relevant questions to help determine their solar water heating system needs.
- Each question starts with "Q1: ", "Q2: " and so on, numbered sequentially up to Q5.
- Each question is short, clear and directly related to the user's query.
- Cover daily hot water demand, available roof space, budget, feature or technology preferences and the installation timeline.

Example: the user asks "I'm interested in solar water heating solutions for my residential building. What options do you offer?"
Q1: What is the approximate daily hot water requirement in liters for your household?
Q2: Are there any structural constraints regarding the roof space for the installation of the solar heating system?
Q3: What is your budget range for the solar water heating system and installation?
Q4: Do you have any specific preferences for brands or technologies in solar heating?
Q5: What is your timeline for implementing this solar water heating solution?

Return only the five questions, one per line, with no other text.`

type Service struct {
	llm     llm.Completer
	timeout time.Duration
	logger  logger.Logger
}

func NewService(completer llm.Completer, timeout time.Duration, log logger.Logger) *Service {
	return &Service{llm: completer, timeout: timeout, logger: log}
}

func (s *Service) Triage(ctx context.Context, req models.TriageRequest) (*models.TriageResponse, error) {
	query := strings.TrimSpace(req.UserQuery)
	if query == "" {
		return nil, apperrors.NewRequestInvalidError("user_query is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, Messages(query))
	if err != nil {
		s.logger.Error("Triage completion failed", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.NewLLMUnavailableError(err)
	}

	questions := ParseQuestions(raw)
	if len(questions) != QuestionCount {
		s.logger.Warn("Triage produced wrong number of questions", map[string]interface{}{
			"count": len(questions),
		})
		return nil, apperrors.NewTriageFailedError(fmt.Sprintf("expected %d questions, got %d", QuestionCount, len(questions)))
	}
	return &models.TriageResponse{GeneratedQuestions: questions}, nil
}

// Messages builds the triage conversation for query.
func Messages(query string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: instructions + "\n\nUser query: " + query},
	}
}

// ParseQuestions splits raw into trimmed non-empty lines.
func ParseQuestions(raw string) []string {
	lines := strings.Split(raw, "\n")
	questions := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
