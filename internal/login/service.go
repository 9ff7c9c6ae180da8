// Package login implements email verification code sign-in for sales
// engineers registered in the ERP.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solar-advisor/internal/common/auth"
	"solar-advisor/internal/common/erp"
	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/google/uuid"
)

const (
	codeSubject = "Your Verification Code"
	tokenType   = "bearer"
)

// Directory resolves a salesperson card by email.
type Directory interface {
	FindSalesperson(ctx context.Context, email string) (erp.Record, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Options struct {
	CodeLength int
	// TestAccountEmail bypasses the ERP lookup. Empty disables it.
	TestAccountEmail string
	// SMS, when set, also delivers the code to the salesperson's phone.
	SMS SMSSender
}

type Service struct {
	directory Directory
	codes     *CodeStore
	mailer    Mailer
	tokens    *auth.TokenManager
	opts      Options
	logger    logger.Logger
}

func NewService(directory Directory, codes *CodeStore, mailer Mailer, tokens *auth.TokenManager, opts Options, log logger.Logger) *Service {
	return &Service{
		directory: directory,
		codes:     codes,
		mailer:    mailer,
		tokens:    tokens,
		opts:      opts,
		logger:    log,
	}
}

// Lookup returns the salesperson registered under email.
func (s *Service) Lookup(ctx context.Context, email string) (*models.Salesperson, error) {
	person, _, err := s.lookup(ctx, email)
	return person, err
}

func (s *Service) lookup(ctx context.Context, email string) (*models.Salesperson, erp.Record, error) {
	email = strings.TrimSpace(email)
	if s.opts.TestAccountEmail != "" && strings.EqualFold(email, s.opts.TestAccountEmail) {
		return &models.Salesperson{Email: email, Name: "Test User", Code: "TEST001", Type: models.UserTypeSalesEngineer}, nil, nil
	}

	rec, err := s.directory.FindSalesperson(ctx, email)
	if err != nil {
		if errors.Is(err, erp.ErrNotFound) {
			return nil, nil, apperrors.NewResourceNotFoundError("ERP", fmt.Sprintf("No salesperson registered with email %s", email))
		}
		return nil, nil, apperrors.NewERPRequestFailedError(erp.EntitySalespersons, err)
	}
	return &models.Salesperson{
		Email: email,
		Name:  erp.String(rec, "Name"),
		Code:  erp.String(rec, "Code"),
		Type:  models.UserTypeSalesEngineer,
	}, rec, nil
}

// RequestCode issues a fresh code for a registered salesperson and emails it.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	person, rec, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	code, err := GenerateCode(s.opts.CodeLength)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.codes.Save(ctx, person.Email, code); err != nil {
		return apperrors.NewInternalError(err)
	}

	body := "Your 2-step verification code is: " + code
	if _, err := s.mailer.SendEmail(ctx, person.Email, codeSubject, body); err != nil {
		return apperrors.NewNotificationSendFailedError("email", err)
	}
	s.sendSMS(ctx, person.Email, erp.String(rec, "Phone_No"), body)

	s.logger.Info("Verification code sent", map[string]interface{}{"email": person.Email})
	return nil
}

func (s *Service) sendSMS(ctx context.Context, email, phone, body string) {
	if s.opts.SMS == nil || phone == "" {
		return
	}
	if _, err := s.opts.SMS.SendSMS(ctx, phone, body); err != nil {
		s.logger.Warn("Verification SMS failed", map[string]interface{}{"email": email, "error": err.Error()})
	}
}

// VerifyCode consumes a pending code and issues an access token.
func (s *Service) VerifyCode(ctx context.Context, req models.VerifyCodeRequest) (*models.TokenResponse, error) {
	ok, err := s.codes.Consume(ctx, req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewVerificationCodeInvalidError()
	}

	person, err := s.Lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	token, _, err := s.tokens.Issue(person.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("Salesperson signed in", map[string]interface{}{"email": person.Email, "code": person.Code})
	return &models.TokenResponse{AccessToken: token, TokenType: tokenType, User: *person}, nil
}

// Greeting is the dashboard message for a signed-in salesperson.
func Greeting(person *models.Salesperson) string {
	return fmt.Sprintf("Hello %s, welcome to your dashboard!", person.Name)
}

// LogMailer stands in for SES when email delivery is disabled and writes the
// message to the debug log under a generated message ID.
type LogMailer struct {
	Logger logger.Logger
}

func (m LogMailer) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	id := "local-" + uuid.NewString()
	m.Logger.Debug("Email delivery disabled, message not sent", map[string]interface{}{
		"messageId": id,
		"to":        to,
		"subject":   subject,
		"body":      body,
	})
	return id, nil
}
