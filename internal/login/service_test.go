package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"solar-advisor/internal/common/auth"
	"solar-advisor/internal/common/erp"
	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	people map[string]erp.Record
	err    error
}

func (d *fakeDirectory) FindSalesperson(ctx context.Context, email string) (erp.Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	if rec, ok := d.people[email]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("%w: salesperson %s", erp.ErrNotFound, email)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return "msg-1", nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	last := m.sent[len(m.sent)-1]
	return last[strings.LastIndex(last, " ")+1:]
}

type fakeSMS struct{ phones []string }

func (s *fakeSMS) SendSMS(ctx context.Context, phone, message string) (string, error) {
	s.phones = append(s.phones, phone)
	return "sms-1", nil
}

const secret = "test-secret"

func newTestService(t *testing.T, dir Directory, mailer Mailer, opts Options) *Service {
	t.Helper()
	store, _ := newMiniredisStore(t)
	if opts.CodeLength == 0 {
		opts.CodeLength = 4
	}
	return NewService(dir, store, mailer, auth.NewTokenManager(secret, time.Hour), opts, logger.NewTestLogger(t))
}

func janeDirectory() *fakeDirectory {
	return &fakeDirectory{people: map[string]erp.Record{
		"jane@dayliff.com": {"Name": "Jane Achieng", "Code": "SP014", "E_Mail": "jane@dayliff.com", "Phone_No": "+254700000001"},
	}}
}

func TestService_RequestAndVerify(t *testing.T) {
	mailer := &fakeMailer{}
	sms := &fakeSMS{}
	svc := newTestService(t, janeDirectory(), mailer, Options{SMS: sms})
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "jane@dayliff.com"))
	require.Len(t, mailer.sent, 1)
	assert.True(t, strings.HasPrefix(mailer.sent[0], "jane@dayliff.com|Your Verification Code|Your 2-step verification code is: "))
	assert.Equal(t, []string{"+254700000001"}, sms.phones)

	code := mailer.lastCode(t)
	resp, err := svc.VerifyCode(ctx, models.VerifyCodeRequest{Email: "jane@dayliff.com", Code: code})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, models.Salesperson{Email: "jane@dayliff.com", Name: "Jane Achieng", Code: "SP014", Type: "sales_engineer"}, resp.User)

	claims, err := auth.NewTokenManager(secret, time.Hour).Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "jane@dayliff.com", claims.Subject)

	_, err = svc.VerifyCode(ctx, models.VerifyCodeRequest{Email: "jane@dayliff.com", Code: code})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeVerificationCodeInvalid, apperrors.AsStandardError(err).Code)
}

func TestService_TestAccountSkipsERP(t *testing.T) {
	mailer := &fakeMailer{}
	dir := &fakeDirectory{err: errors.New("erp unreachable")}
	svc := newTestService(t, dir, mailer, Options{TestAccountEmail: "tester@example.com"})

	require.NoError(t, svc.RequestCode(context.Background(), "tester@example.com"))
	resp, err := svc.VerifyCode(context.Background(), models.VerifyCodeRequest{Email: "tester@example.com", Code: mailer.lastCode(t)})
	require.NoError(t, err)
	assert.Equal(t, "Test User", resp.User.Name)
	assert.Equal(t, "TEST001", resp.User.Code)
}

func TestService_RequestCode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dir      *fakeDirectory
		mailer   *fakeMailer
		email    string
		wantCode apperrors.ErrorCode
	}{
		{"unknown email", janeDirectory(), &fakeMailer{}, "nobody@dayliff.com", apperrors.ErrCodeResourceNotFound},
		{"erp down", &fakeDirectory{err: erp.ErrRequestFailed}, &fakeMailer{}, "jane@dayliff.com", apperrors.ErrCodeERPRequestFailed},
		{"mail fails", janeDirectory(), &fakeMailer{err: errors.New("throttled")}, "jane@dayliff.com", apperrors.ErrCodeNotificationSendFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.dir, tt.mailer, Options{})
			err := svc.RequestCode(context.Background(), tt.email)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}

func TestService_VerifyCode_WrongCode(t *testing.T) {
	svc := newTestService(t, janeDirectory(), &fakeMailer{}, Options{})

	_, err := svc.VerifyCode(context.Background(), models.VerifyCodeRequest{Email: "jane@dayliff.com", Code: "0000"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeVerificationCodeInvalid, apperrors.AsStandardError(err).Code)
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Hello Jane, welcome to your dashboard!", Greeting(&models.Salesperson{Name: "Jane"}))
}

func TestLogMailer(t *testing.T) {
	id, err := LogMailer{Logger: logger.NewTestLogger(t)}.SendEmail(context.Background(), "jane@dayliff.com", codeSubject, "body")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "local-"))
}
