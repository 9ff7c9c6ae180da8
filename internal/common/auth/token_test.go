package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expires, err := m.Issue("eng@solarmax.example")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "eng@solarmax.example", claims.Subject)
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	good, _, err := m.Issue("eng@solarmax.example")
	require.NoError(t, err)

	expired := NewTokenManager("secret", -time.Minute)
	old, _, err := expired.Issue("eng@solarmax.example")
	require.NoError(t, err)

	other, _, err := NewTokenManager("other", time.Hour).Issue("eng@solarmax.example")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		StandardClaims: jwt.StandardClaims{Subject: "x", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", good + "x"},
		{"expired", old},
		{"wrong secret", other},
		{"none algorithm", noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "lower case", header: "bearer abc", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "basic", header: "Basic abc", wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectContext(t *testing.T) {
	_, ok := SubjectFromContext(context.Background())
	assert.False(t, ok)

	s, ok := SubjectFromContext(WithSubject(context.Background(), "a@b"))
	assert.True(t, ok)
	assert.Equal(t, "a@b", s)
}
