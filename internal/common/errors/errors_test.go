package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
		want int
	}{
		{"questionnaire invalid", ErrCodeQuestionnaireInvalid, http.StatusBadRequest},
		{"triage failed", ErrCodeTriageFailed, http.StatusBadRequest},
		{"bad code", ErrCodeVerificationCodeInvalid, http.StatusUnauthorized},
		{"proposal missing", ErrCodeProposalNotFound, http.StatusNotFound},
		{"llm unavailable", ErrCodeLLMUnavailable, http.StatusBadGateway},
		{"llm timeout", ErrCodeLLMTimeout, http.StatusGatewayTimeout},
		{"database", ErrCodeQueryExecutionFailed, http.StatusInternalServerError},
		{"unknown", ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	original := NewProposalNotFoundError(7)
	wrapped := fmt.Errorf("loading proposal: %w", original)
	assert.Same(t, original, AsStandardError(wrapped))

	plain := AsStandardError(fmt.Errorf("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable keeps budget", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewERPRequestFailedError("Customers", fmt.Errorf("status 503")))
		assert.Equal(t, string(ErrCodeERPRequestFailed), bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.Equal(t, "ERP", bpmn.ErrorVariables["errorCategory"])
	})

	t.Run("non retryable has zero retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewQuestionnaireInvalidError("occupants is required"))
		assert.Equal(t, 0, bpmn.Retries)
		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "occupants is required", vars["errorDetails"])
		assert.Equal(t, "VALIDATION", vars["errorCategory"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMUnavailable))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeVectorSearchFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeProposalNotFound))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeVerificationCodeInvalid))
	assert.Equal(t, "SOLAR", GetErrorCategory(ErrCodeCityNotFound))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Error(t *testing.T) {
	err := NewSolarLookupFailedError("NASA API returned 503").WithMetadata("city", "Nairobi")
	assert.Equal(t, "StandardError[SOLAR_LOOKUP_FAILED]: Solar radiation lookup failed: NASA API returned 503", err.Error())
	assert.Equal(t, "Nairobi", err.Metadata["city"])
	assert.True(t, IsRetryableErrorCode(err.Code))
}
