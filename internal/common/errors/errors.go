// Package errors provides the structured error type shared by the HTTP API and
// the job workers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeQuestionnaireInvalid ErrorCode = "QUESTIONNAIRE_INVALID"
	ErrCodeRequestInvalid       ErrorCode = "REQUEST_INVALID"

	ErrCodeLLMTimeout     ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeTriageFailed   ErrorCode = "TRIAGE_FAILED"

	ErrCodeEmbeddingFailed    ErrorCode = "EMBEDDING_FAILED"
	ErrCodeVectorSearchFailed ErrorCode = "VECTOR_SEARCH_FAILED"

	ErrCodeERPRequestFailed ErrorCode = "ERP_REQUEST_FAILED"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	ErrCodeSolarLookupFailed ErrorCode = "SOLAR_LOOKUP_FAILED"
	ErrCodeCityNotFound      ErrorCode = "CITY_NOT_FOUND"

	ErrCodeAuthentication          ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeVerificationCodeInvalid ErrorCode = "VERIFICATION_CODE_INVALID"
	ErrCodeNotificationSendFailed  ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeProposalNotFound         ErrorCode = "PROPOSAL_NOT_FOUND"

	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewQuestionnaireInvalidError rejects a malformed questionnaire before it reaches the pipeline.
func NewQuestionnaireInvalidError(details string) *StandardError {
	return newError(ErrCodeQuestionnaireInvalid, "Questionnaire validation failed", details, false)
}

func NewRequestInvalidError(details string) *StandardError {
	return newError(ErrCodeRequestInvalid, "Request validation failed", details, false)
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM call timed out", errDetails(err), true)
}

// NewLLMUnavailableError is returned when every LLM invocation for a request
// failed at the transport or auth level.
func NewLLMUnavailableError(err error) *StandardError {
	return newError(ErrCodeLLMUnavailable, "Language model service unavailable", errDetails(err), true)
}

func NewTriageFailedError(details string) *StandardError {
	return newError(ErrCodeTriageFailed, "Error processing the model's response", details, false)
}

func NewEmbeddingFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingFailed, "Embedding request failed", errDetails(err), true)
}

func NewVectorSearchFailedError(index string, err error) *StandardError {
	return newError(ErrCodeVectorSearchFailed, "Vector search failed", fmt.Sprintf("index: %s, error: %s", index, errDetails(err)), true)
}

// NewERPRequestFailedError wraps a failing OData call.
func NewERPRequestFailedError(entity string, err error) *StandardError {
	return newError(ErrCodeERPRequestFailed, fmt.Sprintf("ERP request for '%s' failed", entity), errDetails(err), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewSolarLookupFailedError(details string) *StandardError {
	return newError(ErrCodeSolarLookupFailed, "Solar radiation lookup failed", details, true)
}

func NewCityNotFoundError(city string) *StandardError {
	return newError(ErrCodeCityNotFound, "City not found in OpenCage data", fmt.Sprintf("city: %s", city), false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewVerificationCodeInvalidError() *StandardError {
	return newError(ErrCodeVerificationCodeInvalid, "Invalid or expired verification code", "", false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), errDetails(err), true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", errDetails(err), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true)
}

func NewProposalNotFoundError(id int64) *StandardError {
	return newError(ErrCodeProposalNotFound, fmt.Sprintf("Proposal with ID %d not found", id), "", false)
}

func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfiguration, "Service is not configured", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Conversion helpers
// ==========================

// AsStandardError unwraps err into a *StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HTTPStatus maps an error code onto the status the API returns for it.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeQuestionnaireInvalid, ErrCodeRequestInvalid, ErrCodeTriageFailed:
		return http.StatusBadRequest
	case ErrCodeAuthentication, ErrCodeVerificationCodeInvalid:
		return http.StatusUnauthorized
	case ErrCodeResourceNotFound, ErrCodeProposalNotFound, ErrCodeCityNotFound:
		return http.StatusNotFound
	case ErrCodeLLMUnavailable, ErrCodeERPRequestFailed, ErrCodeSolarLookupFailed,
		ErrCodeEmbeddingFailed, ErrCodeVectorSearchFailed, ErrCodeNotificationSendFailed:
		return http.StatusBadGateway
	case ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the job retry budget for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeERPRequestFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeEmbeddingFailed:
		return 3

	case ErrCodeLLMUnavailable, ErrCodeSolarLookupFailed:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "TRIAGE") || strings.Contains(codeStr, "EMBEDDING"):
		return "AI"
	case strings.Contains(codeStr, "VECTOR"):
		return "SEARCH"
	case strings.Contains(codeStr, "ERP"):
		return "ERP"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PROPOSAL"):
		return "DATABASE"
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "VERIFICATION"):
		return "AUTH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SOLAR") || strings.Contains(codeStr, "CITY"):
		return "SOLAR"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// ==========================
// 4. BPMN integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}
