package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"solar-advisor/internal/common/erp"
	apperrors "solar-advisor/internal/common/errors"

	"github.com/go-playground/validator/v10"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"path":   r.URL.Path,
		"code":   string(stdErr.Code),
		"status": status,
		"error":  stdErr.Error(),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields)
	} else {
		s.logger.Debug("Request rejected", fields)
	}

	body := errorBody{Code: stdErr.Code, Message: stdErr.Message}
	if status < http.StatusInternalServerError {
		body.Details = stdErr.Details
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v and validates its struct tags. invalid
// builds the error returned for a malformed or invalid body.
func (s *Server) decode(r *http.Request, v interface{}, invalid func(string) *apperrors.StandardError) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return invalid(fmt.Sprintf("malformed JSON body: %v", err))
	}
	if err := s.validate.Struct(v); err != nil {
		return invalid(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// erpError maps ERP client errors onto API error codes.
func erpError(entity string, err error) error {
	switch {
	case errors.Is(err, erp.ErrInvalidEntity), errors.Is(err, erp.ErrInvalidField):
		return apperrors.NewRequestInvalidError(err.Error())
	case errors.Is(err, erp.ErrNotFound):
		return apperrors.NewResourceNotFoundError("ERP", err.Error())
	case errors.Is(err, erp.ErrNotConfigured):
		return apperrors.NewConfigurationError(err.Error())
	default:
		return apperrors.NewERPRequestFailedError(entity, err)
	}
}
