package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/dlovans/tagform/internal/logging"
	"github.com/dlovans/tagform/pkg/form"
)

type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Fields  *form.Error `json:"fields,omitempty"`
}

// SuccessEnvelope wraps every successful response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(SuccessEnvelope{Success: true, Data: data}); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode success response", zap.Error(err))
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode error response",
			zap.Error(err), zap.Int("status", status), zap.String("code", resp.Code))
	}
}

// HandleError maps err to a status code and writes it.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	var (
		notFound   *NotFoundError
		validation *ValidationError
		formErr    *FormError
		conflict   *ConflictError
		syntax     *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", zap.String("error", notFound.Message))
		WriteError(w, r, http.StatusNotFound, ErrorResponse{Code: "not_found", Message: notFound.Message})

	case errors.As(err, &formErr):
		log.Warn("validation failed", zap.Strings("errors", formErr.Fields.Messages()))
		WriteError(w, r, http.StatusUnprocessableEntity, ErrorResponse{Code: "invalid_form", Message: formErr.Message, Fields: formErr.Fields})

	case errors.As(err, &validation):
		log.Warn("validation failed", zap.String("error", validation.Message))
		WriteError(w, r, http.StatusBadRequest, ErrorResponse{Code: "invalid_input", Message: validation.Message})

	case errors.As(err, &conflict):
		log.Warn("conflict", zap.String("error", conflict.Message))
		WriteError(w, r, http.StatusConflict, ErrorResponse{Code: "conflict", Message: conflict.Message})

	case errors.As(err, &syntax), errors.As(err, &typeErr):
		log.Warn("malformed request body", zap.Error(err))
		WriteError(w, r, http.StatusBadRequest, ErrorResponse{Code: "invalid_input", Message: "malformed request body"})

	default:
		log.Error("unexpected error", zap.Error(err), zap.String("type", fmt.Sprintf("%T", err)))
		WriteError(w, r, http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "An unexpected error occurred"})
	}
}
