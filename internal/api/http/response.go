package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
)

// ErrorResponse is the body of every failed request. Balance and Required
// are set for insufficient-credit failures so clients can size a top-up.
type ErrorResponse struct {
	Error     string           `json:"error"`
	Kind      domain.ErrorKind `json:"kind"`
	Retryable bool             `json:"retryable"`
	Balance   *int64           `json:"balance,omitempty"`
	Required  *int64           `json:"required,omitempty"`
	Refunded  *bool            `json:"refunded,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInsufficientCredits:
		return http.StatusPaymentRequired
	case domain.KindInvalidAmount, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindDependentWriteFailed, domain.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	resp := ErrorResponse{Error: err.Error(), Kind: kind, Retryable: kind.Retryable()}

	var short *domain.InsufficientCreditsError
	if errors.As(err, &short) {
		resp.Balance = &short.Balance
		resp.Required = &short.Required
	}
	var dwf *domain.DependentWriteFailedError
	if errors.As(err, &dwf) {
		resp.Error = domain.ErrDependentWriteFailed.Error()
		if !dwf.Refunded {
			resp.Error = "purchase could not complete, refund pending"
		}
		resp.Refunded = &dwf.Refunded
	}
	if kind == domain.KindStorageUnavailable {
		logger.Error("Request failed on storage", "error", err)
		resp.Error = domain.ErrStorageUnavailable.Error()
	}
	writeJSON(w, statusFor(kind), resp)
}

func validationError(w http.ResponseWriter, err error) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	var msgs []string
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of [%s]", fe.Field(), fe.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid url", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", fe.Field()))
		}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: strings.Join(msgs, ", "),
		Kind:  domain.KindInvalidInput,
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
