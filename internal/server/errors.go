package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"

	"cafedash/internal/dashboard"
	"cafedash/internal/dataset"
	"cafedash/internal/ordering"
	"cafedash/internal/sheets"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"error"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, Code: code, Message: message}
}

// apiError maps a domain error onto a status code. Dataset load failures
// are upstream failures and map to 502 whatever their cause.
func apiError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *ordering.ValidationError
	if errors.As(err, &verr) {
		e := newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "order validation failed")
		e.Details = verr.Fields
		return e
	}

	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		e := newAPIError(http.StatusBadGateway, "DATASET_UNAVAILABLE", err.Error())
		e.Details = map[string]string{"dataset": string(loadErr.Dataset), "sheet": loadErr.Sheet}
		return e
	}

	switch {
	case errors.Is(err, sheets.ErrSheetNotFound):
		return newAPIError(http.StatusNotFound, "SHEET_NOT_FOUND", err.Error())
	case errors.Is(err, sheets.ErrPermissionDenied):
		return newAPIError(http.StatusForbidden, "SHEET_FORBIDDEN", err.Error())
	case errors.Is(err, dashboard.ErrNoIdentity):
		return newAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Email header is required")
	case errors.Is(err, dashboard.ErrUnknownManager):
		return newAPIError(http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, dashboard.ErrUnknownInvoice):
		return newAPIError(http.StatusNotFound, "INVOICE_NOT_FOUND", err.Error())
	case errors.Is(err, dataset.ErrUnknownProvider):
		return newAPIError(http.StatusNotFound, "PROVIDER_NOT_FOUND", err.Error())
	case errors.Is(err, ordering.ErrInvalidOrder):
		return newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, ordering.ErrEmptyOrder), errors.Is(err, ordering.ErrUnknownProduct):
		return newAPIError(http.StatusUnprocessableEntity, "UNPROCESSABLE_ORDER", err.Error())
	case errors.Is(err, ordering.ErrWebhookRejected):
		return newAPIError(http.StatusBadGateway, "WEBHOOK_REJECTED", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// fail logs err and renders it.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	event := hlog.FromRequest(r).Warn()
	if e.StatusCode >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.Err(err).Int("status", e.StatusCode).Str("code", e.Code).Msg("Request failed")
	_ = render.Render(w, r, e)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", message))
}
