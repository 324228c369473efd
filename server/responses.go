package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Error codes and the generic descriptions shown to callers
const (
	errorInvalidRequest       = "invalid_request"
	errorPreconditionFailed   = "precondition_failed"
	errorUnsupportedTokenType = "unsupported_token_type"
	errorAuthentication       = "authentication_failed"
	errorNotFound             = "not_found"
	errorDelivery             = "delivery_failed"
	errorServer               = "server_error"

	descriptionInvalidRequest   = "The request is missing a required parameter."
	descriptionPrecondition     = "The browser session does not allow this operation."
	descriptionUnsupportedToken = "The token type is not supported."
	descriptionAuthentication   = "Authentication failed."
	descriptionNotFound         = "The requested resource was not found."
	descriptionDelivery         = "The login email could not be sent."
	descriptionServer           = "An internal error occurred."
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// writeJSONError writes an error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeControllerError maps a flow controller error to its response. The error
// itself is logged and never sent to the browser.
func writeControllerError(w http.ResponseWriter, r *http.Request, err error) {
	code, description, status := errorResponse(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	writeJSONError(w, code, description, status)
}

func errorResponse(err error) (code, description string, status int) {
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		return errorInvalidRequest, descriptionInvalidRequest, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrPreconditionFailed):
		return errorPreconditionFailed, descriptionPrecondition, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnrecognizedTokenType):
		return errorUnsupportedTokenType, descriptionUnsupportedToken, http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrNotFound):
		return errorNotFound, descriptionNotFound, http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrDelivery):
		return errorDelivery, descriptionDelivery, http.StatusInternalServerError
	case apperrors.Is(err, apperrors.ErrAuthentication):
		return errorAuthentication, descriptionAuthentication, http.StatusUnauthorized
	default:
		return errorServer, descriptionServer, http.StatusInternalServerError
	}
}
