package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"numerologyx/internal/gateway"
	"numerologyx/internal/session"
	"numerologyx/internal/translation"
	"numerologyx/internal/types"
)

// APIError is the body of an error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondOK writes payload with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// classify maps a domain error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch gateway.KindOf(err) {
	case gateway.KindConfiguration:
		return http.StatusServiceUnavailable, "configuration"
	case gateway.KindValidation:
		if errors.Is(err, types.ErrInvalidIdentity) {
			return http.StatusBadRequest, "invalid_identity"
		}
		return http.StatusBadGateway, "validation"
	case gateway.KindService:
		return http.StatusBadGateway, "service"
	}

	switch {
	case errors.Is(err, types.ErrInvalidIdentity):
		return http.StatusBadRequest, "invalid_identity"
	case errors.Is(err, translation.ErrUnknownLanguage):
		return http.StatusBadRequest, "unknown_language"
	case errors.Is(err, session.ErrEmptyMessage), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, session.ErrNoIdentity):
		return http.StatusConflict, "no_identity"
	case errors.Is(err, session.ErrNotLoaded):
		return http.StatusConflict, "not_loaded"
	case errors.Is(err, session.ErrTurnInFlight), errors.Is(err, translation.ErrTranslationInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, "superseded"
	}
	return http.StatusInternalServerError, "internal"
}

func respondDomainError(c *gin.Context, err error) {
	status, code := classify(err)
	RespondError(c, status, code, err)
}
