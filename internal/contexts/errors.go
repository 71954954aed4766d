package contexts

import (
	"errors"
	"net/http"
)

// Domain errors for context session operations.
var (
	ErrSessionNotFound  = errors.New("context session not found")
	ErrUnknownFacet     = errors.New("unknown facet")
	ErrUnknownMode      = errors.New("unknown selection mode")
	ErrUnknownDocument  = errors.New("document not in catalog snapshot")
	ErrSessionDegraded  = errors.New("catalog snapshot unavailable")
	ErrInvalidSessionID = errors.New("invalid session id")
)

// MapHTTPStatus maps context domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrUnknownDocument):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownFacet),
		errors.Is(err, ErrUnknownMode),
		errors.Is(err, ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionDegraded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
