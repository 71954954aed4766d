package chat

import (
	"errors"
	"net/http"
)

var (
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrInvalidSessionID = errors.New("invalid chat session id")
	ErrNoModel          = errors.New("no chat model configured")
	ErrUnknownModel     = errors.New("unknown chat model")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrCompletionFailed = errors.New("completion request failed")
)

// MapHTTPStatus translates chat errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSessionID),
		errors.Is(err, ErrUnknownModel),
		errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoModel):
		return http.StatusConflict
	case errors.Is(err, ErrCompletionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
