package catalog

import (
	"errors"
	"net/http"
)

// Domain errors for catalog access.
var (
	ErrUnavailable      = errors.New("document catalog unavailable")
	ErrDocumentNotFound = errors.New("catalog document not found")
)

// MapHTTPStatus maps catalog errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrDocumentNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
