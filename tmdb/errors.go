package tmdb

import (
	"errors"
	"fmt"

	"github.com/s0up4200/moviecat/catalog"
)

// Common errors
var (
	// ErrMissingCredentials indicates neither an API key nor an access token was given
	ErrMissingCredentials = errors.New("tmdb API key or access token is required")
	// ErrInvalidPage indicates a page number below 1 was requested
	ErrInvalidPage = errors.New("page must be at least 1")
)

// APIError represents a non-2xx response from TMDB
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// FetchError is returned for every failed page fetch regardless of cause
type FetchError struct {
	Category catalog.Category
	Page     int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Category, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
