package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Fallback messages shown when the server gives nothing usable.
const (
	GenericMessage = "something went wrong, please try again"
	NetworkMessage = "unable to reach the server, please try again"
)

var (
	// ErrNetwork marks transport failures: refused connections, timeouts, broken bodies.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized marks requests rejected for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a request the server answered with success=false.
type APIError struct {
	Status int    // HTTP status code
	Code   string // response_code from the envelope
	Desc   string // response_desc from the envelope, shown verbatim
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message(), e.Code)
	}
	return e.Message()
}

// Message returns the server description or the generic fallback.
func (e *APIError) Message() string {
	if e.Desc == "" {
		return GenericMessage
	}
	return e.Desc
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrNetwork) {
		return NetworkMessage
	}
	return err.Error()
}
