// Package errors provides shared error helpers for HTTP clients and wrapping.
package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MinErrorStatusCode is the lowest HTTP status treated as an error.
const MinErrorStatusCode = 400

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// HTTPError is a non-2xx response from a remote endpoint.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%s): %s", e.Status, e.Message)
	}
	return "HTTP error: " + e.Status
}

// ParseHTTPError returns nil for successful responses and an *HTTPError otherwise.
// A JSON body with an "error" or "message" field supplies the message.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    fmt.Sprintf("read error body: %v", err),
		}
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := string(body)
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}

	return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Message: msg}
}

// WrapWithContext wraps err with a context prefix; nil stays nil.
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// WrapWithContextf is WrapWithContext with a formatted prefix.
func WrapWithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
