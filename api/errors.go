// ABOUTME: Normalized request errors for backend calls
// ABOUTME: Extracts the server's message field and falls back to per-operation defaults
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error is the single error shape returned for failed requests.
// StatusCode is zero when the request never produced a response.
type Error struct {
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode >= 300) {
		if msg == "" {
			return fmt.Sprintf("request failed with status %d", e.StatusCode)
		}
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, msg)
	}
	if msg == "" {
		return "request failed"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the server rejected the credential.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Rejected builds an error for a 2xx response whose envelope reported failure.
func Rejected(message string) *Error {
	return &Error{Message: message}
}

func errorFromResponse(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: body}
	if gjson.ValidBytes(body) {
		e.Message = gjson.GetBytes(body, "message").String()
	}
	return e
}
