package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the backend. Message carries the
// user-facing text the backend put in the error body, when present, so the
// UI can surface it inline next to the triggering control.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// newAPIError extracts the user-facing message from an error response body.
// The backend uses {"error": ...}; the auth endpoints use {"detail": ...}.
func newAPIError(path string, resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	if msg := strings.TrimSpace(body.Error); msg != "" {
		apiErr.Message = msg
	} else if msg := strings.TrimSpace(body.Detail); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// UserMessage returns text suitable for showing to the user: the backend's
// own message when the error is an APIError with one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
