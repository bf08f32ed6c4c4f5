package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Status != "" {
		return "unexpected status: " + e.Status
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// ReadResponseBody reads at most limit bytes and closes the body. A limit <= 0 reads everything.
func ReadResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("Failed to close response body", "error", closeErr)
		}
	}()

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit)
	}
	return io.ReadAll(body)
}

// EnsureSuccess checks that the response status is 2xx
func EnsureSuccess(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
