package drivesdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	// ErrNodeNotFound signals a name lookup miss on a folder. It is a
	// control-flow signal, not a failure: callers create the folder, treat
	// the path as absent, or upload fresh.
	ErrNodeNotFound = errors.New("drive: node not found")

	ErrNotFolder = errors.New("drive: node is not a folder")
	ErrNotLoggedIn = errors.New("drive: not logged in")
)

// APIError is a drive service error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"server_error_code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive api error: %d %s %s", e.Status, e.Code, e.Message)
}

// Transient reports whether the error is worth retrying. The service answers
// 500/503 during its routine wobbles; everything else it means.
func (e *APIError) Transient() bool {
	return e.Status == http.StatusInternalServerError || e.Status == http.StatusServiceUnavailable
}

// IsTransient classifies an error for retry purposes. Service errors are
// retried only for the 500/503 class; lookup misses and context cancellation
// are never retried; anything else (connection resets, timeouts, stray EOFs)
// is assumed transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrNotFolder) || errors.Is(err, ErrNotLoggedIn) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return true
}

// handleAPIError folds the transport error and the error-state response into
// a single error value for an operation.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok && apiErr != nil {
			apiErr.Status = resp.StatusCode
			return fmt.Errorf("%s: %w", operation, apiErr)
		}
		return fmt.Errorf("%s: %w", operation, &APIError{Status: resp.StatusCode, Message: resp.String()})
	}

	return nil
}
