package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrBlockedURL marks a request rejected by the outbound allowlist before
// any network I/O. It is never retried.
var ErrBlockedURL = errors.New("blocked outbound request to non-Azure endpoint")

// APIError is a terminal error from an Azure REST endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Hint       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	if e.Hint != "" {
		msg += " | Hint: " + e.Hint
	}
	return msg
}

// statusHint returns a remediation hint for common HTTP status codes.
func statusHint(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Your session may have expired. Try signing in again."
	case http.StatusForbidden:
		return "You don't have permission. Check your Azure RBAC role or access policy."
	case http.StatusNotFound:
		return "The resource was not found. It may have been deleted."
	case http.StatusTooManyRequests:
		return "Too many requests. Retries with backoff were already applied."
	default:
		return ""
	}
}

// newAPIError builds an APIError from an Azure error response body. ARM and
// Key Vault wrap errors in an {"error":{"code","message"}} envelope; token
// endpoints use flat "error"/"error_description" string fields instead, so
// both shapes are attempted.
func newAPIError(status int, body []byte) *APIError {
	code := "UnknownError"
	message := "An unknown error occurred"

	var wrapped struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && (wrapped.Error.Code != "" || wrapped.Error.Message != "") {
		if wrapped.Error.Code != "" {
			code = wrapped.Error.Code
		}
		if wrapped.Error.Message != "" {
			message = wrapped.Error.Message
		}
	} else {
		var flat struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(body, &flat); err == nil {
			if flat.Error != "" {
				code = flat.Error
			}
			if flat.ErrorDescription != "" {
				message = flat.ErrorDescription
			}
		} else if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
			message = trimmed
		}
	}

	return &APIError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Hint:       statusHint(status),
	}
}
