package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
)

// Error types for Microsoft Graph API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("graph: unauthorised")
	// ErrForbidden indicates the user lacks permission for the requested resource.
	ErrForbidden = errors.New("graph: forbidden")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("graph: not found")
	// ErrRateLimited indicates the request was throttled by Microsoft Graph.
	ErrRateLimited = errors.New("graph: rate limited")
	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("graph: bad request")
	// ErrServerError indicates a server-side error from Microsoft Graph.
	ErrServerError = errors.New("graph: server error")
	// ErrRequestFailed covers any other non-success status.
	ErrRequestFailed = errors.New("graph: request failed")
)

// StatusError is a non-success response from a REST call.
type StatusError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter int
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s: %s)", WrapError(e.Status), e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d)", WrapError(e.Status), e.Status)
}

func (e *StatusError) Unwrap() error { return WrapError(e.Status) }

// WrapError converts an HTTP status code to an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	if statusCode >= 500 {
		return ErrServerError
	}
	return ErrRequestFailed
}

// newStatusError decodes the Graph error envelope when present.
func newStatusError(status int, body []byte) *StatusError {
	ret := &StatusError{Status: status}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		ret.Code = envelope.Error.Code
		ret.Message = envelope.Error.Message
	}
	return ret
}

// Describe renders err for display to the user. Graph service errors show
// their code and message; anything else falls back to err.Error().
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var oDataError *odataerrors.ODataError
	if errors.As(err, &oDataError) {
		if main := oDataError.GetErrorEscaped(); main != nil {
			code, message := "", ""
			if main.GetCode() != nil {
				code = *main.GetCode()
			}
			if main.GetMessage() != nil {
				message = *main.GetMessage()
			}
			if code != "" || message != "" {
				return fmt.Sprintf("%s: %s", code, message)
			}
		}
	}
	return err.Error()
}
