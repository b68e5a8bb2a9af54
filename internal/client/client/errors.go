package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrRequest      = errors.New("request rejected")
)

// User-facing messages used when the response carries none of its own.
const (
	MsgNoResponse   = "unable to reach the server, check your connection"
	MsgAccessDenied = "access denied: you do not have permission to access this resource"
	MsgUnauthorized = "unauthorized, please log in again"
	MsgNotFound     = "resource not found"
	MsgServerError  = "server error, please try again later"
	MsgRequestError = "the request could not be processed"
	MsgSessionEnded = "your session has expired, please log in again"
)

// APIError is the single error shape every client call returns. Message is
// always suitable for showing to the user. Status is 0 when no response was
// received.
type APIError struct {
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the status sentinel (ErrUnauthorized, ErrNotFound, ...) and
// the underlying cause, so callers can match either with errors.Is.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinelFor(e.Status); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func sentinelFor(status int) error {
	switch {
	case status == 0:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrRequest
	}
}

// newStatusError builds the APIError for a non-2xx response. The message is
// taken, in order, from the body's "message" field, from the body itself, or
// from a fixed text for the status. 403 always gets the fixed access-denied text.
func newStatusError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}

	if status == http.StatusForbidden {
		e.Message = MsgAccessDenied
		return e
	}

	if msg := bodyMessage(body); msg != "" {
		e.Message = msg
		return e
	}
	if s := stringifyBody(body); s != "" {
		e.Message = s
		return e
	}

	switch sentinelFor(status) {
	case ErrUnauthorized:
		e.Message = MsgUnauthorized
	case ErrNotFound:
		e.Message = MsgNotFound
	case ErrServer:
		e.Message = MsgServerError
	default:
		e.Message = MsgRequestError
	}
	return e
}

// newTransportError builds the APIError for a call that got no response.
func newTransportError(err error) *APIError {
	return &APIError{Message: MsgNoResponse, Err: errors.Join(ErrUnavailable, err)}
}

// newLocalError wraps a failure that happened before the request left the
// client; its own message is the best we have.
func newLocalError(err error) *APIError {
	return &APIError{Message: err.Error(), Err: err}
}

func bodyMessage(body []byte) string {
	var v struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.Message == nil {
		return ""
	}
	return strings.TrimSpace(*v.Message)
}

// stringifyBody renders a body for display: JSON strings are unquoted, other
// JSON is compacted, anything else is returned trimmed.
func stringifyBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return strings.TrimSpace(s)
	}

	var buf bytes.Buffer
	if json.Compact(&buf, trimmed) == nil {
		return buf.String()
	}
	return string(trimmed)
}
