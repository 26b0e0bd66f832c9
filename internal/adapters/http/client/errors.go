package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel kinds for client errors. Every failed call matches ErrRequestFailed.
var (
	ErrRequestFailed    = errors.New("request failed")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmptyResponse    = errors.New("empty response body")
	ErrInvalidBaseURL   = errors.New("invalid base url")
)

// Failure kinds, used as metric labels and on RequestError.Kind.
const (
	KindEncode    = "encode"
	KindRequest   = "request"
	KindTransport = "transport"
	KindRead      = "read"
	KindStatus    = "status"
	KindDecode    = "decode"
)

// RequestError describes a failed backend call. Err is the original cause,
// returned unchanged by Unwrap.
type RequestError struct {
	Op         string
	Kind       string
	Method     string
	Path       string
	ID         int64
	HasID      bool
	StatusCode int
	// Message is the backend's own error text, when it sent one.
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.HasID {
		b.WriteString(" ")
		b.WriteString(strconv.FormatInt(e.ID, 10))
	}
	fmt.Fprintf(&b, ": %s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is makes every RequestError match ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// StatusCode extracts the HTTP status of a failed call, or 0 when the call
// never got a response.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
