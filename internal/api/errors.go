// internal/api/errors.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// NetworkMessage is reported when no response was obtained
const NetworkMessage = "unable to reach the server"

// Kind classifies API failures
type Kind int

const (
	// KindHTTP is a non-2xx response; Status carries the code
	KindHTTP Kind = iota + 1
	// KindNetwork means no response was obtained; Status is 0
	KindNetwork
	// KindValidation means a request body failed before send, or a response failed after receipt
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the API client
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindHTTP && apiErr.Status == http.StatusNotFound
}

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// retryable reports whether a listing may be attempted again after err
func retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork:
		return !errors.Is(apiErr.Err, errBreakerOpen)
	case KindHTTP:
		return apiErr.Status >= http.StatusInternalServerError
	}
	return false
}

func httpError(status int, body []byte) *Error {
	return &Error{Kind: KindHTTP, Status: status, Message: messageFromBody(status, body)}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Status: 0, Message: NetworkMessage, Err: err}
}

func validationError(format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: KindValidation, Message: err.Error(), Err: errors.Unwrap(err)}
}

// messageFromBody extracts a human readable message from a JSON error body.
// Anything unparseable falls back to "HTTP <status>".
func messageFromBody(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d", status)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fallback
	}

	for _, field := range []string{"message", "error"} {
		r := gjson.GetBytes(body, field)
		switch {
		case r.Type == gjson.String && r.Str != "":
			return r.Str
		case r.IsArray():
			var parts []string
			for _, item := range r.Array() {
				if s := item.String(); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return fallback
}

// describeValidation turns validator errors into "field: rule" text
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), rule))
	}
	return strings.Join(parts, "; ")
}
