package analyzer

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorKind is the user-facing classification of an analysis failure.
type ErrorKind string

const (
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindRateLimit  ErrorKind = "rate_limit"
	ErrorKindAuth       ErrorKind = "auth"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// Classify maps an analysis error to a user-facing kind. The API layer uses
// the kind to pick a response status and message.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorKindTimeout
		}
		return ErrorKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid url"):
		return ErrorKindValidation
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return ErrorKindRateLimit
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key") || strings.Contains(msg, "forbidden"):
		return ErrorKindAuth
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return ErrorKindNetwork
	default:
		return ErrorKindUnknown
	}
}
