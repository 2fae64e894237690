// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightrag

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeInvalidAPIKey
	ErrTypeServer
	ErrTypeDecode
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeInvalidAPIKey:
		return "invalid_api_key"
	case ErrTypeServer:
		return "server"
	case ErrTypeDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the LightRAG client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches client errors by type, so errors.Is(err, ErrUnauthorized) holds
// for any 401 regardless of message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinel errors for easy checking.
var (
	ErrConnection    = &ClientError{Type: ErrTypeConnection, Message: "cannot reach LightRAG server"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized  = &ClientError{Type: ErrTypeUnauthorized, Message: "authentication required"}
	ErrInvalidAPIKey = &ClientError{Type: ErrTypeInvalidAPIKey, Message: "invalid API key"}
)

// transportError classifies a failure from http.Client.Do.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: ErrConnection.Message, Cause: err}
}

// statusError builds the error for a non-2xx response. The message carries
// the status line and server detail so it is useful when shown in the chat.
func statusError(resp *http.Response, body []byte, apiKeySent bool) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 500 {
		detail = detail[:500] + "..."
	}
	msg := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if detail != "" {
		msg += "\n" + detail
	}

	errType := ErrTypeServer
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		errType = ErrTypeUnauthorized
	case http.StatusForbidden:
		if apiKeySent {
			errType = ErrTypeInvalidAPIKey
		} else {
			errType = ErrTypeUnauthorized
		}
	}

	return &ClientError{Type: errType, Message: msg, StatusCode: resp.StatusCode}
}
