// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Command errors and exit codes.
//
// Handlers always return errors; main prints them and exits with ExitCode.

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/sladenchat-tui/internal/config"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/session"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitStorageError indicates the conversation store failed
	ExitStorageError = 6
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "config")
	Action  string // Action being performed (e.g., "export", "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError reports a malformed command line.
type UsageError struct {
	Usage   string
	Message string
}

func (e *UsageError) Error() string {
	if e.Usage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\nusage: %s", e.Message, e.Usage)
}

func usageErr(usage, format string, args ...interface{}) error {
	return &UsageError{Usage: usage, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode picks the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var validation config.ValidateErrors
	var fieldErr config.ValidationError
	var storeErr *storage.StoreError
	var clientErr *lightrag.ClientError

	switch {
	case errors.As(err, &usage),
		errors.Is(err, querymode.ErrInvalidMode),
		errors.Is(err, session.ErrEmptyQuery):
		return ExitUsageError
	case errors.As(err, &validation), errors.As(err, &fieldErr):
		return ExitConfigError
	case errors.As(err, &storeErr):
		return ExitStorageError
	case errors.As(err, &clientErr):
		switch clientErr.Type {
		case lightrag.ErrTypeUnauthorized, lightrag.ErrTypeInvalidAPIKey:
			return ExitAuthError
		case lightrag.ErrTypeTimeout:
			return ExitTimeoutError
		default:
			return ExitNetworkError
		}
	default:
		return ExitGeneralError
	}
}
