// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("poll not found")
	ErrPollClosed       = errors.New("poll is closed")
	ErrInvalidOption    = errors.New("option does not belong to poll")
	ErrDuplicateVote    = errors.New("user has already voted on this poll")
	ErrForbidden        = errors.New("only the poll creator or an admin can do this")
	ErrValidation       = errors.New("invalid poll")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error codes reported to API clients
const (
	CodeNotFound         = "NOT_FOUND"
	CodePollClosed       = "POLL_CLOSED"
	CodeInvalidOption    = "INVALID_OPTION"
	CodeDuplicateVote    = "DUPLICATE_VOTE"
	CodeForbidden        = "FORBIDDEN"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeUnknown          = "UNKNOWN"
)

// ValidationError lists every rejected field of a create-poll request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	// Stable order for messages and tests
	for _, field := range []string{"question", "options", "category"} {
		if msg, ok := e.Fields[field]; ok {
			b.WriteString("; ")
			b.WriteString(field)
			b.WriteString(": ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Code maps an error to its client-facing code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrPollClosed):
		return CodePollClosed
	case errors.Is(err, ErrInvalidOption):
		return CodeInvalidOption
	case errors.Is(err, ErrDuplicateVote):
		return CodeDuplicateVote
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	}
	return CodeUnknown
}

// Retryable reports whether the caller may safely repeat the operation.
// Only transient store failures qualify; a retried vote that had in fact
// committed fails with ErrDuplicateVote instead of counting twice.
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
