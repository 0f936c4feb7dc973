package gui

import (
	"errors"
	"strings"
)

// ErrPickCount is wrapped by AppError when a request has too few or too many picks.
var ErrPickCount = errors.New("invalid number of picks")

// ErrNotConfigured is wrapped by AppError when a facade's backing service is missing.
var ErrNotConfigured = errors.New("service not configured")

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// translateError converts technical error messages to user-friendly text.
func translateError(err error) string {
	if err == nil {
		return "Something went wrong, but no specific error was reported."
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker"), strings.Contains(msg, "rate limit"):
		return "OpenDota is temporarily refusing requests. Try again in a minute."
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
		return "A connection problem occurred. Please check your internet connection and try again."
	case strings.Contains(msg, "database"), strings.Contains(msg, "sql"):
		return "There was a problem accessing the local database."
	}

	if len(msg) > 100 {
		return "An error occurred: " + err.Error()[:97] + "..."
	}
	return "An error occurred: " + err.Error()
}
