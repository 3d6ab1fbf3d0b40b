package database

import (
	"context"
	"errors"

	"github.com/koustreak/duckgate/internal/errs"
)

// --- Constructor helpers used by the builder ---

func errValidation(msg string) *errs.Error {
	return errs.New(errs.ErrKindValidation, msg)
}

func errValidationf(format string, args ...any) *errs.Error {
	return errs.Newf(errs.ErrKindValidation, format, args...)
}

func errExecution(msg string, cause error) error {
	if _, ok := cause.(*errs.Error); ok {
		return cause
	}
	return errs.Wrap(errs.ErrKindExecution, msg, cause)
}

// ContextError maps context cancellation and deadlines to ErrKindTimeout.
// Drivers call it first in their mapError so every engine agrees on it.
func ContextError(err error, msg string) (*errs.Error, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err), true
	}
	return nil, false
}
