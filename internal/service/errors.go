package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	apperrors "contesthub/internal/errors"
	"contesthub/internal/repository"
)

// storeFailure classifies an unexpected repository error: connectivity problems become
// Unavailable, everything else stays an internal error wrapped with op.
func storeFailure(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return apperrors.Wrap(apperrors.KindUnavailable, apperrors.ErrStoreUnavailable.Message, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// contestError maps a contest repository error to its domain form.
func contestError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrContestNotFound
	default:
		return storeFailure(op, err)
	}
}

// userError maps a user repository error to its domain form.
func userError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ErrUserAlreadyExists
	default:
		return storeFailure(op, err)
	}
}
