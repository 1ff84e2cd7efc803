package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"unauthenticated", ErrMissingToken, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized access"},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, "INVALID_CREDENTIAL", "invalid or expired token"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN", "forbidden access"},
		{"invalid input", ErrInvalidStatus, http.StatusBadRequest, "INVALID_INPUT", "invalid status"},
		{"not found", ErrContestNotFound, http.StatusNotFound, "NOT_FOUND", "contest not found"},
		{"conflict", ErrAlreadyRegistered, http.StatusConflict, "CONFLICT", "already registered for this contest"},
		{"quota", QuotaExceeded(2), http.StatusForbidden, "QUOTA_EXCEEDED", "contest limit reached: your package allows 2 contests"},
		{"unavailable", ErrPaymentUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE", "payment processor unavailable"},
		{"wrapped domain error", fmt.Errorf("register: %w", ErrUserAlreadyExists), http.StatusConflict, "CONFLICT", "user already exists"},
		{"plain error", errors.New("dial tcp: refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Message)
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnavailable, "payment processor unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Equal(t, "payment processor unavailable: connection reset", err.Error())
	assert.Equal(t, KindInternal, KindOf(cause))
}
