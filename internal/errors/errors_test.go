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
		{"validation", Validation("username is required"), http.StatusBadRequest, "VALIDATION_ERROR", "username is required"},
		{"conflict", ErrUserAlreadyExists, http.StatusBadRequest, "CONFLICT", "username or email already exists"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"},
		{"missing token", ErrMissingToken, http.StatusUnauthorized, "UNAUTHENTICATED", "missing authentication token"},
		{"invalid token", ErrInvalidToken, http.StatusForbidden, "FORBIDDEN", "invalid or expired token"},
		{"not found", ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "user not found"},
		{"throttled", ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", ErrTooManyAttempts.Message},
		{"wrapped domain", fmt.Errorf("login: %w", ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"},
		{"internal hides cause", Internal(errors.New("dial tcp 10.0.0.1:3306: refused")), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
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

func TestError_IsMatchesSentinel(t *testing.T) {
	err := &Error{Kind: KindValidation, Message: "invalid or expired token", Err: errors.New("no rows")}

	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.NotErrorIs(t, err, ErrExpiredResetToken)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}
