package errors

import (
	"net/http"
	"testing"

	"credcore/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "conflict", err: ErrConflict, want: KindConflict},
		{name: "wrapped not found", err: ErrNotFound.WrapMessage("signin"), want: KindNotFound},
		{name: "double wrapped invalid credentials", err: errors.Wrap(ErrInvalidCredentials.WrapMessage("signin"), "usecase"), want: KindInvalidCredentials},
		{name: "database error", err: NewDatabaseExecuteError(errors.New("boom"), "insert"), want: KindUnknown},
		{name: "plain error", err: errors.New("plain"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestBaseError_WithDetailsStillMatches(t *testing.T) {
	err := ErrConflict.WithDetails("asdf@gmail.com")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "asdf@gmail.com", err.Details())
	assert.Equal(t, http.StatusConflict, err.HTTPCode())
}

func TestDatabaseExecuteError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseExecuteError(cause, "failed to create user")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "invalid_credentials", KindInvalidCredentials.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
