package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("relation \"users\" does not exist")

	assert.Equal(t, "[validation] empty body", New(ErrKindValidation, "empty body").Error())
	assert.Equal(t,
		`[execution] statement failed: relation "users" does not exist`,
		Wrap(ErrKindExecution, "statement failed", cause).Error(),
	)
}

func TestPredicates_TraverseWrapping(t *testing.T) {
	base := New(ErrKindUnauthenticated, "Invalid or expired session")
	wrapped := fmt.Errorf("resolve: %w", base)

	assert.True(t, IsUnauthenticated(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}

func TestRekind(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want ErrKind
	}{
		{"execution becomes introspection", Wrap(ErrKindExecution, "q", errors.New("x")), ErrKindIntrospection},
		{"timeout is kept", Wrap(ErrKindTimeout, "q", errors.New("x")), ErrKindTimeout},
		{"connection failure is kept", Wrap(ErrKindConnectionFailed, "q", errors.New("x")), ErrKindConnectionFailed},
		{"foreign error is wrapped", errors.New("boom"), ErrKindIntrospection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(Rekind(tt.in, ErrKindIntrospection)))
		})
	}
	assert.NoError(t, Rekind(nil, ErrKindExecution))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind ErrKind
		want int
	}{
		{ErrKindUnauthenticated, http.StatusUnauthorized},
		{ErrKindValidation, http.StatusBadRequest},
		{ErrKindNotFound, http.StatusNotFound},
		{ErrKindConflict, http.StatusConflict},
		{ErrKindNotConnected, http.StatusConflict},
		{ErrKindConnectionFailed, http.StatusBadGateway},
		{ErrKindTimeout, http.StatusGatewayTimeout},
		{ErrKindUnavailable, http.StatusServiceUnavailable},
		{ErrKindExecution, http.StatusInternalServerError},
		{ErrKindIntrospection, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "x")))
		})
	}
}

func TestPublic(t *testing.T) {
	engine := errors.New(`duplicate key value violates unique constraint "users_pkey"`)

	assert.Equal(t,
		`statement failed: duplicate key value violates unique constraint "users_pkey"`,
		Public(Wrap(ErrKindExecution, "statement failed", engine)),
	)
	assert.Equal(t, "Invalid column name: a b", Public(Wrap(ErrKindValidation, "Invalid column name: a b", engine)))
	assert.Equal(t, "plain", Public(errors.New("plain")))
}
