package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{E(CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{E(CodeForbidden, "op", "denied", nil), http.StatusForbidden},
		{E(CodeConflict, "op", "conflict", nil), http.StatusConflict},
		{E(CodeEmptyCompletion, "op", "empty", ErrEmptyCompletion), http.StatusInternalServerError},
		{E(CodeTimeout, "op", "slow", nil), http.StatusGatewayTimeout},
		{fmt.Errorf("wrapped: %w", E(CodeNotFound, "op", "missing", nil)), http.StatusNotFound},
		{fmt.Errorf("store: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestAppError_WrapsCause(t *testing.T) {
	err := E(CodeInvalidArgument, "ConversationService.Converse", "last message must be from user", ErrInvalidHistory)

	assert.True(t, IsCode(err, CodeInvalidArgument))
	assert.False(t, IsCode(err, CodeInternal))
	assert.ErrorIs(t, err, ErrInvalidHistory)
	assert.Equal(t, "ConversationService.Converse: last message must be from user: "+ErrInvalidHistory.Error(), err.Error())
}
