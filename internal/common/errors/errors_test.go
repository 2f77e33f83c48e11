package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	err := NewResourceNotFoundError("Car", int64(999))
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsNotFound(NewQueryTimeoutError("findById")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestAsStandardError(t *testing.T) {
	stdErr := NewSearchTimeoutError("car")
	assert.Same(t, stdErr, AsStandardError(fmt.Errorf("ctx: %w", stdErr)))

	wrapped := AsStandardError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, wrapped.Code)
	assert.Equal(t, "boom", wrapped.Details)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeResourceNotFound, http.StatusNotFound},
		{ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrCodeInvalidSearchQuery, http.StatusBadRequest},
		{ErrCodeQueryTimeout, http.StatusGatewayTimeout},
		{ErrCodeElasticsearchConnectionFailed, http.StatusServiceUnavailable},
		{ErrCodeSearchQueryFailed, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_NEW"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CLIENT", GetErrorCategory(ErrCodeResourceNotFound))
	assert.Equal(t, "ENTITY_STORE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "SEARCH_INDEX", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternal))
}
