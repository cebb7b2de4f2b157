package lib

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{name: "not found", err: ErrNotFound, want: http.StatusNotFound, code: "not_found"},
		{name: "invalid", err: fmt.Errorf("%w: title is empty", ErrInvalidArgument), want: http.StatusBadRequest, code: "invalid_argument"},
		{name: "cursor", err: ErrMalformedCursor, want: http.StatusBadRequest, code: "invalid_argument"},
		{name: "forbidden", err: ErrForbidden, want: http.StatusForbidden, code: "permission_denied"},
		{name: "duplicate", err: ErrAlreadyExists, want: http.StatusConflict, code: "already_exists"},
		{name: "children", err: ErrHasChildren, want: http.StatusConflict, code: "failed_precondition"},
		{name: "token", err: ErrInvalidToken, want: http.StatusUnauthorized, code: "unauthenticated"},
		{name: "storage", err: fmt.Errorf("%w: file storage is not configured", ErrUnavailable), want: http.StatusServiceUnavailable, code: "unavailable"},
		{name: "rate", err: status.Error(codes.ResourceExhausted, "slow down"), want: http.StatusTooManyRequests, code: "resource_exhausted"},
		{name: "internal", err: errors.New("dial tcp: refused"), want: http.StatusInternalServerError, code: "internal"},
		{name: "nil", err: nil, want: http.StatusInternalServerError, code: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body := ToHTTP(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "dial tcp")
		})
	}
}

func TestWriteError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(recorder, request, fmt.Errorf("%w: title is empty", ErrInvalidArgument))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"invalid_argument","message":"invalid argument: title is empty"}}`, recorder.Body.String())
}
