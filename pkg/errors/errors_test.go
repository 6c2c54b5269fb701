package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "start must precede end")
	require.Equal(t, CodeValidation, err.Code())
	require.Equal(t, "start must precede end", err.Message())
	require.Equal(t, "VALIDATION_ERROR: start must precede end", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")
	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeDependency, err.Code())
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	typed := New(CodeConflict, "overlapping reservation")
	wrapped := fmt.Errorf("create reservation: %w", typed)

	found := As(wrapped)
	require.NotNil(t, found)
	require.Equal(t, CodeConflict, found.Code())

	require.Nil(t, As(stdErrors.New("plain")))
	require.Nil(t, As(nil))
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad fields").WithDetails(map[string]string{"name": "required"})
	require.Equal(t, map[string]string{"name": "required"}, err.Details())
}

func TestMetadataForMapsStatuses(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeConflict:      http.StatusConflict,
		CodeStateConflict: http.StatusUnprocessableEntity,
		CodeInternal:      http.StatusInternalServerError,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		require.Equal(t, status, MetadataFor(code).HTTPStatus, "code %s", code)
	}

	// unknown codes degrade to internal
	require.Equal(t, http.StatusInternalServerError, MetadataFor(Code("MYSTERY")).HTTPStatus)
}

func TestNilReceiverIsSafe(t *testing.T) {
	var err *Error
	require.Equal(t, CodeInternal, err.Code())
	require.Empty(t, err.Message())
	require.Nil(t, err.Details())
}
