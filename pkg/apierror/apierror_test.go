package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/virtcim/pkg/apierror"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		err  *apierror.Error
		want string
	}{
		{
			name: "without raw error",
			err:  apierror.NewError("TestError", "test message"),
			want: "[TestError] test message",
		},
		{
			name: "with raw error",
			err:  apierror.WrapError(apierror.ErrNotFound, "missing", fmt.Errorf("raw error")),
			want: "[NotFound] missing (RawError: raw error)",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	raw := errors.New("connection refused")
	err := apierror.WrapError(apierror.ErrConnectionFailed, "dial failed", raw)

	assert.ErrorIs(t, err, apierror.ErrConnectionFailed)
	assert.NotErrorIs(t, err, apierror.ErrNotFound)
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, apierror.ErrConnectionFailed)

	var nilErr *apierror.Error
	assert.False(t, nilErr.Is(apierror.ErrNotFound))
	assert.Nil(t, nilErr.Unwrap())
}

func TestPredefinedStatus(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		err  *apierror.Error
		want int
	}{
		{err: apierror.ErrInvalidParameter, want: http.StatusBadRequest},
		{err: apierror.ErrNotFound, want: http.StatusNotFound},
		{err: apierror.ErrNotSupported, want: http.StatusNotImplemented},
		{err: apierror.ErrConnectionFailed, want: http.StatusBadGateway},
		{err: apierror.ErrInternalError, want: http.StatusInternalServerError},
		{err: apierror.ErrMigrationCheckFailed, want: http.StatusConflict},
	}

	for _, tc := range testcases {
		t.Run(tc.err.Code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.HTTPStatus)
		})
	}
}

func TestFrom(t *testing.T) {
	t.Parallel()

	assert.Nil(t, apierror.From(nil))

	plain := errors.New("boom")
	got := apierror.From(plain)
	require.NotNil(t, got)
	assert.Equal(t, "InternalError", got.Code)
	assert.ErrorIs(t, got, plain)

	apiErr := apierror.WrapError(apierror.ErrNotSupported, "net pools", nil)
	assert.Same(t, apiErr, apierror.From(fmt.Errorf("ctx: %w", apiErr)))
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	resp := apierror.NewErrorResponse("req-1", apierror.WrapError(apierror.ErrNotFound, "Failed to lookup domain `vm1'", nil))
	resp.AddError(apierror.NewError("Other", "second"))

	assert.Equal(t, "RequestID: req-1; [NotFound] Failed to lookup domain `vm1'; [Other] second", resp.Error())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"errors":[{"code":"NotFound","message":"Failed to lookup domain `+"`vm1'"+`"},{"code":"Other","message":"second"}],"requestID":"req-1"}`,
		string(data))

	x, err := resp.ToXML()
	require.NoError(t, err)
	assert.Contains(t, string(x), "<Code>NotFound</Code>")
	assert.Contains(t, string(x), "<RequestID>req-1</RequestID>")
}
