package errors

import (
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRequestError(t *testing.T) {
	t.Run("HTTPStatus", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, UnknownTool("x").HTTPStatus())
		require.Equal(t, http.StatusBadRequest, UnknownResource("y://z").HTTPStatus())
		require.Equal(t, http.StatusBadRequest, InvalidArguments("bad", nil).HTTPStatus())
		require.Equal(t, http.StatusTooManyRequests, RateLimited().HTTPStatus())
		require.Equal(t, http.StatusBadGateway, Upstream(nil).HTTPStatus())
	})

	t.Run("ErrorString", func(t *testing.T) {
		require.Equal(t, "[UNKNOWN_TOOL] unknown tool: frobnicate", UnknownTool("frobnicate").Error())

		cause := pkgerrors.New("connection refused")
		require.Equal(t, "[UPSTREAM_ERROR] upstream request failed: connection refused", Upstream(cause).Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := pkgerrors.New("boom")
		require.ErrorIs(t, Upstream(cause), cause)
	})

	t.Run("IsCode", func(t *testing.T) {
		require.True(t, IsCode(RateLimited(), ErrCodeRateLimited))
		require.False(t, IsCode(RateLimited(), ErrCodeUnknownTool))
		require.False(t, IsCode(pkgerrors.New("plain"), ErrCodeRateLimited))
	})
}
