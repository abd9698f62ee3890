package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredBody(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusNotFound,
		`{"code":"NOT_FOUND","message":"sell not found"}`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "sell not found", apiErr.Message)
}

func TestParseResponseError_LegacyErrorField(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusBadRequest,
		`{"error":"sellId is required"}`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "sellId is required")
}

func TestParseResponseError_PlainTextBody(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusUnauthorized, "jwt expired"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "jwt expired")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusForbidden))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
