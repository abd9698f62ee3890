package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
)

// errorBody covers the loose error shapes the backend returns. Older
// endpoints respond with {"error": "..."} or plain text, newer ones with
// {"code": "...", "message": "..."}.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ErrText string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into the matching APIError. The response body is fully consumed and
// closed; the caller should only invoke this when resp.StatusCode indicates
// an error.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.FromStatus(resp.StatusCode, "", "failed to read error response")
	}

	var body errorBody
	if json.Unmarshal(bodyBytes, &body) == nil {
		msg := body.Message
		if msg == "" {
			msg = body.ErrText
		}
		if msg != "" {
			return apperrors.FromStatus(resp.StatusCode, body.Code, msg)
		}
	}

	// Fallback: unstructured error body.
	return apperrors.FromStatus(resp.StatusCode, "", strings.TrimSpace(string(bodyBytes)))
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
