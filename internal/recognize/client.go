// Package recognize talks to the banknote recognition service. The user
// photographs a bill, the model server identifies the currency and
// denomination, and the result pre-fills the listing form.
package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
	"github.com/sejin-coding/currex-go/pkg/httpclient"
)

// Result is the model server's prediction for one banknote photo.
type Result struct {
	Currency     string  `json:"currency"`
	Denomination string  `json:"denomination"`
	Confidence   float64 `json:"confidence"`
}

// Client calls the recognition model server.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	base := httpclient.New(httpclient.Config{
		// Model inference is slow compared to the API backend.
		Timeout:      30 * time.Second,
		MaxRetries:   1,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	})
	return &Client{
		http:    httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("banknote-recognition"), logger),
		baseURL: baseURL,
		logger:  logger,
	}
}

// Predict submits a banknote photo and returns the recognized currency.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (Result, error) {
	if filename == "" {
		return Result{}, apperrors.Validation("image filename is required", nil)
	}
	if image == nil {
		return Result{}, apperrors.Validation("image is required", nil)
	}

	contentType, body, err := encodeImage(filename, image)
	if err != nil {
		return Result{}, fmt.Errorf("encode banknote image: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/predict", contentType, bytes.NewReader(body))
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.ErrServiceUnavail, fmt.Sprintf("banknote recognition: %v", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("recognition service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode recognition result: %w", err)
	}

	c.logger.DebugContext(ctx, "banknote recognized",
		slog.String("currency", result.Currency),
		slog.Float64("confidence", result.Confidence),
	)
	return result, nil
}

func encodeImage(filename string, image io.Reader) (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", nil, err
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}
