package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "bill.jpg", header.Filename)

		fmt.Fprint(w, `{"currency":"USD","denomination":"100","confidence":0.97}`)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, slog.New(slog.DiscardHandler))

	res, err := c.Predict(context.Background(), "bill.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, "100", res.Denomination)
	assert.Equal(t, 0.97, res.Confidence)
}

func TestPredictValidatesInput(t *testing.T) {
	c := New("http://unused", slog.New(slog.DiscardHandler))

	_, err := c.Predict(context.Background(), "", strings.NewReader("x"))
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = c.Predict(context.Background(), "bill.jpg", nil)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPredictServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, slog.New(slog.DiscardHandler))

	_, err := c.Predict(context.Background(), "bill.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestPredictBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, slog.New(slog.DiscardHandler))

	_, err := c.Predict(context.Background(), "bill.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
}
