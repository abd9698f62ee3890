package login

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestWaitReturnsCallbackCredentials(t *testing.T) {
	port := freePort(t)
	l := NewListener(port, slog.New(slog.DiscardHandler))

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := l.Wait(context.Background())
		done <- outcome{res, err}
	}()

	// Hit the callback the way the backend's redirect would, retrying
	// until the listener is up.
	url := fmt.Sprintf("http://localhost:%d/auth/callback?token=tok123&userId=user-7", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, "tok123", out.res.Token)
		assert.Equal(t, "user-7", out.res.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after callback")
	}
}

func TestWaitRejectsIncompleteCallback(t *testing.T) {
	port := freePort(t)
	l := NewListener(port, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := l.Wait(ctx)
		done <- err
	}()

	url := fmt.Sprintf("http://localhost:%d/auth/callback?token=tok123", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusBadRequest
	}, 2*time.Second, 20*time.Millisecond)

	// The incomplete callback must not complete the wait.
	select {
	case err := <-done:
		t.Fatalf("Wait returned early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not honor cancellation")
	}
}

func TestWaitCancelled(t *testing.T) {
	l := NewListener(freePort(t), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthURL(t *testing.T) {
	l := NewListener(8421, slog.New(slog.DiscardHandler))
	assert.Equal(t,
		"https://api.currex.example/api/auth/kakaoLogin?redirect=http://localhost:8421/auth/callback",
		l.AuthURL("https://api.currex.example", "kakao"))
	assert.Equal(t,
		"https://api.currex.example/api/auth/googleLogin?redirect=http://localhost:8421/auth/callback",
		l.AuthURL("https://api.currex.example", "google"))
}
