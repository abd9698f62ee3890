// Package login completes the Kakao OAuth flow. The backend performs the
// whole provider handshake and finishes by redirecting the browser to a
// local callback URL carrying the access token and user id as query
// parameters; this package runs the listener that catches that redirect.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sejin-coding/currex-go/pkg/logger"
	"github.com/sejin-coding/currex-go/pkg/middleware"
)

const callbackPath = "/auth/callback"

// Result holds the credentials delivered by the backend's login redirect.
type Result struct {
	Token  string
	UserID string
}

// Listener serves the local login callback endpoint.
type Listener struct {
	port   int
	logger *slog.Logger
}

func NewListener(port int, logger *slog.Logger) *Listener {
	return &Listener{port: port, logger: logger}
}

// AuthURL returns the backend login URL the user opens in a browser. The
// backend drives the provider handshake (kakao or google) and redirects to
// RedirectURL when done.
func (l *Listener) AuthURL(apiBaseURL, provider string) string {
	return fmt.Sprintf("%s/api/auth/%sLogin?redirect=%s", apiBaseURL, provider, l.RedirectURL())
}

// RedirectURL is the local callback address registered with the backend.
func (l *Listener) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", l.port, callbackPath)
}

// Wait serves the callback endpoint until a login redirect arrives or ctx is
// cancelled. The first complete callback wins; the server shuts down once it
// is received.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	results := make(chan Result, 1)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(l.logger))
	r.Use(middleware.RequestLogging(l.logger))
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		log := logger.FromContext(req.Context())

		token := req.URL.Query().Get("token")
		userID := req.URL.Query().Get("userId")
		if token == "" || userID == "" {
			log.Warn("incomplete login callback rejected")
			http.Error(w, "missing token or userId", http.StatusBadRequest)
			return
		}

		select {
		case results <- Result{Token: token, UserID: userID}:
		default:
			// A callback already landed; this one is a duplicate.
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Login complete. You can close this tab.</body></html>")
	})

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", l.port))
	if err != nil {
		return Result{}, fmt.Errorf("listen for login callback: %w", err)
	}

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	l.logger.Info("waiting for login callback", slog.String("url", l.RedirectURL()))

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		l.logger.Info("login callback received", slog.String("user_id", res.UserID))
		return res, nil
	case err := <-serveErr:
		return Result{}, fmt.Errorf("login callback server: %w", err)
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
