// Package app wires the client's dependencies: session, API client, chat
// connection, and the third-party service clients.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sejin-coding/currex-go/internal/api"
	"github.com/sejin-coding/currex-go/internal/chat"
	"github.com/sejin-coding/currex-go/internal/config"
	"github.com/sejin-coding/currex-go/internal/login"
	"github.com/sejin-coding/currex-go/internal/rates"
	"github.com/sejin-coding/currex-go/internal/recognize"
	"github.com/sejin-coding/currex-go/internal/session"
	"github.com/sejin-coding/currex-go/internal/trade"
	"github.com/sejin-coding/currex-go/pkg/health"
)

// App holds all wired dependencies.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Session
	API     *api.Client
	Chat    *chat.Conn
	Rates   *rates.Client
	Bills   *recognize.Client
	Trades  *trade.Controller
	Login   *login.Listener

	metricsSrv *http.Server
}

// New wires the application. A saved session snapshot, if present, is
// restored so the user stays logged in across runs.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	sess := session.New(log)
	if path, err := cfg.SessionFile(); err == nil {
		sess = sess.WithSnapshot(path)
		if sess.Restore() {
			log.Debug("session restored", slog.String("user_id", sess.UserID()))
		}
	} else {
		log.Warn("session snapshot disabled", slog.String("error", err.Error()))
	}
	sess.OnExpired(func() {
		log.Warn("session expired, run 'currex login' to sign in again")
	})

	apiClient, err := api.New(api.Config{BaseURL: cfg.APIBaseURL}, sess, log)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Session: sess,
		API:     apiClient,
		Chat:    chat.NewConn(cfg.ChatURL(), log),
		Rates:   rates.New(cfg.RatesBaseURL, log),
		Bills:   recognize.New(cfg.RecognizerBaseURL, log),
		Trades:  trade.NewController(apiClient, log),
		Login:   login.NewListener(cfg.LoginCallbackPort, log),
	}

	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}
	return a, nil
}

// serveMetrics exposes the prometheus registry, mainly the circuit breaker
// gauges for the third-party services, plus a health endpoint probing the
// backend and the rate feed.
func (a *App) serveMetrics(addr string) {
	checks := health.NewHandler()
	checks.Register("backend", probe(a.Config.APIBaseURL))
	checks.Register("rates", probe(a.Config.RatesBaseURL+"/v4/latest/USD"))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checks)
	a.metricsSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	a.Logger.Info("metrics listening", slog.String("addr", addr))
}

// probe reports whether an HTTP endpoint answers at all; any status code
// counts as reachable.
func probe(url string) health.Checker {
	client := &http.Client{Timeout: 3 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

// Close releases the chat connection and the metrics listener.
func (a *App) Close() error {
	var firstErr error
	if err := a.Chat.Close(); err != nil {
		firstErr = err
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
