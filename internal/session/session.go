// Package session holds the process-wide authentication state: the current
// access token and user id. The refresh flow is the single writer; every
// outgoing request is a reader.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the client's authentication state. It is created on a successful
// login callback, its token is replaced on refresh, and it is destroyed on
// logout or when a refresh terminally fails.
type Session struct {
	mu        sync.RWMutex
	token     string
	userID    string
	expiresAt time.Time

	onExpired    func()
	expiredFired bool

	snapshotPath string
	logger       *slog.Logger
}

// New creates an empty, unauthenticated session.
func New(logger *slog.Logger) *Session {
	return &Session{logger: logger}
}

// WithSnapshot enables persisting the session to path so a restart within the
// same login session keeps the token. Returns the session for chaining.
func (s *Session) WithSnapshot(path string) *Session {
	s.mu.Lock()
	s.snapshotPath = path
	s.mu.Unlock()
	return s
}

// Login installs the credentials delivered by the login redirect callback.
// The token's claims, when parseable, refine the expiry and user id; an
// opaque token is accepted as-is.
func (s *Session) Login(token, userID string) {
	s.mu.Lock()
	s.token = token
	s.userID = userID
	s.expiresAt = time.Time{}
	s.expiredFired = false

	if claims := parseClaims(token); claims != nil {
		if claims.userID != "" && userID == "" {
			s.userID = claims.userID
		}
		s.expiresAt = claims.expiresAt
	}
	s.mu.Unlock()

	s.saveSnapshot()
}

// SetToken replaces the access token after a successful refresh. The user id
// is unchanged.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.expiresAt = time.Time{}
	if claims := parseClaims(token); claims != nil {
		s.expiresAt = claims.expiresAt
	}
	s.mu.Unlock()

	s.saveSnapshot()
}

// Token returns the current access token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the authenticated user's id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt returns the token expiry parsed from its claims, or the zero
// time when the token is opaque.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// OnExpired registers the hook invoked when the session terminally ends
// (refresh failed). Invoked at most once per login.
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = fn
	s.mu.Unlock()
}

// Clear destroys the session state and removes any snapshot. Used on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.userID = ""
	s.expiresAt = time.Time{}
	path := s.snapshotPath
	s.mu.Unlock()

	if path != "" {
		removeSnapshot(path)
	}
}

// Expire destroys the session and fires the expiry hook. Called by the
// request layer when the refresh flow fails; never fires the hook twice for
// the same login.
func (s *Session) Expire() {
	s.mu.Lock()
	fire := !s.expiredFired && s.onExpired != nil
	s.expiredFired = true
	fn := s.onExpired
	s.mu.Unlock()

	s.Clear()

	if fire {
		fn()
	}
}

type tokenClaims struct {
	userID    string
	expiresAt time.Time
}

// parseClaims extracts claims without verifying the signature; the client
// has no signing secret and only needs the user id and expiry hints.
func parseClaims(token string) *tokenClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	out := &tokenClaims{}
	if id, _ := claims["user_id"].(string); id != "" {
		out.userID = id
	} else if sub, _ := claims["sub"].(string); sub != "" {
		out.userID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.expiresAt = exp.Time
	}
	return out
}
