package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func signedToken(t *testing.T, userID string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"sub":     userID,
		"exp":     expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLogin_StoresCredentials(t *testing.T) {
	s := New(testLogger())
	require.False(t, s.Authenticated())

	s.Login("opaque-token", "user-1")

	assert.True(t, s.Authenticated())
	assert.Equal(t, "opaque-token", s.Token())
	assert.Equal(t, "user-1", s.UserID())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestLogin_ParsesJWTClaims(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := signedToken(t, "user-7", exp)

	s := New(testLogger())
	s.Login(token, "")

	assert.Equal(t, "user-7", s.UserID())
	assert.WithinDuration(t, exp, s.ExpiresAt(), time.Second)
}

func TestLogin_ExplicitUserIDWins(t *testing.T) {
	token := signedToken(t, "claims-user", time.Now().Add(time.Hour))

	s := New(testLogger())
	s.Login(token, "query-user")

	assert.Equal(t, "query-user", s.UserID())
}

func TestSetToken_KeepsUserID(t *testing.T) {
	s := New(testLogger())
	s.Login("old-token", "user-1")

	s.SetToken("newToken123")

	assert.Equal(t, "newToken123", s.Token())
	assert.Equal(t, "user-1", s.UserID())
}

func TestClear_DestroysState(t *testing.T) {
	s := New(testLogger())
	s.Login("tok", "user-1")

	s.Clear()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.UserID())
}

func TestExpire_FiresHookOncePerLogin(t *testing.T) {
	s := New(testLogger())
	calls := 0
	s.OnExpired(func() { calls++ })

	s.Login("tok", "user-1")
	s.Expire()
	s.Expire()
	assert.Equal(t, 1, calls)
	assert.False(t, s.Authenticated())

	// A fresh login arms the hook again.
	s.Login("tok2", "user-1")
	s.Expire()
	assert.Equal(t, 2, calls)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := New(testLogger()).WithSnapshot(path)
	s.Login("tok-abc", "user-9")

	restored := New(testLogger()).WithSnapshot(path)
	require.True(t, restored.Restore())
	assert.Equal(t, "tok-abc", restored.Token())
	assert.Equal(t, "user-9", restored.UserID())
}

func TestSnapshot_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := New(testLogger()).WithSnapshot(path)
	s.Login("tok", "user-1")
	require.FileExists(t, path)

	s.Clear()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_NoFile(t *testing.T) {
	s := New(testLogger()).WithSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, s.Restore())
}
