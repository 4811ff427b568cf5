package auth

import (
	"testing"
	"time"

	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-session-secret"
	day        = 24 * time.Hour
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(clock *testClock) *SessionManager {
	return NewSessionManager(testSecret, 30*day, day, WithClock(clock.Now))
}

var testIdentity = Identity{ID: "u-1", Email: "admin@x.com", Name: "Admin", Role: user.RoleAdmin}

func TestSessionManager_IssueAndParse(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	tok, err := m.Issue(testIdentity)
	require.NoError(t, err)
	require.Equal(t, clock.t, tok.IssuedAt)
	require.Equal(t, clock.t.Add(30*day), tok.ExpiresAt)

	claims, err := m.Parse(tok.Raw)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, "admin@x.com", claims.Email)
	require.Equal(t, testIdentity, claims.Identity())
}

func TestSessionManager_IssueRequiresSubjectAndRole(t *testing.T) {
	m := newTestManager(&testClock{t: time.Now()})

	_, err := m.Issue(Identity{ID: "u-1"})
	require.Error(t, err)

	_, err = m.Issue(Identity{Role: user.RoleAdmin})
	require.Error(t, err)
}

func TestSessionManager_RejectsTokenOlderThanMaxAge(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	tok, err := m.Issue(testIdentity)
	require.NoError(t, err)

	clock.Advance(30*day + time.Second)

	_, err = m.Parse(tok.Raw)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionManager_RejectsAgeBeyondMaxAgeEvenWithLaterExpiry(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	// a token minted by a manager with a longer max age
	long := NewSessionManager(testSecret, 90*day, day, WithClock(clock.Now))
	tok, err := long.Issue(testIdentity)
	require.NoError(t, err)

	clock.Advance(31 * day)

	_, err = newTestManager(clock).Parse(tok.Raw)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionManager_SlidingRefresh(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "fresh", age: time.Hour, want: false},
		{name: "exactly threshold", age: day, want: false},
		{name: "past threshold", age: 25 * day, want: true},
		{name: "just under max age", age: 30*day - time.Minute, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &testClock{t: start}
			m := newTestManager(clock)

			tok, err := m.Issue(testIdentity)
			require.NoError(t, err)

			clock.Advance(tt.age)

			claims, err := m.Parse(tok.Raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, m.NeedsRefresh(claims))
		})
	}
}

func TestSessionManager_RefreshMintsNewIssuedAt(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	tok, err := m.Issue(testIdentity)
	require.NoError(t, err)

	clock.Advance(25 * day)

	claims, err := m.Parse(tok.Raw)
	require.NoError(t, err)

	fresh, err := m.Refresh(claims)
	require.NoError(t, err)
	require.NotEqual(t, tok.Raw, fresh.Raw)
	require.Equal(t, clock.t, fresh.IssuedAt)
	require.Equal(t, clock.t.Add(30*day), fresh.ExpiresAt)

	reparsed, err := m.Parse(fresh.Raw)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, reparsed.Subject)
	require.Equal(t, claims.Role, reparsed.Role)
	require.False(t, m.NeedsRefresh(reparsed))
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	good, err := m.Issue(testIdentity)
	require.NoError(t, err)

	other, err := NewSessionManager("another-secret", 30*day, day, WithClock(clock.Now)).Issue(testIdentity)
	require.NoError(t, err)

	base := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "u-1",
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: base}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noIat := base
	noIat.IssuedAt = nil
	missingIat, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "ADMIN", RegisteredClaims: noIat}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongIssuer := base
	wrongIssuer.Issuer = "someone-else"
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "ADMIN", RegisteredClaims: wrongIssuer}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "ADMIN", RegisteredClaims: base}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not.a.jwt"},
		{name: "tampered", raw: good.Raw[:len(good.Raw)-2] + "xx"},
		{name: "other secret", raw: other.Raw},
		{name: "missing role", raw: noRole},
		{name: "missing issued at", raw: missingIat},
		{name: "foreign issuer", raw: foreign},
		{name: "alg none", raw: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.Parse(tt.raw)
			require.ErrorIs(t, err, ErrTokenInvalid)
			require.Nil(t, claims)
		})
	}
}
