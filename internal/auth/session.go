package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "sharpexec"

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Role:  user.Role(c.Role),
	}
}

// Token is a freshly signed session value.
type Token struct {
	Raw       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type SessionManager struct {
	secret    []byte
	maxAge    time.Duration
	updateAge time.Duration
	now       func() time.Time
}

type SessionOption func(*SessionManager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

func NewSessionManager(secret string, maxAge, updateAge time.Duration, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		secret:    []byte(secret),
		maxAge:    maxAge,
		updateAge: updateAge,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue mints a token for a verified identity: iat=now, exp=now+maxAge.
func (m *SessionManager) Issue(id Identity) (Token, error) {
	if id.ID == "" || id.Role == "" {
		return Token{}, errors.New("identity requires id and role")
	}

	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(m.maxAge)

	claims := Claims{
		Role:  string(id.Role),
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("%w: sign session: %w", ErrServer, err)
	}

	return Token{Raw: raw, IssuedAt: now, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, algorithm, issuer and lifetime, and rejects
// tokens missing a required claim.
func (m *SessionManager) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrTokenInvalid)
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}

	if claims.Subject == "" || claims.Role == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claim", ErrTokenInvalid)
	}

	if m.age(claims) >= m.maxAge {
		return nil, fmt.Errorf("%w: older than max age", ErrTokenExpired)
	}

	return claims, nil
}

// NeedsRefresh reports whether a valid token is past the sliding threshold.
func (m *SessionManager) NeedsRefresh(c *Claims) bool {
	if c == nil || c.IssuedAt == nil {
		return false
	}
	age := m.age(c)
	return age > m.updateAge && age < m.maxAge
}

// Refresh reissues a token for the same subject with fresh iat and exp.
func (m *SessionManager) Refresh(c *Claims) (Token, error) {
	return m.Issue(c.Identity())
}

func (m *SessionManager) age(c *Claims) time.Duration {
	return m.now().Sub(c.IssuedAt.Time)
}
