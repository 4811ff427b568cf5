package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/geocoder89/sharpexec/internal/security"
)

// UserFinder is the only capability the verifier needs from the user store.
type UserFinder interface {
	FindByIdentifier(ctx context.Context, identifier string) (user.User, error)
}

type Identity struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  user.Role `json:"role"`
}

type Verifier struct {
	users UserFinder
	log   *slog.Logger
}

func NewVerifier(users UserFinder, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{users: users, log: log}
}

// Verify checks identifier and secret against the user store. Every
// credential failure returns ErrInvalidCredentials; store failures wrap ErrServer.
func (v *Verifier) Verify(ctx context.Context, identifier, secret string) (Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return Identity{}, ErrInvalidCredentials
	}

	u, err := v.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(secret)
			v.log.DebugContext(ctx, "login rejected", "reason", "unknown_identifier")
			return Identity{}, ErrInvalidCredentials
		}

		v.log.ErrorContext(ctx, "user lookup failed", "err", err)
		return Identity{}, fmt.Errorf("%w: lookup user: %w", ErrServer, err)
	}

	if !u.HasPassword() {
		security.BurnCompare(secret)
		v.log.DebugContext(ctx, "login rejected", "reason", "no_secret", "user_id", u.ID)
		return Identity{}, ErrInvalidCredentials
	}

	if err := security.CheckPassword(*u.PasswordHash, secret); err != nil {
		v.log.DebugContext(ctx, "login rejected", "reason", "secret_mismatch", "user_id", u.ID, "err", err)
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}
