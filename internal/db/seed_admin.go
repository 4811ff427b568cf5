package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/sharpexec/internal/config"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/geocoder89/sharpexec/internal/security"
	"github.com/google/uuid"
)

// AdminStore is the slice of the users repository seeding needs.
type AdminStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (user.User, error)
	Create(ctx context.Context, u user.User) error
}

// EnsureAdminUser creates the configured admin account once. It reports
// whether a row was inserted.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	role := user.Role(strings.ToUpper(cfg.AdminRole))
	if !role.Valid() {
		return false, fmt.Errorf("unknown admin role %q", cfg.AdminRole)
	}

	_, err := users.FindByIdentifier(ctx, cfg.AdminEmail)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, fmt.Errorf("seed admin: lookup: %w", err)
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(cfg.AdminEmail),
		PasswordHash: &hash,
		Name:         cfg.AdminName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, u); err != nil {
		// another process seeded between the lookup and the insert
		if errors.Is(err, user.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: create: %w", err)
	}

	return true, nil
}
