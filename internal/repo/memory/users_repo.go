package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/geocoder89/sharpexec/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by lowercased email
}

func NewUsersRepo(users ...user.User) *UsersRepo {
	r := &UsersRepo{
		items: make(map[string]user.User),
	}
	for _, u := range users {
		r.items[strings.ToLower(u.Email)] = u
	}
	return r
}

func (r *UsersRepo) FindByIdentifier(_ context.Context, identifier string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[strings.ToLower(identifier)]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	key := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; ok {
		return user.ErrEmailTaken
	}
	r.items[key] = u
	return nil
}
