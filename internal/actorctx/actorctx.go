package actorctx

import (
	"context"

	"github.com/geocoder89/sharpexec/internal/auth"
)

type ctxKey struct{}

// WithIdentity carries the session identity past the gin layer, into
// repositories and log records that only see a context.Context.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	v, ok := ctx.Value(ctxKey{}).(auth.Identity)

	return v, ok && v.ID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)

	return id.ID, ok
}
