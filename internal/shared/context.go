package shared

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the resolved (userId, role) pair the core trusts from the
// access boundary.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. The zero Identity
// is returned for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
