package auth

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/counterline/counterline/internal/platform/httpx"
	"github.com/counterline/counterline/internal/shared"
)

// Middleware resolves the session into an Identity and enforces role sets.
type Middleware struct{}

// RequireAuth rejects requests without an authenticated session and stores
// the resolved identity in the request context.
func (Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		userID, err := uuid.Parse(sess.User())
		if err != nil || !sess.Role().Valid() {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid session")
			return
		}
		identity := shared.Identity{UserID: userID, Role: sess.Role()}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireRole allows only identities whose role is in the set.
func (Middleware) RequireRole(set shared.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if !set.Allows(identity.Role) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
