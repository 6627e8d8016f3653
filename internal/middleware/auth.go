package middleware

import (
	"context"
	"net/http"
	"strings"

	"pawmart-be/internal/user"
	"pawmart-be/internal/utils"
)

// StatusReader resolves the account behind a token; user.Repository
// satisfies it.
type StatusReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// AuthMiddleware resolves a bearer token into user identity on the
// request context. The account standing is re-checked against the
// store on every request, so a user banned after login loses access
// immediately rather than when the token expires. Requests without a
// valid token pass through anonymous; RequireRole gates the protected
// routes.
func AuthMiddleware(users StatusReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := user.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !u.CanAct() {
				http.Error(w, user.ErrUserBanned.Error(), http.StatusForbidden)
				return
			}

			ctx := utils.SetUserContext(r.Context(), u.ID, u.Email, string(u.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose authenticated role is not one of
// the allowed set. An empty set means any authenticated user.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 {
				actual := user.Role(utils.GetUserRoleFromContext(r.Context()))
				allowed := false
				for _, role := range roles {
					if role == actual {
						allowed = true
						break
					}
				}
				if !allowed {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
