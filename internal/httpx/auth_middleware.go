package httpx

import (
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
)

// IdentityResolver turns a token-bound user id into the current user record.
type IdentityResolver interface {
	UserByID(id int64) (entity.User, bool)
}

// AuthMiddleware validates the session token, re-checks that the identity
// still exists, and puts id and current role on the request context. The
// requester id available downstream always comes from the validated token,
// never from the request payload. Authentication runs before any business
// logic and its three failure kinds stay distinguishable.
func AuthMiddleware(secret string, users IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r)
			if token == "" {
				JSONError(w, r, http.StatusUnauthorized, "MISSING_TOKEN", "Authentication required", nil)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					JSONError(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "Session expired, log in again", nil)
				default:
					JSONError(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid session token", nil)
				}
				return
			}

			u, ok := users.UserByID(claims.UserID)
			if !ok {
				JSONError(w, r, http.StatusUnauthorized, "UNKNOWN_USER", "Account no longer exists", nil)
				return
			}

			noteIdentity(r.Context(), u.ID)
			ctx := ContextWithUser(r.Context(), u.ID, u.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromHeader accepts both "Bearer <token>" and a bare token; the
// reference client sends the bare form.
func tokenFromHeader(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}
