package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey       contextKey = "userID"
	roleKey         contextKey = "role"
	requestIDKey    contextKey = "requestID"
	identityNoteKey contextKey = "identityNote"
)

// identityNote is a mutable slot the access logger shares with the auth
// middleware, which runs deeper in the chain. Context values only flow
// inward, so the resolved user id travels back out through this pointer.
type identityNote struct {
	userID int64
}

func contextWithIdentityNote(ctx context.Context) (context.Context, *identityNote) {
	note := &identityNote{}
	return context.WithValue(ctx, identityNoteKey, note), note
}

func noteIdentity(ctx context.Context, userID int64) {
	if note, ok := ctx.Value(identityNoteKey).(*identityNote); ok {
		note.userID = userID
	}
}

// ContextWithUser returns a context carrying the authenticated identity.
func ContextWithUser(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFrom retrieves the authenticated user id, or 0 when anonymous.
func UserIDFrom(r *http.Request) int64 {
	if v, ok := r.Context().Value(userIDKey).(int64); ok {
		return v
	}
	return 0
}

// RoleFrom retrieves the authenticated role, or "" when anonymous.
func RoleFrom(r *http.Request) string {
	if v, ok := r.Context().Value(roleKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
