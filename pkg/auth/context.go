package auth

import (
	"context"
	"fmt"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the logged-in user id.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the logged-in user id set by the middleware.
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// RequireUserIDFromContext is UserIDFromContext for handlers behind RequireUser.
func RequireUserIDFromContext(ctx context.Context) (int, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return id, nil
}
