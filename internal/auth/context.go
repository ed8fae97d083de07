// internal/auth/context.go
//
// Request-scoped user helper.
//
// Usage
// -----
//     // RequireSession attaches the user after the token checks out.
//     ctx = auth.WithUser(ctx, u)
//
//     // Handlers retrieve it.
//     u, ok := auth.UserFrom(ctx)
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package auth

import "context"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom extracts the user from ctx.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

// UserID returns the id of the user in ctx, or "" when anonymous.
func UserID(ctx context.Context) (string, bool) {
	u, ok := UserFrom(ctx)
	return u.ID, ok
}
