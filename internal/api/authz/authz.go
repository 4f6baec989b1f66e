package authz

import (
	"context"
	"errors"

	"github.com/codr1/golfleague/internal/models"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// AuthUser is the identity carried by a user session cookie. The role is
// whatever it was at sign-in; admin privilege boundaries re-read the store.
type AuthUser struct {
	ID   int64
	Role models.Role
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsAdmin reports whether the session was issued to an admin.
func IsAdmin(user *AuthUser) bool {
	return user != nil && user.Role == models.RoleAdmin
}

// RequireUser returns the signed-in user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
