// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// Roles known to the service.
const (
	RoleOwner  = "owner"
	RoleWorker = "worker"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID     string
	BusinessID string
	Email      string
	Roles      []string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetBusinessID returns the business the caller acts for, or empty string.
func GetBusinessID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.BusinessID
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}
