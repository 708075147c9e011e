// Package identity carries the authenticated caller through a request context.
package identity

import (
	"context"

	"roombook/shared/constant"
)

type Identity struct {
	UserID string
	Role   string
}

// FromContext reads the identity the auth middleware stored. ok is false for anonymous requests.
func FromContext(ctx context.Context) (Identity, bool) {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if userID == constant.Empty {
		return Identity{}, false
	}

	return Identity{UserID: userID, Role: role}, true
}

// WithContext stores id the same way the auth middleware does.
func WithContext(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, id.UserID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, id.Role)
}

// IsAdmin is true for admin and superadmin.
func (i Identity) IsAdmin() bool {
	return i.Role == constant.RoleAdmin || i.Role == constant.RoleSuperAdmin
}

func (i Identity) Owns(userID string) bool {
	return i.UserID != constant.Empty && i.UserID == userID
}

// CanAccess reports whether the caller may read or remove a resource owned by userID.
func (i Identity) CanAccess(userID string) bool {
	return i.IsAdmin() || i.Owns(userID)
}
