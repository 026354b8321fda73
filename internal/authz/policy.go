// Package authz is the single authorization policy for order and user
// operations: allowed when the caller is an admin or one of the named
// owners. Every service consults this instead of checking roles inline.
package authz

import "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"

// AuthContext is the authenticated caller, derived from a verified session
// token. It is request-scoped and never persisted.
type AuthContext struct {
	UserID string
	Role   user.Role
}

func (c AuthContext) Admin() bool { return c.Role == user.RoleAdmin }

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

// Authorize applies the owner-or-admin rule: the caller must be an admin
// or match one of ownerIDs.
func Authorize(ctx AuthContext, ownerIDs ...string) Decision {
	if ctx.Admin() {
		return allow()
	}
	for _, id := range ownerIDs {
		if id != "" && id == ctx.UserID {
			return allow()
		}
	}
	return deny("caller is not an owner or admin")
}
