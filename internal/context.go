package internal

import (
	"context"
	"time"
)

// Role is the closed set of roles an organization member can hold.
type Role string

const (
	RoleDelegado   Role = "delegado"
	RolePresidente Role = "presidente"
	RoleSecretaria Role = "secretaria"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDelegado, RolePresidente, RoleSecretaria:
		return true
	}
	return false
}

// Principal is the authenticated caller resolved by the auth layer. It is
// passed through context on every call; there is no process-wide session.
type Principal struct {
	UserID         int64
	OrganizationID int64
	Role           Role
}

type ctxKey string

const contextPrincipalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(contextPrincipalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextPrincipalKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
