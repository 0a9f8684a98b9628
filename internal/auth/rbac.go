package auth

import (
	"github.com/tesoreria-cl/tesoreria/internal"
)

// Action enumerates every role-gated operation in the system.
type Action string

const (
	ActionCreateRequest  Action = "payment_request:create"
	ActionSubmitRequest  Action = "payment_request:submit"
	ActionApproveRequest Action = "payment_request:approve"
	ActionRejectRequest  Action = "payment_request:reject"
	ActionExecuteRequest Action = "payment_request:execute"

	ActionManageTransactions Action = "transaction:manage"
	ActionManageCategories   Action = "category:manage"
	ActionManageUsers        Action = "user:manage"
)

// permissionTable is the single source of truth for (action, role) checks.
// Services consult it once per operation instead of scattering role
// conditionals per endpoint.
var permissionTable = map[Action]map[internal.Role]bool{
	ActionCreateRequest: {
		internal.RoleDelegado:   true,
		internal.RolePresidente: true,
	},
	ActionSubmitRequest: {
		internal.RoleDelegado:   true,
		internal.RolePresidente: true,
	},
	ActionApproveRequest: {
		internal.RolePresidente: true,
	},
	ActionRejectRequest: {
		internal.RolePresidente: true,
	},
	ActionExecuteRequest: {
		internal.RoleSecretaria: true,
	},
	ActionManageTransactions: {
		internal.RoleDelegado:   true,
		internal.RolePresidente: true,
		internal.RoleSecretaria: true,
	},
	ActionManageCategories: {
		internal.RolePresidente: true,
		internal.RoleSecretaria: true,
	},
	ActionManageUsers: {
		internal.RolePresidente: true,
	},
}

// Can reports whether the role is allowed to perform the action. Unknown
// actions and unknown roles are denied.
func Can(role internal.Role, action Action) bool {
	allowed, ok := permissionTable[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// Authorize returns the standard forbidden error when the principal's role
// does not permit the action.
func Authorize(p *internal.Principal, action Action) *internal.AppError {
	if p == nil {
		return internal.ErrRoleNotAllowed
	}
	if !Can(p.Role, action) {
		return internal.ErrRoleNotAllowed
	}
	return nil
}
