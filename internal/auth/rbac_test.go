package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
)

var _ = Describe("Authorize", func() {
	principal := func(role internal.Role) *internal.Principal {
		return &internal.Principal{UserID: 1, OrganizationID: 1, Role: role}
	}

	DescribeTable("role gates per action",
		func(role internal.Role, action auth.Action, allowed bool) {
			err := auth.Authorize(principal(role), action)
			if allowed {
				Expect(err).To(BeNil())
			} else {
				Expect(err).To(Equal(internal.ErrRoleNotAllowed))
			}
		},

		Entry("delegado creates requests", internal.RoleDelegado, auth.ActionCreateRequest, true),
		Entry("presidente creates requests", internal.RolePresidente, auth.ActionCreateRequest, true),
		Entry("secretaria cannot create requests", internal.RoleSecretaria, auth.ActionCreateRequest, false),

		Entry("delegado submits requests", internal.RoleDelegado, auth.ActionSubmitRequest, true),
		Entry("secretaria cannot submit requests", internal.RoleSecretaria, auth.ActionSubmitRequest, false),

		Entry("presidente approves", internal.RolePresidente, auth.ActionApproveRequest, true),
		Entry("delegado cannot approve", internal.RoleDelegado, auth.ActionApproveRequest, false),
		Entry("secretaria cannot approve", internal.RoleSecretaria, auth.ActionApproveRequest, false),

		Entry("presidente rejects", internal.RolePresidente, auth.ActionRejectRequest, true),
		Entry("delegado cannot reject", internal.RoleDelegado, auth.ActionRejectRequest, false),

		Entry("secretaria executes", internal.RoleSecretaria, auth.ActionExecuteRequest, true),
		Entry("presidente cannot execute", internal.RolePresidente, auth.ActionExecuteRequest, false),
		Entry("delegado cannot execute", internal.RoleDelegado, auth.ActionExecuteRequest, false),

		Entry("delegado manages the ledger", internal.RoleDelegado, auth.ActionManageTransactions, true),
		Entry("presidente manages the ledger", internal.RolePresidente, auth.ActionManageTransactions, true),
		Entry("secretaria manages the ledger", internal.RoleSecretaria, auth.ActionManageTransactions, true),

		Entry("presidente manages categories", internal.RolePresidente, auth.ActionManageCategories, true),
		Entry("secretaria manages categories", internal.RoleSecretaria, auth.ActionManageCategories, true),
		Entry("delegado cannot manage categories", internal.RoleDelegado, auth.ActionManageCategories, false),

		Entry("presidente manages users", internal.RolePresidente, auth.ActionManageUsers, true),
		Entry("secretaria cannot manage users", internal.RoleSecretaria, auth.ActionManageUsers, false),
	)

	It("denies a missing principal", func() {
		Expect(auth.Authorize(nil, auth.ActionCreateRequest)).To(Equal(internal.ErrRoleNotAllowed))
	})

	It("denies unknown actions", func() {
		Expect(auth.Can(internal.RolePresidente, auth.Action("ledger:export"))).To(BeFalse())
	})

	It("denies unknown roles", func() {
		Expect(auth.Can(internal.Role("tesorero"), auth.ActionManageTransactions)).To(BeFalse())
	})
})
