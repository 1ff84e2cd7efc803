// Package access resolves the caller behind a bearer token and decides, from a single
// policy table, which operations that caller may perform.
package access

import (
	"contesthub/internal/errors"
	"contesthub/internal/model"
)

// Operation names a gated action.
type Operation string

const (
	OpGetProfile          Operation = "profile.get"
	OpUpdateProfile       Operation = "profile.update"
	OpLogout              Operation = "auth.logout"
	OpListUsers           Operation = "users.list"
	OpSetRole             Operation = "users.set_role"
	OpBuyPackage          Operation = "packages.buy"
	OpCreatePaymentIntent Operation = "payments.intent"

	OpGetContest          Operation = "contests.get"
	OpListParticipated    Operation = "contests.participated"
	OpListWon             Operation = "contests.won"
	OpCreateContest       Operation = "contests.create"
	OpEditContest         Operation = "contests.edit"
	OpUpdateContestFields Operation = "contests.update_fields"
	OpDeleteContest       Operation = "contests.delete"
	OpSetStatus           Operation = "contests.set_status"
	OpRegister            Operation = "contests.register"
	OpSubmitTask          Operation = "contests.submit"
	OpDeclareWinner       Operation = "contests.declare_winner"
	OpListSubmissions     Operation = "contests.submissions"
)

// Rule is what an operation demands of its caller. An empty Roles list admits any
// authenticated caller. Owner and Pending only apply when a contest is at hand.
type Rule struct {
	Roles       []model.Role
	Owner       bool
	Pending     bool
	AdminBypass bool
}

var (
	anyone     []model.Role
	creators   = []model.Role{model.RoleCreator}
	admins     = []model.Role{model.RoleAdmin}
	management = []model.Role{model.RoleCreator, model.RoleAdmin}
)

// Policy is the permission matrix of the API.
var Policy = map[Operation]Rule{
	OpGetProfile:          {Roles: anyone},
	OpUpdateProfile:       {Roles: anyone},
	OpLogout:              {Roles: anyone},
	OpListUsers:           {Roles: admins},
	OpSetRole:             {Roles: admins},
	OpBuyPackage:          {Roles: anyone},
	OpCreatePaymentIntent: {Roles: anyone},

	OpGetContest:          {Roles: anyone},
	OpListParticipated:    {Roles: anyone},
	OpListWon:             {Roles: anyone},
	OpCreateContest:       {Roles: creators},
	OpEditContest:         {Roles: creators, Owner: true, Pending: true},
	OpUpdateContestFields: {Roles: creators, Owner: true},
	OpDeleteContest:       {Roles: management, Owner: true, Pending: true, AdminBypass: true},
	OpSetStatus:           {Roles: admins},
	OpRegister:            {Roles: anyone},
	OpSubmitTask:          {Roles: anyone},
	OpDeclareWinner:       {Roles: creators, Owner: true},
	OpListSubmissions:     {Roles: creators, Owner: true},
}

// Allows reports whether role passes the rule's role gate.
func (r Rule) Allows(role model.Role) bool {
	if len(r.Roles) == 0 {
		return role.Valid()
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Permit checks the role gate for op only.
func Permit(op Operation, caller Caller) error {
	rule, ok := Policy[op]
	if !ok || !rule.Allows(caller.Role) {
		return errors.ErrForbidden
	}
	return nil
}

// Authorize checks the whole rule for op against a loaded contest.
func Authorize(op Operation, caller Caller, contest *model.Contest) error {
	if err := Permit(op, caller); err != nil {
		return err
	}
	rule := Policy[op]
	if rule.AdminBypass && caller.Role == model.RoleAdmin {
		return nil
	}
	if contest == nil {
		return nil
	}
	if rule.Owner && !contest.OwnedBy(caller.Email) {
		return errors.ErrForbidden
	}
	if rule.Pending && contest.Status != model.ContestStatusPending {
		return errors.ErrForbidden
	}
	return nil
}
