// Package policy decides who may touch which task. Admins see and mutate
// everything; users only their own records. For list operations the policy is
// a scope predicate applied before any user-supplied filter, so pagination
// totals never reveal other users' tasks.
package policy

import "github.com/taskboard/backend/internal/session"

// CanAccess reports whether the caller may read, update or delete a task
// owned by ownerID. The three actions share one rule.
func CanAccess(ident session.Identity, ownerID string) bool {
	if ident.IsAdmin() {
		return true
	}
	return ident.UserID == ownerID
}

// Scope is the mandatory owner predicate for list/read operations.
// OwnerID == "" means unscoped (admin).
type Scope struct {
	OwnerID string
}

func (s Scope) All() bool { return s.OwnerID == "" }

func ScopeFor(ident session.Identity) Scope {
	if ident.IsAdmin() {
		return Scope{}
	}
	return Scope{OwnerID: ident.UserID}
}
