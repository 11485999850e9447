// internal/service/authz.go
package service

import (
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
)

// Authorization rules.
//
// Tasks, categories and tags are strictly owner-scoped: repositories look
// them up by (owner, id), so another owner's row is reported as not found
// and its existence is never disclosed. Admins get no bypass there.
//
// User profiles exist independently of the caller, so they are found first
// and then checked: any caller may read their own record, admins may read
// any (profile included), and only the user may change their record.

// authenticated rejects an unresolved caller.
func authenticated(c Caller) error {
	if c.ID == uuid.Nil {
		return apperror.Unauthenticated("")
	}
	return nil
}

func authorizeUserRead(c Caller, target uuid.UUID) error {
	if err := authenticated(c); err != nil {
		return err
	}
	if c.ID != target && !c.Admin {
		return apperror.AccessDenied()
	}
	return nil
}

func authorizeUserWrite(c Caller, target uuid.UUID) error {
	if err := authenticated(c); err != nil {
		return err
	}
	if c.ID != target {
		return apperror.AccessDenied()
	}
	return nil
}
