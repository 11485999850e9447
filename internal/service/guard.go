// internal/service/guard.go
package service

import (
	"fmt"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

// deleteRefused is the conflict reported when a guarded delete finds
// referencing tasks. Nothing has been changed when it is returned.
func deleteRefused(resource string, references int) error {
	return apperror.Conflict(fmt.Sprintf("cannot delete: %d tasks still reference this %s", references, resource))
}

// groupWriteError maps a failed category or tag write. A unique index hit
// that slipped past the name pre-check is still a taken name.
func groupWriteError(resource string, err error) error {
	if repository.IsUniqueViolation(err) {
		return apperror.Validation(models.NameTaken())
	}
	return translate(resource, err)
}
