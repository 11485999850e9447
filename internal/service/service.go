// internal/service/service.go
package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

// Caller is the resolved identity an operation runs as.
type Caller struct {
	ID    uuid.UUID
	Admin bool
}

// Option configures a service.
type Option func(*base)

// WithClock replaces time.Now, so overdue and due-soon results are reproducible.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.clock = now }
}

// base holds what every service shares.
type base struct {
	store *repository.Store
	clock func() time.Time
}

func newBase(store *repository.Store, opts []Option) base {
	b := base{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) now() time.Time {
	return b.clock().UTC()
}

// translate turns a store error into the service error taxonomy. Errors
// that already carry a kind pass through; a missing row becomes NotFound
// for resource.
func translate(resource string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if repository.IsNotFound(err) {
		return apperror.NotFound(resource)
	}
	return apperror.Internal(err)
}

// violationsOf returns the field violations carried by err, if any.
func violationsOf(err error) []apperror.Violation {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind == apperror.KindValidation {
		return appErr.Violations
	}
	return nil
}

// validation merges violations into one error, or returns nil.
func validation(vs []apperror.Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return apperror.Validation(vs...)
}
