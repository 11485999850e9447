// internal/models/task.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DueSoonDays is the width of the due-soon window, today included.
const DueSoonDays = 7

// Task is a unit of work owned by a user.
type Task struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	CategoryID  uuid.NullUUID `db:"category_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Status      TaskStatus    `db:"status"`
	Priority    int           `db:"priority"`
	DueDate     *time.Time    `db:"due_date"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// TaskDraft carries caller-supplied task fields; nil means unset.
type TaskDraft struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *int
	DueDate     Optional[time.Time]
	CategoryID  Optional[uuid.UUID]
}

// Merge copies the set fields of d onto t and applies defaults.
// Defaults are filled before validation so an omitted status counts as pending.
func (t *Task) Merge(d TaskDraft) {
	if d.Title != nil {
		t.Title = *d.Title
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.Priority != nil {
		t.Priority = *d.Priority
	}
	if d.DueDate.Set {
		if d.DueDate.Value == nil {
			t.DueDate = nil
		} else {
			due := d.DueDate.Value.UTC()
			t.DueDate = &due
		}
	}
	if d.CategoryID.Set {
		if d.CategoryID.Value == nil {
			t.CategoryID = uuid.NullUUID{}
		} else {
			t.CategoryID = uuid.NullUUID{UUID: *d.CategoryID.Value, Valid: true}
		}
	}
	t.ApplyDefaults()
}

// ApplyDefaults sets an unset status to pending. An unset priority is already 0.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
}

// Validate checks the task rules and returns a validation error listing
// every violation, or nil.
func (t *Task) Validate() error {
	var v violations
	v.lengthBetween("title", t.Title, MinTaskTitleLength, MaxTaskTitleLength)
	v.maxLength("description", t.Description, MaxTaskDescLength)
	if !t.Status.Valid() {
		v.add("status", msgInvalidStatus)
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		v.add("priority", "must be between 0 and 5")
	}
	if t.Status.IsActive() && t.DueDate == nil {
		v.add("due_date", msgBlank)
	}
	return v.err()
}

// IsOverdue reports a due date in the past on a task that is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// IsDueSoon reports a due date inside DueSoonWindow on a task that is not completed.
func (t *Task) IsDueSoon(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	from, to := DueSoonWindow(now)
	return !t.DueDate.Before(from) && !t.DueDate.After(to)
}

func (t *Task) IsHighPriority() bool {
	return t.Priority >= HighPriorityThreshold
}

// DaysUntilDue is the number of calendar days between today and the due date.
func (t *Task) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	today := startOfDay(now)
	due := startOfDay(t.DueDate.In(now.Location()))
	days := int(due.Sub(today).Hours() / 24)
	return &days
}

// DueSoonWindow returns the inclusive [today, today+7d] range.
func DueSoonWindow(now time.Time) (from, to time.Time) {
	from = startOfDay(now)
	return from, from.AddDate(0, 0, DueSoonDays)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
