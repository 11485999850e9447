// internal/models/category.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups tasks of one owner. Deleting it detaches its tasks.
type Category struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Color       string    `db:"color"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CategoryDraft carries caller-supplied category fields; nil means unset.
type CategoryDraft struct {
	Name        *string
	Description *string
	Color       *string
}

func (c *Category) Merge(d CategoryDraft) {
	if d.Name != nil {
		c.Name = *d.Name
	}
	if d.Description != nil {
		c.Description = *d.Description
	}
	if d.Color != nil {
		c.Color = *d.Color
	}
}

// ApplyDefaults fills the default color on a new category.
func (c *Category) ApplyDefaults() {
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

// Validate checks the category rules. Name uniqueness needs the store and
// is checked by the caller.
func (c *Category) Validate() error {
	var v violations
	v.lengthBetween("name", c.Name, MinCategoryNameLength, MaxCategoryNameLength)
	v.maxLength("description", c.Description, MaxCategoryDescLength)
	v.color(c.Color)
	return v.err()
}

// TaskCounts are the derived task counters shown for categories, tags and users.
type TaskCounts struct {
	Total     int `db:"total"`
	Active    int `db:"active"`
	Completed int `db:"completed"`
	Pending   int `db:"pending"`
	Overdue   int `db:"overdue"`
}

// HasTasks reports whether anything references the owner of the counts.
func (c TaskCounts) HasTasks() bool { return c.Total > 0 }

// CanDelete mirrors the deletion guard: only unreferenced entities may go.
func (c TaskCounts) CanDelete() bool { return c.Total == 0 }
