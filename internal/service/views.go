// internal/service/views.go
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
)

// UserView is the public representation of a user. It never carries the
// password hash.
type UserView struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	Admin               bool      `json:"admin"`
	TasksCount          int       `json:"tasks_count"`
	CompletedTasksCount int       `json:"completed_tasks_count"`
	PendingTasksCount   int       `json:"pending_tasks_count"`
	OverdueTasksCount   int       `json:"overdue_tasks_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func newUserView(u *models.User, c models.TaskCounts) *UserView {
	return &UserView{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Admin:               u.Admin,
		TasksCount:          c.Total,
		CompletedTasksCount: c.Completed,
		PendingTasksCount:   c.Pending,
		OverdueTasksCount:   c.Overdue,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// groupCounts are the derived counters shared by categories and tags.
type groupCounts struct {
	TasksCount          int  `json:"tasks_count"`
	ActiveTasksCount    int  `json:"active_tasks_count"`
	CompletedTasksCount int  `json:"completed_tasks_count"`
	OverdueTasksCount   int  `json:"overdue_tasks_count"`
	HasTasks            bool `json:"has_tasks"`
	CanDelete           bool `json:"can_delete"`
}

func newGroupCounts(c models.TaskCounts) groupCounts {
	return groupCounts{
		TasksCount:          c.Total,
		ActiveTasksCount:    c.Active,
		CompletedTasksCount: c.Completed,
		OverdueTasksCount:   c.Overdue,
		HasTasks:            c.HasTasks(),
		CanDelete:           c.CanDelete(),
	}
}

type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UserID      uuid.UUID `json:"user_id"`
	groupCounts
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCategoryView(c *models.Category, counts models.TaskCounts) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		UserID:      c.UserID,
		groupCounts: newGroupCounts(counts),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type TagView struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	UserID uuid.UUID `json:"user_id"`
	groupCounts
	UsagePercentage float64   `json:"usage_percentage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// newTagView renders t; ownerTasks is the owner's total task count.
func newTagView(t *models.Tag, counts models.TaskCounts, ownerTasks int) TagView {
	return TagView{
		ID:              t.ID,
		Name:            t.Name,
		Color:           t.Color,
		UserID:          t.UserID,
		groupCounts:     newGroupCounts(counts),
		UsagePercentage: query.UsagePercentage(counts.Total, ownerTasks),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// Summary is the short form of a category or tag embedded in a task.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

type TaskView struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status"`
	Priority     int               `json:"priority"`
	DueDate      *time.Time        `json:"due_date"`
	DaysUntilDue *int              `json:"days_until_due"`
	Overdue      bool              `json:"overdue"`
	DueSoon      bool              `json:"due_soon"`
	HighPriority bool              `json:"high_priority"`
	UserID       uuid.UUID         `json:"user_id"`
	Category     *Summary          `json:"category"`
	Tags         []Summary         `json:"tags"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func newTaskView(t *models.Task, category *models.Category, tags []models.Tag, now time.Time) TaskView {
	v := TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		DaysUntilDue: t.DaysUntilDue(now),
		Overdue:      t.IsOverdue(now),
		DueSoon:      t.IsDueSoon(now),
		HighPriority: t.IsHighPriority(),
		UserID:       t.UserID,
		Tags:         make([]Summary, 0, len(tags)),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if category != nil {
		v.Category = &Summary{ID: category.ID, Name: category.Name, Color: category.Color}
	}
	for _, tag := range tags {
		v.Tags = append(v.Tags, Summary{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	return v
}

type TaskList struct {
	Tasks []TaskView `json:"tasks"`
	Meta  query.Meta `json:"meta"`
}

type CategoryList struct {
	Categories []CategoryView `json:"categories"`
	Meta       query.Meta     `json:"meta"`
}

type TagList struct {
	Tags []TagView  `json:"tags"`
	Meta query.Meta `json:"meta"`
}
