// internal/service/category_service_test.go
package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
)

func TestCategoryService_Create(t *testing.T) {
	h := NewTestHelpers(t)
	alice := h.CreateUser("alice@example.com")
	bob := h.CreateUser("bob@example.com")
	h.CreateCategory(alice, "Work")

	t.Run("defaults color", func(t *testing.T) {
		c := h.CreateCategory(alice, "Home")
		assert.Equal(t, models.DefaultCategoryColor, c.Color)
		assert.Equal(t, alice.ID, c.UserID)
		assert.True(t, c.CanDelete)
		assert.False(t, c.HasTasks)
	})

	t.Run("duplicate name for the same owner", func(t *testing.T) {
		_, err := h.services.Categories.Create(h.ctx, alice, models.CategoryDraft{Name: ptr("Work")})
		requireViolation(t, err, "name", "has already been taken")
	})

	t.Run("same name for another owner", func(t *testing.T) {
		c := h.CreateCategory(bob, "Work")
		assert.Equal(t, bob.ID, c.UserID)
	})

	t.Run("every violation reported at once", func(t *testing.T) {
		_, err := h.services.Categories.Create(h.ctx, alice, models.CategoryDraft{
			Name:        ptr("W"),
			Description: ptr(strings.Repeat("x", 501)),
			Color:       ptr("red"),
		})
		appErr := requireKind(t, err, apperror.KindValidation)
		assert.ElementsMatch(t, []apperror.Violation{
			{Field: "name", Message: "must be between 2 and 50 characters"},
			{Field: "description", Message: "must not exceed 500 characters"},
			{Field: "color", Message: "must be a valid hex color"},
		}, appErr.Violations)
	})
}

func TestCategoryService_OwnerScoped(t *testing.T) {
	h := NewTestHelpers(t)
	alice := h.CreateUser("alice@example.com")
	bob := h.CreateUser("bob@example.com")
	admin := h.CreateAdmin("admin@example.com")
	c := h.CreateCategory(alice, "Work")

	for name, caller := range map[string]Caller{"other owner": bob, "admin": admin} {
		t.Run(name, func(t *testing.T) {
			_, err := h.services.Categories.Get(h.ctx, caller, c.ID)
			requireKind(t, err, apperror.KindNotFound)

			_, err = h.services.Categories.Update(h.ctx, caller, c.ID, models.CategoryDraft{Name: ptr("Stolen")})
			requireKind(t, err, apperror.KindNotFound)

			err = h.services.Categories.Delete(h.ctx, caller, c.ID)
			requireKind(t, err, apperror.KindNotFound)
		})
	}

	_, err := h.services.Categories.Get(h.ctx, alice, uuid.New())
	appErr := requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, "category not found", appErr.Message)
}

func TestCategoryService_GuardedDelete(t *testing.T) {
	h := NewTestHelpers(t)
	alice := h.CreateUser("alice@example.com")
	c := h.CreateCategory(alice, "Work")
	task := h.CreateTask(alice, "Write report", inCategory(c.ID))

	got, err := h.services.Categories.Get(h.ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TasksCount)
	assert.False(t, got.CanDelete)

	err = h.services.Categories.Delete(h.ctx, alice, c.ID)
	appErr := requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, "cannot delete: 1 tasks still reference this category", appErr.Message)

	_, err = h.services.Categories.Get(h.ctx, alice, c.ID)
	require.NoError(t, err, "refused delete leaves the category in place")

	_, err = h.services.Tasks.Update(h.ctx, alice, task.ID, TaskInput{Draft: models.TaskDraft{CategoryID: models.Null[uuid.UUID]()}})
	require.NoError(t, err)

	require.NoError(t, h.services.Categories.Delete(h.ctx, alice, c.ID))
	_, err = h.services.Categories.Get(h.ctx, alice, c.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestCategoryService_List(t *testing.T) {
	h := NewTestHelpers(t)
	alice := h.CreateUser("alice@example.com")
	work := h.CreateCategory(alice, "Work")
	h.CreateCategory(alice, "Home")
	h.CreateCategory(alice, "Garden")
	h.CreateTask(alice, "First", inCategory(work.ID))
	h.CreateTask(alice, "Second", inCategory(work.ID), withStatus(models.TaskStatusCompleted))

	list, err := h.services.Categories.List(h.ctx, alice, query.ParseCategoryQuery(nil))
	require.NoError(t, err)
	require.Len(t, list.Categories, 3)
	assert.Equal(t, "Garden", list.Categories[0].Name)
	assert.Equal(t, 3, list.Meta.TotalCount)

	q := query.GroupQuery{Filter: query.GroupFilter{WithTasks: true}, Sort: query.GroupSort("", ""), Page: query.NewPage(1, 10)}
	list, err = h.services.Categories.List(h.ctx, alice, q)
	require.NoError(t, err)
	require.Len(t, list.Categories, 1)
	assert.Equal(t, 2, list.Categories[0].TasksCount)
	assert.Equal(t, 1, list.Categories[0].ActiveTasksCount)
	assert.Equal(t, 1, list.Categories[0].CompletedTasksCount)
}
