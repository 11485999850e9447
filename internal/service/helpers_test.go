// internal/service/helpers_test.go
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/database"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/repository"
	"github.com/gurkanbulca/taskboard/pkg/auth"
)

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

// TestHelpers provides common test utilities
type TestHelpers struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.Store
	services *Services
}

// NewTestHelpers builds services over a fresh in-memory store with a
// fixed clock.
func NewTestHelpers(t *testing.T) *TestHelpers {
	t.Helper()
	name := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Config{Driver: dialect.SQLite, Path: name})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	store := repository.NewStore(db)
	tokens := auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
	services := NewServices(
		store,
		auth.NewPasswordManagerWithCost(bcrypt.MinCost),
		tokens,
		"test",
		WithClock(func() time.Time { return testNow }),
	)
	return &TestHelpers{t: t, ctx: context.Background(), store: store, services: services}
}

// CreateUser registers a regular user and returns it as a caller.
func (h *TestHelpers) CreateUser(email string) Caller {
	h.t.Helper()
	u, err := h.services.Users.Register(h.ctx, RegisterInput{Email: email, Name: "Test User", Password: "password123"})
	require.NoError(h.t, err)
	return Caller{ID: u.ID}
}

// CreateAdmin registers an admin user.
func (h *TestHelpers) CreateAdmin(email string) Caller {
	h.t.Helper()
	u, err := h.services.Users.Register(h.ctx, RegisterInput{Email: email, Name: "Admin User", Password: "password123", Admin: true})
	require.NoError(h.t, err)
	return Caller{ID: u.ID, Admin: true}
}

func (h *TestHelpers) CreateCategory(caller Caller, name string) *CategoryView {
	h.t.Helper()
	c, err := h.services.Categories.Create(h.ctx, caller, models.CategoryDraft{Name: &name})
	require.NoError(h.t, err)
	return c
}

func (h *TestHelpers) CreateTag(caller Caller, name string) *TagView {
	h.t.Helper()
	tag, err := h.services.Tags.Create(h.ctx, caller, models.TagDraft{Name: &name})
	require.NoError(h.t, err)
	return tag
}

// CreateTask creates a pending task due in three days.
func (h *TestHelpers) CreateTask(caller Caller, title string, mods ...func(*TaskInput)) *TaskView {
	h.t.Helper()
	in := taskInput(title)
	for _, m := range mods {
		m(&in)
	}
	task, err := h.services.Tasks.Create(h.ctx, caller, in)
	require.NoError(h.t, err)
	return task
}

func taskInput(title string) TaskInput {
	return TaskInput{Draft: models.TaskDraft{
		Title:   &title,
		DueDate: models.Some(testNow.AddDate(0, 0, 3)),
	}}
}

func inCategory(id uuid.UUID) func(*TaskInput) {
	return func(in *TaskInput) { in.Draft.CategoryID = models.Some(id) }
}

func withTags(ids ...uuid.UUID) func(*TaskInput) {
	return func(in *TaskInput) { in.TagIDs = &ids }
}

func withStatus(s models.TaskStatus) func(*TaskInput) {
	return func(in *TaskInput) { in.Draft.Status = &s }
}

func withPriority(p int) func(*TaskInput) {
	return func(in *TaskInput) { in.Draft.Priority = &p }
}

// requireKind asserts err is an application error of kind.
func requireKind(t *testing.T, err error, kind apperror.Kind) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.From(err)
	require.Equal(t, kind, appErr.Kind, "unexpected error: %v", err)
	return appErr
}

// requireViolation asserts err is a validation failure containing field message.
func requireViolation(t *testing.T, err error, field, message string) {
	t.Helper()
	appErr := requireKind(t, err, apperror.KindValidation)
	require.Contains(t, appErr.Violations, apperror.Violation{Field: field, Message: message})
}

func ptr[T any](v T) *T { return &v }
