// internal/service/seed.go
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/repository"
	"github.com/gurkanbulca/taskboard/pkg/auth"
)

// Services bundles every service over one store.
type Services struct {
	Users      *UserService
	Categories *CategoryService
	Tags       *TagService
	Tasks      *TaskService
	Stats      *StatsService
	Health     *HealthService
}

func NewServices(store *repository.Store, passwords *auth.PasswordManager, tokens *auth.TokenManager, environment string, opts ...Option) *Services {
	return &Services{
		Users:      NewUserService(store, passwords, tokens, opts...),
		Categories: NewCategoryService(store, opts...),
		Tags:       NewTagService(store, opts...),
		Tasks:      NewTaskService(store, opts...),
		Stats:      NewStatsService(store, opts...),
		Health:     NewHealthService(store, environment, opts...),
	}
}

// SeedAdminEmail identifies the seeded admin; seeding is skipped when it exists.
const SeedAdminEmail = "test@example.com"

// Seed inserts demo data through the services, so every rule applies.
func (s *Services) Seed(ctx context.Context) error {
	taken, err := s.Users.store.Repos().Users.EmailTaken(ctx, SeedAdminEmail, uuid.Nil)
	if err != nil {
		return fmt.Errorf("check seed user: %w", err)
	}
	if taken {
		log.Println("[INFO] Seed data already present, skipping")
		return nil
	}

	admin, err := s.Users.Register(ctx, RegisterInput{
		Email: SeedAdminEmail, Name: "Test User", Password: "password123", Admin: true,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := s.Users.Register(ctx, RegisterInput{
		Email: "jane@example.com", Name: "Jane Doe", Password: "password123",
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	caller := Caller{ID: admin.ID, Admin: true}

	var categories []*CategoryView
	for _, c := range []struct{ name, description, color string }{
		{"Work", "Work tasks", "#dc3545"},
		{"Personal", "Personal errands", "#28a745"},
		{"Learning", "Study and practice", "#17a2b8"},
	} {
		v, err := s.Categories.Create(ctx, caller, models.CategoryDraft{Name: &c.name, Description: &c.description, Color: &c.color})
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
		categories = append(categories, v)
	}

	var tagIDs []uuid.UUID
	for _, t := range []struct{ name, color string }{
		{"urgent", "#dc3545"},
		{"important", "#ffc107"},
		{"idea", "#6f42c1"},
	} {
		v, err := s.Tags.Create(ctx, caller, models.TagDraft{Name: &t.name, Color: &t.color})
		if err != nil {
			return fmt.Errorf("seed tag %s: %w", t.name, err)
		}
		tagIDs = append(tagIDs, v.ID)
	}

	now := s.Tasks.now()
	tasks := []struct {
		title, description string
		status             models.TaskStatus
		priority           int
		category           *CategoryView
		dueInDays          int
		tags               []uuid.UUID
	}{
		{"Learn Go", "Work through the basics of Go", models.TaskStatusInProgress, 3, categories[2], 7, tagIDs[:2]},
		{"Build the task board", "Ship a complete task management API", models.TaskStatusPending, 5, categories[0], 14, tagIDs[1:2]},
	}
	for _, t := range tasks {
		due := now.AddDate(0, 0, t.dueInDays)
		tags := t.tags
		_, err := s.Tasks.Create(ctx, caller, TaskInput{
			Draft: models.TaskDraft{
				Title:       &t.title,
				Description: &t.description,
				Status:      &t.status,
				Priority:    &t.priority,
				DueDate:     models.Some(due),
				CategoryID:  models.Some(t.category.ID),
			},
			TagIDs: &tags,
		})
		if err != nil {
			return fmt.Errorf("seed task %s: %w", t.title, err)
		}
	}

	log.Printf("[INFO] Seeded %d categories, %d tags, %d tasks", len(categories), len(tagIDs), len(tasks))
	return nil
}
