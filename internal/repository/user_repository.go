// internal/repository/user_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/models"
)

var userColumns = []string{"id", "email", "name", "password_hash", "admin", "created_at", "updated_at"}

type UserRepository struct {
	builder
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.CreatedAt = timestamp(u.CreatedAt)
	u.UpdatedAt = timestamp(u.UpdatedAt)
	insert := r.stmt().Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Name, u.PasswordHash, u.Admin, u.CreatedAt, u.UpdatedAt)
	if _, err := r.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = timestamp(u.UpdatedAt)
	update := r.stmt().Update("users").
		Set("email", u.Email).
		Set("name", u.Name).
		Set("password_hash", u.PasswordHash).
		Set("admin", u.Admin).
		Set("updated_at", u.UpdatedAt).
		Where(entsql.EQ("id", u.ID))
	if _, err := r.exec(ctx, update); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

// GetByEmail looks the user up by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, entsql.EQ("email", models.NormalizeEmail(email)))
}

// EmailTaken reports whether another user already holds email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	sel := r.stmt().Select(entsql.Count("*")).From(r.table("users")).
		Where(entsql.And(
			entsql.EQ("email", models.NormalizeEmail(email)),
			entsql.NEQ("id", except),
		))
	var n int
	if err := r.get(ctx, &n, sel); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// Delete removes the user; categories, tags and tasks go with it.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.exec(ctx, r.stmt().Delete("users").Where(entsql.EQ("id", id))); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// TaskCounts loads the task counters of each user.
func (r *UserRepository) TaskCounts(ctx context.Context, ids []uuid.UUID, now time.Time) (map[uuid.UUID]models.TaskCounts, error) {
	return r.groupedCounts(ctx, ids, now, func(tasks *entsql.SelectTable) (*entsql.Selector, string) {
		return r.stmt().Select().From(tasks), tasks.C("user_id")
	})
}

func (r *UserRepository) getOne(ctx context.Context, p *entsql.Predicate) (*models.User, error) {
	sel := r.stmt().Select(userColumns...).From(r.table("users")).Where(p)
	var u models.User
	if err := r.get(ctx, &u, sel); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
