// internal/repository/category_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
)

type CategoryRepository struct {
	builder
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	c.CreatedAt = timestamp(c.CreatedAt)
	c.UpdatedAt = timestamp(c.UpdatedAt)
	insert := r.stmt().Insert(categoryTable.name).
		Columns(categoryTable.columns...).
		Values(c.ID, c.UserID, c.Name, c.Description, c.Color, c.CreatedAt, c.UpdatedAt)
	if _, err := r.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = timestamp(c.UpdatedAt)
	update := r.stmt().Update(categoryTable.name).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("color", c.Color).
		Set("updated_at", c.UpdatedAt).
		Where(entsql.EQ("id", c.ID))
	if _, err := r.exec(ctx, update); err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return nil
}

// Get returns the owner's category. Another owner's category is not found.
func (r *CategoryRepository) Get(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.getGroup(ctx, categoryTable, owner, id, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForUpdate is Get with the row locked until the transaction ends.
// A concurrent task insert referencing the category waits on the lock.
func (r *CategoryRepository) GetForUpdate(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.getGroup(ctx, categoryTable, owner, id, entsql.LockUpdate, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForShare is Get with the row share-locked, used while a task is
// being attached so a concurrent guarded delete waits for it.
func (r *CategoryRepository) GetForShare(ctx context.Context, owner, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.getGroup(ctx, categoryTable, owner, id, entsql.LockShare, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) NameTaken(ctx context.Context, owner uuid.UUID, name string, except uuid.UUID) (bool, error) {
	return r.nameTaken(ctx, categoryTable, owner, name, except)
}

// ReferenceCount counts the tasks assigned to the category.
func (r *CategoryRepository) ReferenceCount(ctx context.Context, id uuid.UUID) (int, error) {
	return r.referenceCount(ctx, categoryTable, id)
}

// Delete removes the category; its tasks are detached, not deleted.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteGroup(ctx, categoryTable, id)
}

func (r *CategoryRepository) List(ctx context.Context, owner uuid.UUID, q query.GroupQuery) ([]models.Category, int, error) {
	var out []models.Category
	total, err := r.listGroup(ctx, categoryTable, owner, q, nil, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetMany returns the categories with the given ids.
func (r *CategoryRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	if len(ids) == 0 {
		return out, nil
	}
	sel := r.stmt().Select(categoryTable.columns...).From(r.table(categoryTable.name)).
		Where(entsql.In("id", anySlice(ids)...))
	if err := r.selectAll(ctx, &out, sel); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return out, nil
}

// TaskCounts loads the task counters of each category with one query.
func (r *CategoryRepository) TaskCounts(ctx context.Context, ids []uuid.UUID, now time.Time) (map[uuid.UUID]models.TaskCounts, error) {
	return r.groupedCounts(ctx, ids, now, func(tasks *entsql.SelectTable) (*entsql.Selector, string) {
		return r.stmt().Select().From(tasks), tasks.C("category_id")
	})
}
