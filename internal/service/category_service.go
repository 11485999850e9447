// internal/service/category_service.go
package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

type CategoryService struct {
	base
}

func NewCategoryService(store *repository.Store, opts ...Option) *CategoryService {
	return &CategoryService{base: newBase(store, opts)}
}

func (s *CategoryService) List(ctx context.Context, caller Caller, q query.GroupQuery) (*CategoryList, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	r := s.store.Repos()
	categories, total, err := r.Categories.List(ctx, caller.ID, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]uuid.UUID, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	counts, err := r.Categories.TaskCounts(ctx, ids, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := &CategoryList{Categories: make([]CategoryView, 0, len(categories)), Meta: query.NewMeta(q.Page, total)}
	for i := range categories {
		out.Categories = append(out.Categories, newCategoryView(&categories[i], counts[categories[i].ID]))
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*CategoryView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	r := s.store.Repos()
	c, err := r.Categories.Get(ctx, caller.ID, id)
	if err != nil {
		return nil, translate("category", err)
	}
	return s.view(ctx, r, c)
}

func (s *CategoryService) Create(ctx context.Context, caller Caller, d models.CategoryDraft) (*CategoryView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	now := s.now()
	c := &models.Category{ID: uuid.New(), UserID: caller.ID, CreatedAt: now, UpdatedAt: now}
	c.Merge(d)
	c.ApplyDefaults()

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if err := s.validate(ctx, r, c); err != nil {
			return err
		}
		return r.Categories.Create(ctx, c)
	})
	if err != nil {
		return nil, groupWriteError("category", err)
	}
	log.Printf("[INFO] Category created: %s (user: %s)", c.ID, caller.ID)
	return s.view(ctx, s.store.Repos(), c)
}

func (s *CategoryService) Update(ctx context.Context, caller Caller, id uuid.UUID, d models.CategoryDraft) (*CategoryView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	var c *models.Category
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		if c, err = r.Categories.GetForUpdate(ctx, caller.ID, id); err != nil {
			return err
		}
		c.Merge(d)
		if err := s.validate(ctx, r, c); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		return r.Categories.Update(ctx, c)
	})
	if err != nil {
		return nil, groupWriteError("category", err)
	}
	return s.view(ctx, s.store.Repos(), c)
}

// Delete removes the category only while no task references it. The row
// lock is held from the count to the delete, so a task cannot be assigned
// in between.
func (s *CategoryService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := authenticated(caller); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		c, err := r.Categories.GetForUpdate(ctx, caller.ID, id)
		if err != nil {
			return translate("category", err)
		}
		n, err := r.Categories.ReferenceCount(ctx, c.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return deleteRefused("category", n)
		}
		return r.Categories.Delete(ctx, c.ID)
	})
	if err != nil {
		return translate("category", err)
	}
	log.Printf("[INFO] Category deleted: %s (user: %s)", id, caller.ID)
	return nil
}

// validate runs the field rules and the per-owner name check together so
// every violation is reported at once.
func (s *CategoryService) validate(ctx context.Context, r repository.Repos, c *models.Category) error {
	vs := violationsOf(c.Validate())
	taken, err := r.Categories.NameTaken(ctx, c.UserID, c.Name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		vs = append(vs, models.NameTaken())
	}
	return validation(vs)
}

func (s *CategoryService) view(ctx context.Context, r repository.Repos, c *models.Category) (*CategoryView, error) {
	counts, err := r.Categories.TaskCounts(ctx, []uuid.UUID{c.ID}, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	v := newCategoryView(c, counts[c.ID])
	return &v, nil
}
