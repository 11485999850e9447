// internal/service/task_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/query"
	"github.com/gurkanbulca/taskboard/internal/repository"
)

// TaskInput is a create or update request for a task.
type TaskInput struct {
	Draft models.TaskDraft
	// TagIDs replaces the task's tag set when not nil.
	TagIDs *[]uuid.UUID
}

type TaskService struct {
	base
}

func NewTaskService(store *repository.Store, opts ...Option) *TaskService {
	return &TaskService{base: newBase(store, opts)}
}

// List filters, sorts and pages the caller's tasks.
func (s *TaskService) List(ctx context.Context, caller Caller, q query.TaskQuery) (*TaskList, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	now := s.now()
	r := s.store.Repos()
	tasks, total, err := r.Tasks.List(ctx, caller.ID, q, now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	views, err := s.render(ctx, r, tasks, now)
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: views, Meta: query.NewMeta(q.Page, total)}, nil
}

// Get retrieves one of the caller's tasks.
func (s *TaskService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*TaskView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	return s.get(ctx, s.store.Repos(), caller.ID, id)
}

// Create creates a task and its tag links in one transaction.
func (s *TaskService) Create(ctx context.Context, caller Caller, in TaskInput) (*TaskView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	now := s.now()
	t := &models.Task{ID: uuid.New(), UserID: caller.ID, CreatedAt: now, UpdatedAt: now}
	t.Merge(in.Draft)

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		links, err := s.check(ctx, r, t, in.TagIDs, now)
		if err != nil {
			return err
		}
		if err := r.Tasks.Create(ctx, t); err != nil {
			return err
		}
		if in.TagIDs == nil {
			return nil
		}
		return r.Tasks.ReplaceTags(ctx, t.ID, links)
	})
	if err != nil {
		return nil, translate("task", err)
	}

	log.Printf("[INFO] Task created: %s (user: %s)", t.ID, caller.ID)
	return s.get(ctx, s.store.Repos(), caller.ID, t.ID)
}

// Update changes the caller's task. Omitted fields keep their values.
func (s *TaskService) Update(ctx context.Context, caller Caller, id uuid.UUID, in TaskInput) (*TaskView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	now := s.now()
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks.GetForUpdate(ctx, caller.ID, id)
		if err != nil {
			return translate("task", err)
		}
		t.Merge(in.Draft)
		links, err := s.check(ctx, r, t, in.TagIDs, now)
		if err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := r.Tasks.Update(ctx, t); err != nil {
			return err
		}
		if in.TagIDs == nil {
			return nil
		}
		return r.Tasks.ReplaceTags(ctx, t.ID, links)
	})
	if err != nil {
		return nil, translate("task", err)
	}
	return s.get(ctx, s.store.Repos(), caller.ID, id)
}

// Delete removes the caller's task together with its tag links.
func (s *TaskService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := authenticated(caller); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks.GetForUpdate(ctx, caller.ID, id)
		if err != nil {
			return err
		}
		return r.Tasks.Delete(ctx, t.ID)
	})
	if err != nil {
		return translate("task", err)
	}
	log.Printf("[INFO] Task deleted: %s (user: %s)", id, caller.ID)
	return nil
}

// Transition runs a state machine operation on the caller's task. A
// guarded no-op still returns the task.
func (s *TaskService) Transition(ctx context.Context, caller Caller, id uuid.UUID, tr models.Transition) (*TaskView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	if !tr.Valid() {
		return nil, apperror.Malformed("unknown transition " + string(tr))
	}
	now := s.now()
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tasks.GetForUpdate(ctx, caller.ID, id)
		if err != nil {
			return translate("task", err)
		}
		changed, err := t.Apply(tr)
		if err != nil || !changed {
			return err
		}
		t.UpdatedAt = now
		return r.Tasks.Update(ctx, t)
	})
	if err != nil {
		return nil, translate("task", err)
	}
	return s.get(ctx, s.store.Repos(), caller.ID, id)
}

// check validates t against its rules and its references and returns the
// tag links to store. The referenced category and tags are share-locked
// until the transaction ends, so a concurrent guarded delete waits.
func (s *TaskService) check(ctx context.Context, r repository.Repos, t *models.Task, tagIDs *[]uuid.UUID, now time.Time) ([]models.TaskTag, error) {
	vs := violationsOf(t.Validate())

	if t.CategoryID.Valid {
		_, err := r.Categories.GetForShare(ctx, t.UserID, t.CategoryID.UUID)
		switch {
		case repository.IsNotFound(err):
			vs = append(vs, apperror.Violation{Field: "category", Message: "must exist"})
		case err != nil:
			return nil, err
		}
	}

	var links []models.TaskTag
	if tagIDs != nil {
		found, err := r.Tags.GetMany(ctx, t.UserID, *tagIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]models.Tag, len(found))
		for _, tag := range found {
			byID[tag.ID] = tag
		}
		requested := make([]models.Tag, 0, len(*tagIDs))
		for _, id := range *tagIDs {
			tag, ok := byID[id]
			if !ok {
				vs = append(vs, apperror.Violation{Field: "tag_ids", Message: "tag " + id.String() + " does not exist"})
				continue
			}
			requested = append(requested, tag)
		}
		links, err = models.LinkTags(t, requested, now)
		vs = append(vs, violationsOf(err)...)
	}

	if err := validation(vs); err != nil {
		return nil, err
	}
	return links, nil
}

func (s *TaskService) get(ctx context.Context, r repository.Repos, owner, id uuid.UUID) (*TaskView, error) {
	t, err := r.Tasks.Get(ctx, owner, id)
	if err != nil {
		return nil, translate("task", err)
	}
	now := s.now()
	views, err := s.render(ctx, r, []models.Task{*t}, now)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// render loads the categories and tags of tasks with one query each.
func (s *TaskService) render(ctx context.Context, r repository.Repos, tasks []models.Task, now time.Time) ([]TaskView, error) {
	ids := make([]uuid.UUID, 0, len(tasks))
	var categoryIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		ids = append(ids, t.ID)
		if t.CategoryID.Valid && !seen[t.CategoryID.UUID] {
			seen[t.CategoryID.UUID] = true
			categoryIDs = append(categoryIDs, t.CategoryID.UUID)
		}
	}

	tags, err := r.Tasks.TagsFor(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	categories, err := r.Categories.GetMany(ctx, categoryIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[uuid.UUID]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		var category *models.Category
		if t.CategoryID.Valid {
			category = byID[t.CategoryID.UUID]
		}
		views = append(views, newTaskView(t, category, tags[t.ID], now))
	}
	return views, nil
}
