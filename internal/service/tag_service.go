// internal/service/tag_service.go
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

type TagService struct {
	base
}

func NewTagService(store *repository.Store, opts ...Option) *TagService {
	return &TagService{base: newBase(store, opts)}
}

func (s *TagService) List(ctx context.Context, caller Caller, q query.GroupQuery) (*TagList, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	r := s.store.Repos()
	tags, total, err := r.Tags.List(ctx, caller.ID, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]uuid.UUID, len(tags))
	for i := range tags {
		ids[i] = tags[i].ID
	}
	counts, err := r.Tags.TaskCounts(ctx, ids, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	ownerTasks, err := r.Tasks.CountByOwner(ctx, caller.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := &TagList{Tags: make([]TagView, 0, len(tags)), Meta: query.NewMeta(q.Page, total)}
	for i := range tags {
		out.Tags = append(out.Tags, newTagView(&tags[i], counts[tags[i].ID], ownerTasks))
	}
	return out, nil
}

func (s *TagService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*TagView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	r := s.store.Repos()
	t, err := r.Tags.Get(ctx, caller.ID, id)
	if err != nil {
		return nil, translate("tag", err)
	}
	return s.view(ctx, r, t)
}

func (s *TagService) Create(ctx context.Context, caller Caller, d models.TagDraft) (*TagView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	now := s.now()
	t := &models.Tag{ID: uuid.New(), UserID: caller.ID, CreatedAt: now, UpdatedAt: now}
	t.Merge(d)
	t.ApplyDefaults()

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if err := s.validate(ctx, r, t); err != nil {
			return err
		}
		return r.Tags.Create(ctx, t)
	})
	if err != nil {
		return nil, groupWriteError("tag", err)
	}
	log.Printf("[INFO] Tag created: %s (user: %s)", t.ID, caller.ID)
	return s.view(ctx, s.store.Repos(), t)
}

func (s *TagService) Update(ctx context.Context, caller Caller, id uuid.UUID, d models.TagDraft) (*TagView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	var t *models.Tag
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		if t, err = r.Tags.GetForUpdate(ctx, caller.ID, id); err != nil {
			return err
		}
		t.Merge(d)
		if err := s.validate(ctx, r, t); err != nil {
			return err
		}
		t.UpdatedAt = s.now()
		return r.Tags.Update(ctx, t)
	})
	if err != nil {
		return nil, groupWriteError("tag", err)
	}
	return s.view(ctx, s.store.Repos(), t)
}

// Delete removes the tag only while no task carries it. The row lock is
// held from the count to the delete, so a task cannot be tagged in between.
func (s *TagService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := authenticated(caller); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		t, err := r.Tags.GetForUpdate(ctx, caller.ID, id)
		if err != nil {
			return translate("tag", err)
		}
		n, err := r.Tags.ReferenceCount(ctx, t.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return deleteRefused("tag", n)
		}
		return r.Tags.Delete(ctx, t.ID)
	})
	if err != nil {
		return translate("tag", err)
	}
	log.Printf("[INFO] Tag deleted: %s (user: %s)", id, caller.ID)
	return nil
}

func (s *TagService) validate(ctx context.Context, r repository.Repos, t *models.Tag) error {
	vs := violationsOf(t.Validate())
	taken, err := r.Tags.NameTaken(ctx, t.UserID, t.Name, t.ID)
	if err != nil {
		return err
	}
	if taken {
		vs = append(vs, models.NameTaken())
	}
	return validation(vs)
}

func (s *TagService) view(ctx context.Context, r repository.Repos, t *models.Tag) (*TagView, error) {
	counts, err := r.Tags.TaskCounts(ctx, []uuid.UUID{t.ID}, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	ownerTasks, err := r.Tasks.CountByOwner(ctx, t.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	v := newTagView(t, counts[t.ID], ownerTasks)
	return &v, nil
}
