// internal/repository/tag_repository.go
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

type TagRepository struct {
	builder
}

func (r *TagRepository) Create(ctx context.Context, t *models.Tag) error {
	t.CreatedAt = timestamp(t.CreatedAt)
	t.UpdatedAt = timestamp(t.UpdatedAt)
	insert := r.stmt().Insert(tagTable.name).
		Columns(tagTable.columns...).
		Values(t.ID, t.UserID, t.Name, t.Color, t.CreatedAt, t.UpdatedAt)
	if _, err := r.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (r *TagRepository) Update(ctx context.Context, t *models.Tag) error {
	t.UpdatedAt = timestamp(t.UpdatedAt)
	update := r.stmt().Update(tagTable.name).
		Set("name", t.Name).
		Set("color", t.Color).
		Set("updated_at", t.UpdatedAt).
		Where(entsql.EQ("id", t.ID))
	if _, err := r.exec(ctx, update); err != nil {
		return fmt.Errorf("update tag %s: %w", t.ID, err)
	}
	return nil
}

// Get returns the owner's tag. Another owner's tag is not found.
func (r *TagRepository) Get(ctx context.Context, owner, id uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	if err := r.getGroup(ctx, tagTable, owner, id, "", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdate is Get with the row locked until the transaction ends.
func (r *TagRepository) GetForUpdate(ctx context.Context, owner, id uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	if err := r.getGroup(ctx, tagTable, owner, id, entsql.LockUpdate, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetMany returns owner's tags among ids; other owners' tags are left out
// like unknown ids. The rows are share-locked so a concurrent guarded
// delete waits for the link.
func (r *TagRepository) GetMany(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	if len(ids) == 0 {
		return out, nil
	}
	sel := r.stmt().Select(tagTable.columns...).From(r.table(tagTable.name)).
		Where(entsql.And(
			entsql.In("id", anySlice(ids)...),
			entsql.EQ("user_id", owner),
		))
	if err := r.selectAll(ctx, &out, r.lock(sel, entsql.LockShare)); err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return out, nil
}

func (r *TagRepository) NameTaken(ctx context.Context, owner uuid.UUID, name string, except uuid.UUID) (bool, error) {
	return r.nameTaken(ctx, tagTable, owner, name, except)
}

// ReferenceCount counts the tasks carrying the tag.
func (r *TagRepository) ReferenceCount(ctx context.Context, id uuid.UUID) (int, error) {
	return r.referenceCount(ctx, tagTable, id)
}

func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteGroup(ctx, tagTable, id)
}

// List pages the owner's tags. The popular filter runs in two phases:
// usage counts for the owner's tags are loaded and compared in process,
// then the surviving ids restrict the query.
func (r *TagRepository) List(ctx context.Context, owner uuid.UUID, q query.GroupQuery) ([]models.Tag, int, error) {
	var popular []uuid.UUID
	if q.Filter.Popular {
		usage, total, err := r.Usage(ctx, owner)
		if err != nil {
			return nil, 0, err
		}
		popular = query.PopularTagIDs(usage, total)
	}

	extra := func(g *entsql.SelectTable) []*entsql.Predicate {
		var preds []*entsql.Predicate
		if q.Filter.Color != "" {
			preds = append(preds, entsql.EQ(g.C("color"), q.Filter.Color))
		}
		if q.Filter.Popular {
			preds = append(preds, entsql.In(g.C("id"), anySlice(popular)...))
		}
		return preds
	}

	var out []models.Tag
	total, err := r.listGroup(ctx, tagTable, owner, q, extra, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type usageRow struct {
	TagID uuid.UUID `db:"tag_id"`
	Count int       `db:"n"`
}

// Usage returns how many of owner's tasks carry each of owner's tags, and
// owner's total task count. Tags without tasks are absent from the map.
func (r *TagRepository) Usage(ctx context.Context, owner uuid.UUID) (map[uuid.UUID]int, int, error) {
	total, err := r.countOwnerTasks(ctx, owner)
	if err != nil {
		return nil, 0, err
	}

	links, tags := r.table("task_tags").As("tt"), r.table("tags").As("g")
	sel := r.stmt().Select().From(links).
		Join(tags).On(tags.C("id"), links.C("tag_id"))
	sel.SelectExpr(entsql.ExprFunc(func(b *entsql.Builder) {
		b.Ident(links.C("tag_id")).WriteString(" AS tag_id, COUNT(*) AS n")
	})).
		Where(entsql.EQ(tags.C("user_id"), owner)).
		GroupBy(links.C("tag_id"))

	var rows []usageRow
	if err := r.selectAll(ctx, &rows, sel); err != nil {
		return nil, 0, fmt.Errorf("count tag usage: %w", err)
	}
	usage := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		usage[row.TagID] = row.Count
	}
	return usage, total, nil
}

// TaskCounts loads the task counters of each tag with one query.
func (r *TagRepository) TaskCounts(ctx context.Context, ids []uuid.UUID, now time.Time) (map[uuid.UUID]models.TaskCounts, error) {
	return r.groupedCounts(ctx, ids, now, func(tasks *entsql.SelectTable) (*entsql.Selector, string) {
		links := r.table("task_tags").As("tt")
		sel := r.stmt().Select().From(links).Join(tasks).On(tasks.C("id"), links.C("task_id"))
		return sel, links.C("tag_id")
	})
}
