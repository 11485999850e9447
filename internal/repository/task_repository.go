// internal/repository/task_repository.go
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

var taskColumns = []string{
	"id", "user_id", "category_id", "title", "description",
	"status", "priority", "due_date", "created_at", "updated_at",
}

type TaskRepository struct {
	builder
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	t.CreatedAt = timestamp(t.CreatedAt)
	t.UpdatedAt = timestamp(t.UpdatedAt)
	insert := r.stmt().Insert("tasks").
		Columns(taskColumns...).
		Values(t.ID, t.UserID, t.CategoryID, t.Title, t.Description,
			t.Status, t.Priority, dueDate(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if _, err := r.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = timestamp(t.UpdatedAt)
	update := r.stmt().Update("tasks").
		Set("category_id", t.CategoryID).
		Set("title", t.Title).
		Set("description", t.Description).
		Set("status", t.Status).
		Set("priority", t.Priority).
		Set("due_date", dueDate(t.DueDate)).
		Set("updated_at", t.UpdatedAt).
		Where(entsql.EQ("id", t.ID))
	if _, err := r.exec(ctx, update); err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

// Get returns the owner's task. Another owner's task is not found.
func (r *TaskRepository) Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	return r.getOne(ctx, owner, id, "")
}

// GetForUpdate is Get with the row locked until the transaction ends.
func (r *TaskRepository) GetForUpdate(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	return r.getOne(ctx, owner, id, entsql.LockUpdate)
}

func (r *TaskRepository) getOne(ctx context.Context, owner, id uuid.UUID, lock entsql.LockStrength) (*models.Task, error) {
	sel := r.stmt().Select(taskColumns...).From(r.table("tasks")).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", owner)))
	var t models.Task
	if err := r.get(ctx, &t, r.lock(sel, lock)); err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// CountByOwner counts all of owner's tasks.
func (r *TaskRepository) CountByOwner(ctx context.Context, owner uuid.UUID) (int, error) {
	return r.countOwnerTasks(ctx, owner)
}

// Delete removes the task and its tag links.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.exec(ctx, r.stmt().Delete("tasks").Where(entsql.EQ("id", id))); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// ReplaceTags makes links the complete tag set of the task.
func (r *TaskRepository) ReplaceTags(ctx context.Context, taskID uuid.UUID, links []models.TaskTag) error {
	if _, err := r.exec(ctx, r.stmt().Delete("task_tags").Where(entsql.EQ("task_id", taskID))); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}
	if len(links) == 0 {
		return nil
	}
	insert := r.stmt().Insert("task_tags").Columns("task_id", "tag_id", "created_at")
	for _, l := range links {
		insert.Values(l.TaskID, l.TagID, timestamp(l.CreatedAt))
	}
	if _, err := r.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert task tags: %w", err)
	}
	return nil
}

type taskTagRow struct {
	TaskID uuid.UUID `db:"task_id"`
	models.Tag
}

// TagsFor loads the tags of each task, ordered by name.
func (r *TaskRepository) TagsFor(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	out := make(map[uuid.UUID][]models.Tag, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	links, tags := r.table("task_tags").As("tt"), r.table("tags").As("g")
	sel := r.stmt().Select().From(links).Join(tags).On(tags.C("id"), links.C("tag_id"))
	sel.Select(append([]string{links.C("task_id")}, tags.Columns(tagTable.columns...)...)...).
		Where(entsql.In(links.C("task_id"), anySlice(taskIDs)...)).
		OrderExpr(orderBy(tags.C("name"), false), orderBy(tags.C("id"), false))

	var rows []taskTagRow
	if err := r.selectAll(ctx, &rows, sel); err != nil {
		return nil, fmt.Errorf("load task tags: %w", err)
	}
	for _, row := range rows {
		out[row.TaskID] = append(out[row.TaskID], row.Tag)
	}
	return out, nil
}

// List filters, sorts and pages the owner's tasks and returns the unpaged
// total. now anchors the overdue and due-soon filters.
func (r *TaskRepository) List(ctx context.Context, owner uuid.UUID, q query.TaskQuery, now time.Time) ([]models.Task, int, error) {
	t := r.table("tasks")
	where := func() *entsql.Predicate {
		return entsql.And(r.taskPredicates(t, owner, q.Filter, now)...)
	}

	var total int
	count := r.stmt().Select(entsql.Count("*")).From(t).Where(where())
	if err := r.get(ctx, &total, count); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	sel := r.stmt().Select(t.Columns(taskColumns...)...).From(t).Where(where())
	switch q.Sort.Key {
	case query.SortDueDate:
		sel.OrderExpr(nullsLast(t.C("due_date")), orderBy(t.C("due_date"), false))
	case query.SortPriority:
		sel.OrderExpr(orderBy(t.C("priority"), q.Sort.Desc))
	case query.SortTitle:
		sel.OrderExpr(orderBy(t.C("title"), q.Sort.Desc))
	default:
		sel.OrderExpr(orderBy(t.C("created_at"), q.Sort.Desc))
	}
	sel.OrderExpr(orderBy(t.C("id"), false)).
		Limit(q.Page.Limit()).
		Offset(q.Page.Offset())

	var out []models.Task
	if err := r.selectAll(ctx, &out, sel); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return out, total, nil
}

func (r *TaskRepository) taskPredicates(t *entsql.SelectTable, owner uuid.UUID, f query.TaskFilter, now time.Time) []*entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ(t.C("user_id"), owner)}
	if f.Status != nil {
		preds = append(preds, entsql.EQ(t.C("status"), string(*f.Status)))
	}
	if f.Priority != nil {
		preds = append(preds, entsql.EQ(t.C("priority"), *f.Priority))
	}
	if f.CategoryID != nil {
		preds = append(preds, entsql.EQ(t.C("category_id"), *f.CategoryID))
	}
	if f.TagID != nil {
		links := r.table("task_tags")
		preds = append(preds, entsql.Exists(
			r.stmt().Select().From(links).Where(entsql.And(
				entsql.ColumnsEQ(links.C("task_id"), t.C("id")),
				entsql.EQ(links.C("tag_id"), *f.TagID),
			)),
		))
	}
	notCompleted := func() *entsql.Predicate {
		return entsql.NEQ(t.C("status"), string(models.TaskStatusCompleted))
	}
	if f.Overdue {
		preds = append(preds, entsql.LT(t.C("due_date"), timestamp(now)), notCompleted())
	}
	if f.DueSoon {
		from, to := models.DueSoonWindow(now)
		preds = append(preds,
			entsql.GTE(t.C("due_date"), timestamp(from)),
			entsql.LTE(t.C("due_date"), timestamp(to)),
			notCompleted(),
		)
	}
	if f.Search != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(t.C("title"), f.Search),
			entsql.ContainsFold(t.C("description"), f.Search),
		))
	}
	return preds
}

// dueDate stores a missing due date as NULL.
func dueDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return timestamp(*d)
}
