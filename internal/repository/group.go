// internal/repository/group.go
package repository

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/query"
)

// groupTable describes an owner-scoped table that tasks reference:
// categories directly, tags through task_tags.
type groupTable struct {
	name      string
	columns   []string
	refTable  string
	refColumn string
}

var categoryTable = groupTable{
	name:      "categories",
	columns:   []string{"id", "user_id", "name", "description", "color", "created_at", "updated_at"},
	refTable:  "tasks",
	refColumn: "category_id",
}

var tagTable = groupTable{
	name:      "tags",
	columns:   []string{"id", "user_id", "name", "color", "created_at", "updated_at"},
	refTable:  "task_tags",
	refColumn: "tag_id",
}

// refs selects the rows referencing the group row g, correlated on g.
func (gt groupTable) refs(b builder, g *entsql.SelectTable) *entsql.Selector {
	r := b.table(gt.refTable)
	return b.stmt().Select().From(r).Where(entsql.ColumnsEQ(r.C(gt.refColumn), g.C("id")))
}

// getGroup loads one row owned by owner into dest.
func (b builder) getGroup(ctx context.Context, gt groupTable, owner, id uuid.UUID, lock entsql.LockStrength, dest any) error {
	g := b.table(gt.name)
	sel := b.stmt().Select(g.Columns(gt.columns...)...).From(g).
		Where(entsql.And(entsql.EQ(g.C("id"), id), entsql.EQ(g.C("user_id"), owner)))
	if err := b.get(ctx, dest, b.lock(sel, lock)); err != nil {
		return fmt.Errorf("get %s %s: %w", gt.name, id, err)
	}
	return nil
}

// nameTaken reports whether owner has another row called name.
func (b builder) nameTaken(ctx context.Context, gt groupTable, owner uuid.UUID, name string, except uuid.UUID) (bool, error) {
	sel := b.stmt().Select(entsql.Count("*")).From(b.table(gt.name)).
		Where(entsql.And(
			entsql.EQ("user_id", owner),
			entsql.EQ("name", name),
			entsql.NEQ("id", except),
		))
	var n int
	if err := b.get(ctx, &n, sel); err != nil {
		return false, fmt.Errorf("check %s name: %w", gt.name, err)
	}
	return n > 0, nil
}

// referenceCount counts the tasks referencing the row.
func (b builder) referenceCount(ctx context.Context, gt groupTable, id uuid.UUID) (int, error) {
	sel := b.stmt().Select(entsql.Count("*")).From(b.table(gt.refTable)).
		Where(entsql.EQ(gt.refColumn, id))
	var n int
	if err := b.get(ctx, &n, sel); err != nil {
		return 0, fmt.Errorf("count %s references: %w", gt.name, err)
	}
	return n, nil
}

func (b builder) deleteGroup(ctx context.Context, gt groupTable, id uuid.UUID) error {
	if _, err := b.exec(ctx, b.stmt().Delete(gt.name).Where(entsql.EQ("id", id))); err != nil {
		return fmt.Errorf("delete %s %s: %w", gt.name, id, err)
	}
	return nil
}

// listGroup filters, sorts and pages owner's rows into dest and returns
// the unpaged total. extra predicates are ANDed with the filter.
func (b builder) listGroup(
	ctx context.Context,
	gt groupTable,
	owner uuid.UUID,
	q query.GroupQuery,
	extra func(g *entsql.SelectTable) []*entsql.Predicate,
	dest any,
) (int, error) {
	g := b.table(gt.name)
	where := func() *entsql.Predicate {
		preds := []*entsql.Predicate{entsql.EQ(g.C("user_id"), owner)}
		if q.Filter.Search != "" {
			preds = append(preds, entsql.ContainsFold(g.C("name"), q.Filter.Search))
		}
		if q.Filter.WithTasks {
			preds = append(preds, entsql.Exists(gt.refs(b, g)))
		}
		if q.Filter.Unused {
			preds = append(preds, entsql.NotExists(gt.refs(b, g)))
		}
		if extra != nil {
			preds = append(preds, extra(g)...)
		}
		return entsql.And(preds...)
	}

	var total int
	count := b.stmt().Select(entsql.Count("*")).From(g).Where(where())
	if err := b.get(ctx, &total, count); err != nil {
		return 0, fmt.Errorf("count %s: %w", gt.name, err)
	}

	sel := b.stmt().Select(g.Columns(gt.columns...)...).From(g).Where(where())
	switch q.Sort.Key {
	case query.SortTasksCount:
		sel.OrderExpr(orderBySubquery(gt.refs(b, g).Count(), q.Sort.Desc))
	case query.SortCreatedAt:
		sel.OrderExpr(orderBy(g.C("created_at"), q.Sort.Desc))
	default:
		sel.OrderExpr(orderBy(g.C("name"), q.Sort.Desc))
	}
	sel.OrderExpr(orderBy(g.C("id"), false)).
		Limit(q.Page.Limit()).
		Offset(q.Page.Offset())

	if err := b.selectAll(ctx, dest, sel); err != nil {
		return 0, fmt.Errorf("list %s: %w", gt.name, err)
	}
	return total, nil
}
