// internal/repository/counts.go
package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/models"
)

type countsRow struct {
	GroupID uuid.UUID `db:"group_id"`
	models.TaskCounts
}

// countsExpr selects the models.TaskCounts columns over the tasks table t.
func countsExpr(t *entsql.SelectTable, now time.Time) entsql.Querier {
	status, due := t.C("status"), t.C("due_date")
	return entsql.ExprFunc(func(b *entsql.Builder) {
		b.WriteString("COUNT(*) AS total, ")
		b.WriteString("SUM(CASE WHEN ").Ident(status).WriteString(" IN ('pending', 'in_progress') THEN 1 ELSE 0 END) AS active, ")
		b.WriteString("SUM(CASE WHEN ").Ident(status).WriteString(" = 'completed' THEN 1 ELSE 0 END) AS completed, ")
		b.WriteString("SUM(CASE WHEN ").Ident(status).WriteString(" = 'pending' THEN 1 ELSE 0 END) AS pending, ")
		b.WriteString("SUM(CASE WHEN ").Ident(due).WriteString(" < ").Arg(timestamp(now)).
			WriteString(" AND ").Ident(status).WriteString(" <> 'completed' THEN 1 ELSE 0 END) AS overdue")
	})
}

// groupedCounts loads the task counters for every id in ids with one
// grouped query. from receives the tasks table, aliased "t", and returns
// the selector to count over plus the column holding the grouped id. Ids
// without tasks map to zero counts.
func (b builder) groupedCounts(
	ctx context.Context,
	ids []uuid.UUID,
	now time.Time,
	from func(tasks *entsql.SelectTable) (*entsql.Selector, string),
) (map[uuid.UUID]models.TaskCounts, error) {
	out := make(map[uuid.UUID]models.TaskCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	tasks := b.table("tasks").As("t")
	sel, groupCol := from(tasks)
	sel.SelectExpr(
		entsql.ExprFunc(func(b *entsql.Builder) {
			b.Ident(groupCol).WriteString(" AS group_id")
		}),
		countsExpr(tasks, now),
	).
		Where(entsql.In(groupCol, anySlice(ids)...)).
		GroupBy(groupCol)

	var rows []countsRow
	if err := b.selectAll(ctx, &rows, sel); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	for _, id := range ids {
		out[id] = models.TaskCounts{}
	}
	for _, r := range rows {
		out[r.GroupID] = r.TaskCounts
	}
	return out, nil
}

func (b builder) countOwnerTasks(ctx context.Context, owner uuid.UUID) (int, error) {
	var n int
	sel := b.stmt().Select(entsql.Count("*")).From(b.table("tasks")).Where(entsql.EQ("user_id", owner))
	if err := b.get(ctx, &n, sel); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}
