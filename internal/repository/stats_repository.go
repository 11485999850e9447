// internal/repository/stats_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/gurkanbulca/taskboard/internal/models"
)

// StatsRepository aggregates counts across every owner.
type StatsRepository struct {
	builder
}

type userStatsRow struct {
	Total  int `db:"total"`
	Admins int `db:"admins"`
}

type taskStatsRow struct {
	Total      int `db:"total"`
	Pending    int `db:"pending"`
	InProgress int `db:"in_progress"`
	Completed  int `db:"completed"`
	Cancelled  int `db:"cancelled"`
	High       int `db:"high"`
	Medium     int `db:"medium"`
	Low        int `db:"low"`
	Overdue    int `db:"overdue"`
	DueSoon    int `db:"due_soon"`
}

// Snapshot computes the current counts. now anchors the overdue and
// due-soon buckets.
func (r *StatsRepository) Snapshot(ctx context.Context, now time.Time) (models.Stats, error) {
	var s models.Stats

	users, err := r.userStats(ctx)
	if err != nil {
		return s, err
	}
	s.Users = models.UserStats{Total: users.Total, Admins: users.Admins, Regular: users.Total - users.Admins}

	tasks, err := r.taskStats(ctx, now)
	if err != nil {
		return s, err
	}
	s.Tasks = models.TaskStats{
		Total: tasks.Total,
		ByStatus: models.StatusBuckets{
			Pending:    tasks.Pending,
			InProgress: tasks.InProgress,
			Completed:  tasks.Completed,
			Cancelled:  tasks.Cancelled,
		},
		ByPriority: models.PriorityBuckets{High: tasks.High, Medium: tasks.Medium, Low: tasks.Low},
		Overdue:    tasks.Overdue,
		DueSoon:    tasks.DueSoon,
	}

	if s.Categories.Total, s.Categories.WithTasks, err = r.groupStats(ctx, categoryTable); err != nil {
		return s, err
	}
	if s.Tags.Total, s.Tags.Used, err = r.groupStats(ctx, tagTable); err != nil {
		return s, err
	}
	return s, nil
}

func (r *StatsRepository) userStats(ctx context.Context) (userStatsRow, error) {
	var row userStatsRow
	u := r.table("users")
	sel := r.stmt().Select().From(u)
	sel.SelectExpr(entsql.ExprFunc(func(b *entsql.Builder) {
		b.WriteString("COUNT(*) AS total, ")
		sumWhen(b, "admins", func(b *entsql.Builder) { b.Ident(u.C("admin")) })
	}))
	if err := r.get(ctx, &row, sel); err != nil {
		return row, fmt.Errorf("count users: %w", err)
	}
	return row, nil
}

func (r *StatsRepository) taskStats(ctx context.Context, now time.Time) (taskStatsRow, error) {
	var row taskStatsRow
	t := r.table("tasks")
	status, priority, due := t.C("status"), t.C("priority"), t.C("due_date")
	from, to := models.DueSoonWindow(now)

	statusIs := func(s models.TaskStatus) func(*entsql.Builder) {
		return func(b *entsql.Builder) { b.Ident(status).WriteString(" = ").Arg(string(s)) }
	}
	notCompleted := func(b *entsql.Builder) {
		b.WriteString(" AND ").Ident(status).WriteString(" <> ").Arg(string(models.TaskStatusCompleted))
	}

	sel := r.stmt().Select().From(t)
	sel.SelectExpr(entsql.ExprFunc(func(b *entsql.Builder) {
		b.WriteString("COUNT(*) AS total")
		for _, s := range []struct {
			alias  string
			status models.TaskStatus
		}{
			{"pending", models.TaskStatusPending},
			{"in_progress", models.TaskStatusInProgress},
			{"completed", models.TaskStatusCompleted},
			{"cancelled", models.TaskStatusCancelled},
		} {
			b.WriteString(", ")
			sumWhen(b, s.alias, statusIs(s.status))
		}
		b.WriteString(", ")
		sumWhen(b, "high", func(b *entsql.Builder) {
			b.Ident(priority).WriteString(" >= ").Arg(models.HighPriorityThreshold)
		})
		b.WriteString(", ")
		sumWhen(b, "medium", func(b *entsql.Builder) {
			b.Ident(priority).WriteString(" = ").Arg(models.MediumPriority)
		})
		b.WriteString(", ")
		sumWhen(b, "low", func(b *entsql.Builder) {
			b.Ident(priority).WriteString(" < ").Arg(models.MediumPriority)
		})
		b.WriteString(", ")
		sumWhen(b, "overdue", func(b *entsql.Builder) {
			b.Ident(due).WriteString(" < ").Arg(timestamp(now))
			notCompleted(b)
		})
		b.WriteString(", ")
		sumWhen(b, "due_soon", func(b *entsql.Builder) {
			b.Ident(due).WriteString(" >= ").Arg(timestamp(from)).
				WriteString(" AND ").Ident(due).WriteString(" <= ").Arg(timestamp(to))
			notCompleted(b)
		})
	}))
	if err := r.get(ctx, &row, sel); err != nil {
		return row, fmt.Errorf("count tasks: %w", err)
	}
	return row, nil
}

// groupStats counts the rows of gt and how many of them tasks reference.
func (r *StatsRepository) groupStats(ctx context.Context, gt groupTable) (total, referenced int, err error) {
	g := r.table(gt.name)
	if err = r.get(ctx, &total, r.stmt().Select(entsql.Count("*")).From(g)); err != nil {
		return 0, 0, fmt.Errorf("count %s: %w", gt.name, err)
	}
	sel := r.stmt().Select(entsql.Count("*")).From(g).Where(entsql.Exists(gt.refs(r.builder, g)))
	if err = r.get(ctx, &referenced, sel); err != nil {
		return 0, 0, fmt.Errorf("count referenced %s: %w", gt.name, err)
	}
	return total, referenced, nil
}

// sumWhen writes "COALESCE(SUM(CASE WHEN <cond> THEN 1 ELSE 0 END), 0) AS alias".
// The COALESCE keeps empty tables at zero.
func sumWhen(b *entsql.Builder, alias string, cond func(*entsql.Builder)) {
	b.WriteString("COALESCE(SUM(CASE WHEN ")
	cond(b)
	b.WriteString(" THEN 1 ELSE 0 END), 0) AS ").WriteString(alias)
}
