// internal/repository/store.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos struct {
	Users      *UserRepository
	Categories *CategoryRepository
	Tags       *TagRepository
	Tasks      *TaskRepository
	Stats      *StatsRepository
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sqlx.DB
	dialect string
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, dialect: db.DriverName()}
}

// Repos returns repositories that run outside a transaction.
func (s *Store) Repos() Repos {
	return newRepos(s.db, s.dialect)
}

// InTx runs fn inside a transaction and commits when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := fn(newRepos(tx, s.dialect)); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.GetContext(ctx, &one, "SELECT 1")
}

func newRepos(q queryer, d string) Repos {
	b := builder{q: q, dialect: d}
	return Repos{
		Users:      &UserRepository{b},
		Categories: &CategoryRepository{b},
		Tags:       &TagRepository{b},
		Tasks:      &TaskRepository{b},
		Stats:      &StatsRepository{b},
	}
}

// Helper function for transaction rollback
func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// IsNotFound reports a lookup that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports a unique constraint failure on either driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// builder renders ent SQL builders for one dialect and runs them.
type builder struct {
	q       queryer
	dialect string
}

func (b builder) stmt() *entsql.DialectBuilder {
	return entsql.Dialect(b.dialect)
}

func (b builder) table(name string) *entsql.SelectTable {
	return b.stmt().Table(name)
}

func (b builder) get(ctx context.Context, dest any, q entsql.Querier) error {
	query, args := q.Query()
	return b.q.GetContext(ctx, dest, query, args...)
}

func (b builder) selectAll(ctx context.Context, dest any, q entsql.Querier) error {
	query, args := q.Query()
	return b.q.SelectContext(ctx, dest, query, args...)
}

func (b builder) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	res, err := b.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// lock locks the selected rows until the transaction ends. An empty
// strength is no lock. SQLite has no row locks; its single connection
// already serializes writers.
func (b builder) lock(s *entsql.Selector, strength entsql.LockStrength) *entsql.Selector {
	if strength == "" || b.dialect != dialect.Postgres {
		return s
	}
	return s.For(strength)
}

// orderBy renders "<column> ASC|DESC" with the dialect's quoting.
func orderBy(column string, desc bool) entsql.Querier {
	return entsql.ExprFunc(func(b *entsql.Builder) {
		b.Ident(column).WriteString(direction(desc))
	})
}

// orderBySubquery renders "(<subquery>) ASC|DESC".
func orderBySubquery(sub entsql.Querier, desc bool) entsql.Querier {
	return entsql.ExprFunc(func(b *entsql.Builder) {
		b.Wrap(func(b *entsql.Builder) { b.Join(sub) })
		b.WriteString(direction(desc))
	})
}

// nullsLast sorts rows where column is NULL after all others, on any dialect.
func nullsLast(column string) entsql.Querier {
	return entsql.ExprFunc(func(b *entsql.Builder) {
		b.WriteString("CASE WHEN ").Ident(column).WriteString(" IS NULL THEN 1 ELSE 0 END")
	})
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

// timestamp normalizes times before they are stored or compared: UTC and
// microsecond precision, the finest both dialects keep.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
