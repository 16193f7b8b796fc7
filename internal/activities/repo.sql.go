package activities

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
)

// PostgresRepository stores the log in the activities table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns every entry in insertion order.
func (r *PostgresRepository) List(ctx context.Context) ([]Activity, error) {
	query, args, err := db.SQL.Select("id", "action", "occurred_at", "user_label").
		From("activities").
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Action, &a.Timestamp, &a.User); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func appendActivityQuery(a Activity) sq.InsertBuilder {
	return db.SQL.Insert("activities").
		Columns("id", "action", "occurred_at", "user_label").
		Values(a.ID, a.Action, a.Timestamp, a.User).
		Suffix("ON CONFLICT (id) DO NOTHING")
}

// Append inserts a new entry. Replaying an entry with a known ID is a no-op.
func (r *PostgresRepository) Append(ctx context.Context, a Activity) error {
	query, args, err := appendActivityQuery(a).ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
