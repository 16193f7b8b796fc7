package roles

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

var roleColumns = []string{"id", "name", "is_active", "created_at", "updated_at"}

// PostgresRepository provides PostgreSQL backed persistence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func listRolesQuery(page shared.PageRequest) sq.SelectBuilder {
	page = page.Normalize()
	return db.SQL.Select(roleColumns...).
		From("roles").
		OrderBy("id").
		Limit(uint64(page.ResultsPerPage)).
		Offset(uint64(page.Offset()))
}

// List returns one page of roles and the total count.
func (r *PostgresRepository) List(ctx context.Context, page shared.PageRequest) ([]Role, int, error) {
	var (
		roles []Role
		total int
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if total, err = db.Count(ctx, tx, db.SQL.Select("COUNT(*)").From("roles")); err != nil {
			return fmt.Errorf("count roles: %w", err)
		}
		roles, err = r.query(ctx, tx, listRolesQuery(page))
		return err
	}, db.SnapshotTx)
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// All returns every role.
func (r *PostgresRepository) All(ctx context.Context) ([]Role, error) {
	return r.query(ctx, r.pool, db.SQL.Select(roleColumns...).From("roles").OrderBy("id"))
}

// Get fetches a role by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (Role, error) {
	query, args, err := db.SQL.Select(roleColumns...).From("roles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Role{}, err
	}
	role, err := scanRole(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	return role, err
}

// Create inserts a new role.
func (r *PostgresRepository) Create(ctx context.Context, in RoleInput) (Role, error) {
	query, args, err := db.SQL.Insert("roles").
		Columns("name", "is_active").
		Values(in.Name, in.Active()).
		Suffix("RETURNING id, name, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return Role{}, err
	}
	role, err := scanRole(r.pool.QueryRow(ctx, query, args...))
	if db.IsUniqueViolation(err) {
		return Role{}, fmt.Errorf("role %q: %w", in.Name, shared.ErrDuplicate)
	}
	return role, err
}

// Update replaces the writable attributes of a role.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in RoleInput) (Role, error) {
	query, args, err := db.SQL.Update("roles").
		Set("name", in.Name).
		Set("is_active", in.Active()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return Role{}, err
	}
	role, err := scanRole(r.pool.QueryRow(ctx, query, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	case db.IsUniqueViolation(err):
		return Role{}, fmt.Errorf("role %q: %w", in.Name, shared.ErrDuplicate)
	}
	return role, err
}

// Delete removes a role by ID. Permissions cascade and users are unassigned by the schema.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := db.SQL.Delete("roles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, q db.Querier, stmt sq.SelectBuilder) ([]Role, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := make([]Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
