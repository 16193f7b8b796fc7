package rbac

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

var permissionColumns = []string{
	"id", "role_id", "main_module", "module_name",
	"view_access", "create_access", "update_access", "delete_access",
}

const permissionReturning = "RETURNING id, role_id, main_module, module_name, view_access, create_access, update_access, delete_access"

// PostgresRepository provides PostgreSQL backed persistence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func applyFilter(stmt sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.RoleID != nil {
		stmt = stmt.Where(sq.Eq{"role_id": *filter.RoleID})
	}
	return stmt
}

func listPermissionsQuery(filter Filter, page shared.PageRequest) sq.SelectBuilder {
	page = page.Normalize()
	return applyFilter(db.SQL.Select(permissionColumns...).From("role_permissions"), filter).
		OrderBy("id").
		Limit(uint64(page.ResultsPerPage)).
		Offset(uint64(page.Offset()))
}

// List returns one page of permissions passing the filter and the filtered total.
func (r *PostgresRepository) List(ctx context.Context, filter Filter, page shared.PageRequest) ([]RolePermission, int, error) {
	var (
		perms []RolePermission
		total int
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if total, err = db.Count(ctx, tx, applyFilter(db.SQL.Select("COUNT(*)").From("role_permissions"), filter)); err != nil {
			return fmt.Errorf("count role permissions: %w", err)
		}
		perms, err = r.query(ctx, tx, listPermissionsQuery(filter, page))
		return err
	}, db.SnapshotTx)
	if err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

// All returns every permission passing the filter.
func (r *PostgresRepository) All(ctx context.Context, filter Filter) ([]RolePermission, error) {
	return r.query(ctx, r.pool, applyFilter(db.SQL.Select(permissionColumns...).From("role_permissions"), filter).OrderBy("id"))
}

// Get fetches a permission by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (RolePermission, error) {
	query, args, err := db.SQL.Select(permissionColumns...).From("role_permissions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return RolePermission{}, err
	}
	return r.one(ctx, id, query, args)
}

// Create inserts a permission.
func (r *PostgresRepository) Create(ctx context.Context, in PermissionInput) (RolePermission, error) {
	query, args, err := db.SQL.Insert("role_permissions").
		Columns(permissionColumns[1:]...).
		Values(in.RoleID, in.MainModule, in.ModuleName, in.ViewAccess, in.CreateAccess, in.UpdateAccess, in.DeleteAccess).
		Suffix(permissionReturning).
		ToSql()
	if err != nil {
		return RolePermission{}, err
	}
	p, err := scanPermission(r.pool.QueryRow(ctx, query, args...))
	if db.IsForeignKeyViolation(err) {
		return RolePermission{}, fmt.Errorf("role %d: %w", in.RoleID, shared.ErrUnknownRole)
	}
	return p, err
}

// Update replaces a permission.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in PermissionInput) (RolePermission, error) {
	query, args, err := db.SQL.Update("role_permissions").
		SetMap(map[string]any{
			"role_id":       in.RoleID,
			"main_module":   in.MainModule,
			"module_name":   in.ModuleName,
			"view_access":   in.ViewAccess,
			"create_access": in.CreateAccess,
			"update_access": in.UpdateAccess,
			"delete_access": in.DeleteAccess,
		}).
		Where(sq.Eq{"id": id}).
		Suffix(permissionReturning).
		ToSql()
	if err != nil {
		return RolePermission{}, err
	}
	p, err := r.one(ctx, id, query, args)
	if db.IsForeignKeyViolation(err) {
		return RolePermission{}, fmt.Errorf("role %d: %w", in.RoleID, shared.ErrUnknownRole)
	}
	return p, err
}

// Delete removes a permission.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.delete(ctx, sq.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("role permission %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// DeleteByRole removes every permission of a role.
func (r *PostgresRepository) DeleteByRole(ctx context.Context, roleID int64) (int, error) {
	return r.delete(ctx, sq.Eq{"role_id": roleID})
}

func (r *PostgresRepository) delete(ctx context.Context, where sq.Eq) (int, error) {
	query, args, err := db.SQL.Delete("role_permissions").Where(where).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) one(ctx context.Context, id int64, query string, args []any) (RolePermission, error) {
	p, err := scanPermission(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return RolePermission{}, fmt.Errorf("role permission %d: %w", id, shared.ErrNotFound)
	}
	return p, err
}

func (r *PostgresRepository) query(ctx context.Context, q db.Querier, stmt sq.SelectBuilder) ([]RolePermission, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := make([]RolePermission, 0)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

func scanPermission(row pgx.Row) (RolePermission, error) {
	var p RolePermission
	err := row.Scan(&p.ID, &p.RoleID, &p.MainModule, &p.ModuleName,
		&p.ViewAccess, &p.CreateAccess, &p.UpdateAccess, &p.DeleteAccess)
	return p, err
}
