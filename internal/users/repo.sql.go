package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "avatar", "job", "role_id",
	"is_active", "is_confirmed", "login_count", "last_login_at", "last_login_ip",
	"deleted_at", "created_at", "updated_at",
}

var userReturning = "RETURNING " + strings.Join(userColumns, ", ")

// PostgresRepository provides PostgreSQL backed persistence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func liveUsers() sq.Eq {
	return sq.Eq{"deleted_at": nil}
}

func listUsersQuery(page shared.PageRequest) sq.SelectBuilder {
	page = page.Normalize()
	return db.SQL.Select(userColumns...).
		From("users").
		Where(liveUsers()).
		OrderBy("id").
		Limit(uint64(page.ResultsPerPage)).
		Offset(uint64(page.Offset()))
}

// List returns one page of users that are not soft-deleted.
func (r *PostgresRepository) List(ctx context.Context, page shared.PageRequest) ([]User, int, error) {
	var (
		users []User
		total int
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if total, err = db.Count(ctx, tx, db.SQL.Select("COUNT(*)").From("users").Where(liveUsers())); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		users, err = r.query(ctx, tx, listUsersQuery(page))
		return err
	}, db.SnapshotTx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// All returns every user that is not soft-deleted.
func (r *PostgresRepository) All(ctx context.Context) ([]User, error) {
	return r.query(ctx, r.pool, db.SQL.Select(userColumns...).From("users").Where(liveUsers()).OrderBy("id"))
}

// Get fetches a user by ID, including soft-deleted users.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (User, error) {
	query, args, err := db.SQL.Select(userColumns...).From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return User{}, err
	}
	return r.one(ctx, r.pool, id, query, args)
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, in UserInput) (User, error) {
	query, args, err := db.SQL.Insert("users").
		Columns("first_name", "last_name", "email", "avatar", "job", "role_id", "is_active", "is_confirmed").
		Values(in.FirstName, in.LastName, in.Email, in.Avatar, in.Job, in.RoleID, in.Active(), in.IsConfirmed).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return User{}, err
	}
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	return u, r.writeErr(err, in)
}

// Update replaces the writable attributes of a live user.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in UserInput) (User, error) {
	stmt := r.update(id).
		Set("first_name", in.FirstName).
		Set("last_name", in.LastName).
		Set("email", in.Email).
		Set("avatar", in.Avatar).
		Set("job", in.Job).
		Set("role_id", in.RoleID).
		Set("is_active", in.Active()).
		Set("is_confirmed", in.IsConfirmed)
	u, err := r.exec(ctx, r.pool, id, stmt)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return User{}, r.writeErr(err, in)
	}
	return u, err
}

// SetActive flips the active flag of a live user.
func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	return r.exec(ctx, r.pool, id, r.update(id).Set("is_active", active))
}

// SetRole assigns or clears the role of a live user. The role row is share-locked
// so a concurrent delete cannot slip between the check and the update.
func (r *PostgresRepository) SetRole(ctx context.Context, id int64, roleID *int64) (User, error) {
	var out User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if roleID != nil {
			query, args, err := db.SQL.Select("id").From("roles").Where(sq.Eq{"id": *roleID}).Suffix("FOR SHARE").ToSql()
			if err != nil {
				return err
			}
			var found int64
			if err := tx.QueryRow(ctx, query, args...).Scan(&found); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("role %d: %w", *roleID, shared.ErrUnknownRole)
				}
				return err
			}
		}
		u, err := r.exec(ctx, tx, id, r.update(id).Set("role_id", roleID))
		out = u
		return err
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

// RecordLogin bumps the login counter and stores the last login metadata.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id int64, ip string, at time.Time) (User, error) {
	stmt := r.update(id).
		Set("login_count", sq.Expr("login_count + 1")).
		Set("last_login_at", at).
		Set("last_login_ip", ip)
	return r.exec(ctx, r.pool, id, stmt)
}

// SoftDelete marks a live user as deleted.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	_, err := r.exec(ctx, r.pool, id, r.update(id).Set("deleted_at", at).Set("is_active", false))
	return err
}

// ClearRole unassigns roleID from every user holding it.
func (r *PostgresRepository) ClearRole(ctx context.Context, roleID int64) (int, error) {
	query, args, err := db.SQL.Update("users").
		Set("role_id", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) update(id int64) sq.UpdateBuilder {
	return db.SQL.Update("users").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Where(liveUsers()).
		Suffix(userReturning)
}

func (r *PostgresRepository) exec(ctx context.Context, q db.Querier, id int64, stmt sq.UpdateBuilder) (User, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return User{}, err
	}
	return r.one(ctx, q, id, query, args)
}

func (r *PostgresRepository) one(ctx context.Context, q db.Querier, id int64, query string, args []any) (User, error) {
	u, err := scanUser(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return u, err
}

func (r *PostgresRepository) writeErr(err error, in UserInput) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return fmt.Errorf("email %q: %w", in.Email, shared.ErrDuplicate)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("role %v: %w", in.RoleID, shared.ErrUnknownRole)
	}
	return err
}

func (r *PostgresRepository) query(ctx context.Context, q db.Querier, stmt sq.SelectBuilder) ([]User, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u      User
		roleID *int64
		ip     *string
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Avatar, &u.Job, &roleID,
		&u.IsActive, &u.IsConfirmed, &u.LoginCount, &u.LastLoginAt, &ip,
		&u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	u.Role = roleRef(roleID)
	if ip != nil {
		u.LastLoginIP = *ip
	}
	return u, nil
}
