package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	query, args, err := psql().
		Insert(userTableName).
		Columns("username", "password_hash").
		Values(user.Username, user.PasswordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user-by-username query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("fetch user by username: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) ByID(ctx context.Context, id int64) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user-by-id query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}

	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
