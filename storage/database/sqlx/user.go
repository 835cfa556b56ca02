package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/user"
)

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const userColumns = "id, email, password_hash, role, created_at, updated_at"

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{baseRepository{exec: exec}}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		PasswordHash: string(usr.PasswordHash),
		Role:         usr.Role,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: []byte(row.PasswordHash),
		Role:         row.Role,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func (repo userRepository) EmailExists(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	var count int
	err := sqlx.GetContext(ctx, exe, &count, exe.Rebind("SELECT COUNT(*) FROM users WHERE email = ?"), email)
	if err != nil {
		return false, errors.Wrap(err, "counting users by email")
	}
	return count > 0, nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := "INSERT INTO users (" + userColumns + ") " +
		"VALUES (:id, :email, :password_hash, :role, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(usr)); err != nil {
		return user.User{}, trapWriteErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var (
		where string
		arg   string
	)
	switch {
	case filter.ID != "":
		where, arg = "id = ?", filter.ID
	case filter.Email != "":
		where, arg = "email = ?", filter.Email
	default:
		return user.User{}, user.ErrNotFound
	}

	exe := repo.getExec(exec)
	var row userRow
	err := sqlx.GetContext(ctx, exe, &row, exe.Rebind("SELECT "+userColumns+" FROM users WHERE "+where), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := "UPDATE users SET email = :email, password_hash = :password_hash, role = :role, updated_at = :updated_at " +
		"WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(usr))
	if err != nil {
		return user.User{}, trapWriteErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
