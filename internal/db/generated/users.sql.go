package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, email, password_hash, role, email_verified, first_name, last_name, phone, city, handicap, status, paid_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Role,
		&i.EmailVerified,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&i.City,
		&i.Handicap,
		&i.Status,
		&i.PaidAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :execresult
INSERT INTO users (email, password_hash, role, first_name, last_name, phone, city, handicap, status)
VALUES (LOWER(?), ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	Email        string
	PasswordHash sql.NullString
	Role         string
	FirstName    string
	LastName     string
	Phone        sql.NullString
	City         sql.NullString
	Handicap     sql.NullFloat64
	Status       string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	result, err := q.db.ExecContext(ctx, createUser,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.FirstName,
		arg.LastName,
		arg.Phone,
		arg.City,
		arg.Handicap,
		arg.Status,
	)
	if err != nil {
		return User{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	return scanUser(row)
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = LOWER(?)`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	return scanUser(row)
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markUserEmailVerified = `-- name: MarkUserEmailVerified :execrows
UPDATE users SET email_verified = ?, updated_at = CURRENT_TIMESTAMP WHERE email = LOWER(?)`

type MarkUserEmailVerifiedParams struct {
	VerifiedAt time.Time
	Email      string
}

func (q *Queries) MarkUserEmailVerified(ctx context.Context, arg MarkUserEmailVerifiedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markUserEmailVerified, arg.VerifiedAt, arg.Email)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const activateUserPayment = `-- name: ActivateUserPayment :execrows
UPDATE users SET status = 'ACTIVE', paid_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type ActivateUserPaymentParams struct {
	PaidAt time.Time
	ID     int64
}

func (q *Queries) ActivateUserPayment(ctx context.Context, arg ActivateUserPaymentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, activateUserPayment, arg.PaidAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateUserRole = `-- name: UpdateUserRole :execrows
UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type UpdateUserRoleParams struct {
	Role string
	ID   int64
}

func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserRole, arg.Role, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countUsers = `-- name: CountUsers :one
SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}
