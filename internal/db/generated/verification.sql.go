package dbgen

import (
	"context"
	"time"
)

const createVerificationToken = `-- name: CreateVerificationToken :exec
INSERT INTO verification_tokens (identifier, token, expires)
VALUES (LOWER(?), ?, ?)`

type CreateVerificationTokenParams struct {
	Identifier string
	Token      string
	Expires    time.Time
}

func (q *Queries) CreateVerificationToken(ctx context.Context, arg CreateVerificationTokenParams) error {
	_, err := q.db.ExecContext(ctx, createVerificationToken, arg.Identifier, arg.Token, arg.Expires)
	return err
}

const getVerificationToken = `-- name: GetVerificationToken :one
SELECT identifier, token, expires FROM verification_tokens WHERE token = ?`

func (q *Queries) GetVerificationToken(ctx context.Context, token string) (VerificationToken, error) {
	row := q.db.QueryRowContext(ctx, getVerificationToken, token)
	var i VerificationToken
	err := row.Scan(&i.Identifier, &i.Token, &i.Expires)
	return i, err
}

const deleteVerificationToken = `-- name: DeleteVerificationToken :execrows
DELETE FROM verification_tokens WHERE identifier = LOWER(?) AND token = ?`

type DeleteVerificationTokenParams struct {
	Identifier string
	Token      string
}

func (q *Queries) DeleteVerificationToken(ctx context.Context, arg DeleteVerificationTokenParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteVerificationToken, arg.Identifier, arg.Token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteVerificationTokensForIdentifier = `-- name: DeleteVerificationTokensForIdentifier :execrows
DELETE FROM verification_tokens WHERE identifier = LOWER(?)`

func (q *Queries) DeleteVerificationTokensForIdentifier(ctx context.Context, identifier string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteVerificationTokensForIdentifier, identifier)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpiredVerificationTokens = `-- name: DeleteExpiredVerificationTokens :execrows
DELETE FROM verification_tokens WHERE expires < ?`

func (q *Queries) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredVerificationTokens, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
