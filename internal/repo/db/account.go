package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *Repository) CreateAccount(ctx context.Context, uid uuid.UUID, req *dto.CreateAccountRequest) (uuid.UUID, error) {
	const op = "accounts.CreateAccount.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var id uuid.UUID
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.QueryRowxContext(ctx, accountCreateQ, uid, req.AccountType, req.Email, req.Secret).Scan(&id)
		},
	)
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *Repository) ListAccounts(ctx context.Context, uid uuid.UUID) ([]md.Account, error) {
	const op = "accounts.ListAccounts.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := make([]md.Account, 0)
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			res = res[:0]
			return r.conn.SelectContext(ctx, &res, accountListQ, uid)
		},
	)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repository) GetAccount(ctx context.Context, uid, id uuid.UUID) (*md.Account, error) {
	const op = "accounts.GetAccount.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.Account{}
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.GetContext(ctx, res, accountGetQ, id, uid)
		},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return res, nil
}

// UpdateAccount leaves the stored secret untouched when req.Secret is empty.
func (r *Repository) UpdateAccount(ctx context.Context, uid, id uuid.UUID, req *dto.UpdateAccountRequest) error {
	const op = "accounts.UpdateAccount.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	q := psql.Update("accounts").
		Set("account_type", req.AccountType).
		Set("email", req.Email).
		Set("last_modified", sq.Expr("NOW()"))
	if req.Secret != "" {
		q = q.Set("secret", req.Secret)
	}

	query, args, err := q.Where("id = ? AND user_id = ?", id, uid).ToSql()
	if err != nil {
		return err
	}

	var affected int64
	err = r.exec(
		ctx, op, func(ctx context.Context) error {
			res, err := r.conn.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}

			affected, err = res.RowsAffected()
			return err
		},
	)
	if err != nil {
		return err
	}

	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, uid, id uuid.UUID) error {
	const op = "accounts.DeleteAccount.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var affected int64
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			res, err := r.conn.ExecContext(ctx, accountDeleteQ, id, uid)
			if err != nil {
				return err
			}

			affected, err = res.RowsAffected()
			return err
		},
	)
	if err != nil {
		return err
	}

	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
