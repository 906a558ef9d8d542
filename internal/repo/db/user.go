package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error) {
	const op = "users.GetUserByID.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.User{}
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.GetContext(ctx, res, userGetByIDQ, userID)
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

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*md.User, error) {
	const op = "users.GetUserByEmail.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.User{}
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.GetContext(ctx, res, userGetByEmailQ, email)
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

func (r *Repository) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (uuid.UUID, error) {
	const op = "users.CreateUser.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var id uuid.UUID
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.QueryRowxContext(
				ctx,
				userCreateQ,
				req.Email,
				req.Password,
				req.FullName,
				req.DateOfBirth,
				req.Address,
			).Scan(&id)
		},
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, repo.ErrAlreadyExists
		}
		zap.L().Debug("failed to create user", zap.String("op", op), zap.Error(err))
		return uuid.Nil, err
	}

	return id, nil
}

func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error {
	const op = "users.UpdateUser.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var affected int64
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			res, err := r.conn.ExecContext(ctx, userUpdateQ, req.FullName, req.DateOfBirth, req.Address, id)
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

// UpdatePassword stores a new password hash and revokes every live session of
// the user in the same transaction.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "users.UpdatePassword.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return r.withTx(
		ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
			res, err := tx.ExecContext(ctx, userUpdatePasswordQ, hash, id)
			if err != nil {
				return err
			}

			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}

			if affected == 0 {
				return repo.ErrNotFound
			}

			_, err = tx.ExecContext(ctx, sessionRevokeAllQ, id)
			return err
		},
	)
}
