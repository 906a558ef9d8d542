package db

import (
	"context"
	"database/sql"
	"errors"

	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

func (r *Repository) CreateSession(ctx context.Context, s *md.Session) error {
	const op = "sessions.CreateSession.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.QueryRowxContext(
				ctx,
				sessionCreateQ,
				s.UserID,
				s.Name,
				s.DeviceType,
				s.OS,
				s.Browser,
				s.UA,
				s.IP,
				s.Token,
			).Scan(&s.ID, &s.CreatedAt)
		},
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrAlreadyExists
		}
		return err
	}

	s.IsValid = true
	return nil
}

func (r *Repository) ListSessions(ctx context.Context, uid uuid.UUID) ([]md.Session, error) {
	const op = "sessions.ListSessions.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := make([]md.Session, 0)
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			res = res[:0]
			return r.conn.SelectContext(ctx, &res, sessionListQ, uid)
		},
	)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repository) RevokeSession(ctx context.Context, uid, id uuid.UUID) error {
	const op = "sessions.RevokeSession.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var affected int64
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			res, err := r.conn.ExecContext(ctx, sessionRevokeQ, id, uid)
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

func (r *Repository) RevokeAllSessions(ctx context.Context, uid uuid.UUID) error {
	const op = "sessions.RevokeAllSessions.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return r.exec(
		ctx, op, func(ctx context.Context) error {
			_, err := r.conn.ExecContext(ctx, sessionRevokeAllQ, uid)
			return err
		},
	)
}

func (r *Repository) IsSessionLive(ctx context.Context, token string) (bool, error) {
	const op = "sessions.IsSessionLive.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var live bool
	err := r.exec(
		ctx, op, func(ctx context.Context) error {
			return r.conn.QueryRowxContext(ctx, sessionIsLiveQ, token).Scan(&live)
		},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return live, nil
}
