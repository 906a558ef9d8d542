package ctrl

import (
	"context"
	"errors"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type accountCtrl interface {
	CreateAccount(ctx context.Context, uid uuid.UUID, req *dto.CreateAccountRequest) (*dto.CreateAccountResponse, error)
	ListAccounts(ctx context.Context, uid uuid.UUID) ([]md.Account, error)
	UpdateAccount(ctx context.Context, uid, id uuid.UUID, req *dto.UpdateAccountRequest) error
	DeleteAccount(ctx context.Context, uid, id uuid.UUID) error
	RevealAccount(ctx context.Context, uid, id uuid.UUID) (*dto.RevealAccountResponse, error)
}

type accountRepo interface {
	CreateAccount(ctx context.Context, uid uuid.UUID, req *dto.CreateAccountRequest) (uuid.UUID, error)
	ListAccounts(ctx context.Context, uid uuid.UUID) ([]md.Account, error)
	GetAccount(ctx context.Context, uid, id uuid.UUID) (*md.Account, error)
	UpdateAccount(ctx context.Context, uid, id uuid.UUID, req *dto.UpdateAccountRequest) error
	DeleteAccount(ctx context.Context, uid, id uuid.UUID) error
}

func (c *Controller) CreateAccount(
	ctx context.Context,
	uid uuid.UUID,
	req *dto.CreateAccountRequest,
) (*dto.CreateAccountResponse, error) {
	const op = "accounts.CreateAccount.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	secret, err := c.vault.Encrypt(req.Secret)
	if err != nil {
		zap.L().Error("failed to encrypt secret", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	id, err := c.repo.CreateAccount(
		ctx, uid, &dto.CreateAccountRequest{
			AccountType: req.AccountType,
			Email:       req.Email,
			Secret:      secret,
		},
	)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &dto.CreateAccountResponse{ID: id}, nil
}

func (c *Controller) ListAccounts(ctx context.Context, uid uuid.UUID) ([]md.Account, error) {
	const op = "accounts.ListAccounts.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return c.repo.ListAccounts(ctx, uid)
}

func (c *Controller) UpdateAccount(ctx context.Context, uid, id uuid.UUID, req *dto.UpdateAccountRequest) error {
	const op = "accounts.UpdateAccount.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	upd := &dto.UpdateAccountRequest{
		AccountType: req.AccountType,
		Email:       req.Email,
	}
	if req.Secret != "" {
		secret, err := c.vault.Encrypt(req.Secret)
		if err != nil {
			zap.L().Error("failed to encrypt secret", zap.String("op", op), zap.Error(err))
			return err
		}
		upd.Secret = secret
	}

	if err := c.repo.UpdateAccount(ctx, uid, id, upd); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (c *Controller) DeleteAccount(ctx context.Context, uid, id uuid.UUID) error {
	const op = "accounts.DeleteAccount.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.repo.DeleteAccount(ctx, uid, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (c *Controller) RevealAccount(ctx context.Context, uid, id uuid.UUID) (*dto.RevealAccountResponse, error) {
	const op = "accounts.RevealAccount.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	a, err := c.repo.GetAccount(ctx, uid, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	plain, err := c.vault.Decrypt(a.Secret)
	if err != nil {
		zap.L().Error("failed to decrypt secret", zap.String("op", op), zap.String("account", id.String()), zap.Error(err))
		return nil, err
	}

	return &dto.RevealAccountResponse{Secret: plain}, nil
}
