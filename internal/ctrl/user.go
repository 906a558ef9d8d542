package ctrl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type userCtrl interface {
	Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error
}

type userRepo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error)
	GetUserByEmail(ctx context.Context, email string) (*md.User, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (uuid.UUID, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

const userCacheKey = "user:%v"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Controller) Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	const op = "users.Register.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	hash, err := c.au.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	id, err := c.repo.CreateUser(
		ctx, &dto.CreateUserRequest{
			Email:       normalizeEmail(req.Email),
			Password:    hash,
			FullName:    req.FullName,
			DateOfBirth: req.DateOfBirth,
			Address:     req.Address,
		},
	)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	zap.L().Info("user registered", zap.String("op", op), zap.String("uid", id.String()))
	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventUserRegistered, UserID: id})

	return &dto.CreateUserResponse{
		ID: id,
	}, nil
}

func (c *Controller) GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error) {
	const op = "users.GetUserByID.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	cached := &md.User{}
	cacheKey := fmt.Sprintf(userCacheKey, userID)
	if err := c.cache.GetToStruct(ctx, cacheKey, cached); err == nil {
		return cached, nil
	}

	res, err := c.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	c.cache.Set(ctx, config.DefaultCacheTime, cacheKey, res)
	return res, nil
}

func (c *Controller) UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) error {
	const op = "users.UpdateUser.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	err := c.repo.UpdateUser(ctx, id, req)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	c.cache.Delete(ctx, fmt.Sprintf(userCacheKey, id))
	return nil
}
