package ctrl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/captcha"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type passwordCtrl interface {
	ChangePassword(ctx context.Context, uid uuid.UUID, req *dto.ChangePasswordRequest) error
	RequestReset(ctx context.Context, req *dto.ResetRequest) error
	CompleteReset(ctx context.Context, req *dto.CompleteResetRequest) error
}

const (
	resetJTIKey  = "reset-jti:%s"
	resetSubject = "Password reset"
)

// ChangePassword replaces the password and revokes every session of the user,
// including the one making the request.
func (c *Controller) ChangePassword(ctx context.Context, uid uuid.UUID, req *dto.ChangePasswordRequest) error {
	const op = "password.ChangePassword.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	u, err := c.repo.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err = c.au.ComparePasswords([]byte(u.Password), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrInvalidCredentials
	}

	if err = c.setPassword(ctx, uid, req.NewPassword); err != nil {
		return err
	}

	zap.L().Info("password changed", zap.String("op", op), zap.String("uid", uid.String()))
	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventPasswordChanged, UserID: uid})
	return nil
}

// RequestReset mails a reset link. An unknown email succeeds silently so the
// endpoint does not reveal which addresses are registered.
func (c *Controller) RequestReset(ctx context.Context, req *dto.ResetRequest) error {
	const op = "password.RequestReset.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if ok, err := c.au.VerifyRecaptcha(ctx, req.Token, captcha.PassReset); err != nil || !ok {
		zap.L().Debug("captcha rejected", zap.String("op", op), zap.Error(err))
		return ErrCaptchaFailed
	}

	u, err := c.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			zap.L().Debug("reset requested for unknown email", zap.String("op", op))
			return nil
		}
		return err
	}

	token, err := c.au.NewResetToken(ctx, u.ID)
	if err != nil {
		return err
	}

	c.notify(
		ctx, op, u.Email, resetSubject, fmt.Sprintf(
			"Use the link below to set a new password. It expires shortly and works once.\n%s",
			c.resetLink(token),
		),
	)
	return nil
}

// CompleteReset consumes a reset token and sets the new password. The token's
// jti is reserved before the update so a token can never be applied twice.
func (c *Controller) CompleteReset(ctx context.Context, req *dto.CompleteResetRequest) error {
	const op = "password.CompleteReset.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	claims, err := c.au.ParseResetClaims(ctx, req.ResetToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrLinkExpired
		}
		return jwt.ErrTokenMalformed
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl += time.Until(claims.ExpiresAt.Time)
	}

	key := fmt.Sprintf(resetJTIKey, claims.ID)
	fresh, err := c.cache.Reserve(ctx, key, ttl)
	if err != nil {
		return err
	}

	if !fresh {
		zap.L().Info("reset token reused", zap.String("op", op), zap.String("uid", claims.UID.String()))
		return jwt.ErrTokenMalformed
	}

	if err = c.setPassword(ctx, claims.UID, req.NewPassword); err != nil {
		// The password was not stored, so the link stays usable.
		c.cache.Delete(context.WithoutCancel(ctx), key)
		zap.L().Warn(
			"reset not applied, token released",
			zap.String("op", op),
			zap.String("uid", claims.UID.String()),
			zap.Error(err),
		)
		return err
	}

	zap.L().Info("password reset", zap.String("op", op), zap.String("uid", claims.UID.String()))
	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventPasswordReset, UserID: claims.UID})
	return nil
}

// setPassword hashes and stores pswd; storage revokes all sessions in the same transaction.
func (c *Controller) setPassword(ctx context.Context, uid uuid.UUID, pswd string) error {
	hash, err := c.au.Hash(pswd)
	if err != nil {
		return err
	}

	if err = c.repo.UpdatePassword(ctx, uid, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	c.cache.Delete(ctx, fmt.Sprintf(userCacheKey, uid))
	return nil
}

func (c *Controller) resetLink(token string) string {
	u, err := url.Parse(c.resetURL)
	if err != nil {
		return c.resetURL + "?token=" + url.QueryEscape(token)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
