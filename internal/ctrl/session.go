package ctrl

import (
	"context"
	"errors"
	"fmt"
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

type sessionCtrl interface {
	Authenticate(ctx context.Context, d *dto.DeviceRequest, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ListSessions(ctx context.Context, uid uuid.UUID) ([]md.Session, error)
	RevokeSession(ctx context.Context, uid, id uuid.UUID) error
	LogoutAll(ctx context.Context, uid uuid.UUID) error
	IsLive(ctx context.Context, token string) (bool, error)
	Validate(ctx context.Context, token string) (jwt.Claims, error)
}

type sessionRepo interface {
	CreateSession(ctx context.Context, s *md.Session) error
	ListSessions(ctx context.Context, uid uuid.UUID) ([]md.Session, error)
	RevokeSession(ctx context.Context, uid, id uuid.UUID) error
	RevokeAllSessions(ctx context.Context, uid uuid.UUID) error
	IsSessionLive(ctx context.Context, token string) (bool, error)
}

const loginAlertSubject = "New sign-in to your account"

// Authenticate verifies credentials, mints a session token and records the
// device it was issued to. Unknown email and wrong password are
// indistinguishable to the caller.
func (c *Controller) Authenticate(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.LoginRequest,
) (*dto.LoginResponse, error) {
	const op = "sessions.Authenticate.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if ok, err := c.au.VerifyRecaptcha(ctx, req.Token, captcha.PassAuth); err != nil || !ok {
		zap.L().Debug("captcha rejected", zap.String("op", op), zap.Error(err))
		return nil, ErrCaptchaFailed
	}

	u, err := c.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if err = c.au.ComparePasswords([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	token, err := c.au.NewSessionToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	s := auth.GenerateDevice(u.ID, token, d)
	if err = c.repo.CreateSession(ctx, s); err != nil {
		return nil, err
	}

	zap.L().Info(
		"session created",
		zap.String("op", op),
		zap.String("uid", u.ID.String()),
		zap.String("device", s.Name),
	)

	if c.loginAlerts {
		c.notify(
			ctx, op, u.Email, loginAlertSubject, fmt.Sprintf(
				"A new sign-in from %s (%s) at %s.\nIf this was not you, change your password and sign out of all devices.",
				s.Name,
				s.IP,
				s.CreatedAt.UTC().Format(time.RFC1123),
			),
		)
	}

	sid := s.ID
	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventSessionCreated, UserID: u.ID, SessionID: &sid, IP: s.IP})

	return &dto.LoginResponse{
		UserID: u.ID,
		Token:  token,
	}, nil
}

func (c *Controller) ListSessions(ctx context.Context, uid uuid.UUID) ([]md.Session, error) {
	const op = "sessions.ListSessions.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return c.repo.ListSessions(ctx, uid)
}

func (c *Controller) RevokeSession(ctx context.Context, uid, id uuid.UUID) error {
	const op = "sessions.RevokeSession.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.repo.RevokeSession(ctx, uid, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventSessionRevoked, UserID: uid, SessionID: &id})
	return nil
}

func (c *Controller) LogoutAll(ctx context.Context, uid uuid.UUID) error {
	const op = "sessions.LogoutAll.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := c.repo.RevokeAllSessions(ctx, uid); err != nil {
		return err
	}

	c.publish(ctx, op, &md.SecurityEvent{Type: md.EventSessionsRevokedAll, UserID: uid})
	return nil
}

// IsLive reports whether token belongs to a non-revoked session record.
// It reads storage directly on every call.
func (c *Controller) IsLive(ctx context.Context, token string) (bool, error) {
	const op = "sessions.IsLive.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return c.repo.IsSessionLive(ctx, token)
}

// Validate returns the claims of a usable session token: authentic, unexpired
// and backed by a live session record.
func (c *Controller) Validate(ctx context.Context, token string) (jwt.Claims, error) {
	const op = "sessions.Validate.ctrl"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	claims, err := c.au.ParseSessionClaims(ctx, token)
	if err != nil {
		return jwt.Claims{}, err
	}

	live, err := c.IsLive(ctx, token)
	if err != nil {
		return jwt.Claims{}, err
	}

	if !live {
		zap.L().Debug("session is not live", zap.String("op", op), zap.String("uid", claims.UID.String()))
		return jwt.Claims{}, auth.ErrTokenRevoked
	}

	return claims, nil
}
