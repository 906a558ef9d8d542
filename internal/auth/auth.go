package auth

import (
	"context"
	"time"

	"github.com/JMURv/session-keeper/internal/auth/captcha"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=../../tests/mocks/mock_auth.go -package=mocks

type Core interface {
	Hash(pswd string) (string, error)
	ComparePasswords(hashed, pswd []byte) error
	NewSessionToken(ctx context.Context, uid uuid.UUID) (string, error)
	NewResetToken(ctx context.Context, uid uuid.UUID) (string, error)
	ParseSessionClaims(ctx context.Context, token string) (jwt.Claims, error)
	ParseResetClaims(ctx context.Context, token string) (jwt.Claims, error)
	VerifyRecaptcha(ctx context.Context, token string, action captcha.Actions) (bool, error)
}

type Auth struct {
	jwt        jwt.Port
	captcha    captcha.Port
	cost       int
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func New(conf config.Config) *Auth {
	cost := conf.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	sessionTTL := conf.Auth.JWT.SessionTTL
	if sessionTTL == 0 {
		sessionTTL = config.SessionTokenDuration
	}

	resetTTL := conf.Auth.JWT.ResetTTL
	if resetTTL == 0 {
		resetTTL = config.ResetTokenDuration
	}

	return &Auth{
		jwt:        jwt.New(conf),
		captcha:    captcha.New(conf),
		cost:       cost,
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

func (a *Auth) Hash(pswd string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pswd), a.cost)
	if err != nil {
		zap.L().Error("failed to hash password", zap.Error(err))
		return "", err
	}
	return string(bytes), nil
}

func (a *Auth) ComparePasswords(hashed, pswd []byte) error {
	if err := bcrypt.CompareHashAndPassword(hashed, pswd); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *Auth) NewSessionToken(ctx context.Context, uid uuid.UUID) (string, error) {
	const op = "auth.NewSessionToken.core"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return a.jwt.NewToken(ctx, uid, jwt.PurposeSession, a.sessionTTL)
}

func (a *Auth) NewResetToken(ctx context.Context, uid uuid.UUID) (string, error) {
	const op = "auth.NewResetToken.core"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	return a.jwt.NewToken(ctx, uid, jwt.PurposeReset, a.resetTTL)
}

func (a *Auth) ParseSessionClaims(ctx context.Context, token string) (jwt.Claims, error) {
	return a.jwt.ParseClaims(ctx, token, jwt.PurposeSession)
}

func (a *Auth) ParseResetClaims(ctx context.Context, token string) (jwt.Claims, error) {
	return a.jwt.ParseClaims(ctx, token, jwt.PurposeReset)
}

func (a *Auth) VerifyRecaptcha(ctx context.Context, token string, action captcha.Actions) (bool, error) {
	return a.captcha.VerifyRecaptcha(ctx, token, action)
}
