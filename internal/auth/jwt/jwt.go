package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

type Port interface {
	NewToken(ctx context.Context, uid uuid.UUID, purpose Purpose, d time.Duration) (string, error)
	ParseClaims(ctx context.Context, tokenStr string, purpose Purpose) (Claims, error)
}

type Core struct {
	secret []byte
	issuer string
}

type Claims struct {
	UID     uuid.UUID `json:"uid"`
	Purpose Purpose   `json:"purpose"`
	jwt.RegisteredClaims
}

func New(conf config.Config) *Core {
	return &Core{secret: []byte(conf.Auth.JWT.Secret), issuer: conf.Auth.JWT.Issuer}
}

// NewToken signs an HS256 token for uid. Every token carries a fresh jti, so
// two tokens minted in the same second never collide.
func (c *Core) NewToken(ctx context.Context, uid uuid.UUID, purpose Purpose, d time.Duration) (string, error) {
	const op = "auth.NewToken.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	now := time.Now()
	signed, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256, &Claims{
			UID:     uid,
			Purpose: purpose,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				ExpiresAt: jwt.NewNumericDate(now.Add(d)),
				IssuedAt:  jwt.NewNumericDate(now),
				Issuer:    c.issuer,
			},
		},
	).SignedString(c.secret)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			ErrWhileCreatingToken.Error(),
			zap.String("op", op),
			zap.Error(err),
		)

		return "", ErrWhileCreatingToken
	}

	return signed, nil
}

// ParseClaims verifies signature, issuer and expiry and checks the purpose
// claim. Claims are returned alongside ErrTokenExpired.
func (c *Core) ParseClaims(ctx context.Context, tokenStr string, purpose Purpose) (Claims, error) {
	const op = "auth.ParseClaims.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	claims := Claims{}
	_, err := jwt.ParseWithClaims(
		tokenStr, &claims, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, ErrUnexpectedSignMethod
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if onlyExpired(err) && claims.Purpose == purpose {
			zap.L().Debug("token expired", zap.String("op", op))
			return claims, ErrTokenExpired
		}

		zap.L().Debug("failed to parse claims", zap.String("op", op), zap.Error(err))
		return Claims{}, ErrTokenMalformed
	}

	if claims.Purpose != purpose || claims.UID == uuid.Nil {
		zap.L().Debug(
			"unexpected token purpose",
			zap.String("op", op),
			zap.String("want", string(purpose)),
			zap.String("got", string(claims.Purpose)),
		)
		return Claims{}, ErrTokenMalformed
	}

	return claims, nil
}

// onlyExpired reports whether expiry is the single validation failure.
// Signature is verified before claims, so an expired token is authentic.
func onlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}

	return !errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
		!errors.Is(err, jwt.ErrTokenNotValidYet) &&
		!errors.Is(err, jwt.ErrTokenUsedBeforeIssued) &&
		!errors.Is(err, jwt.ErrTokenSignatureInvalid)
}
