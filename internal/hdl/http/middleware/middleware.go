package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/hdl"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
	metrics "github.com/JMURv/session-keeper/internal/observability/metrics/prometheus"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Validator interface {
	Validate(ctx context.Context, token string) (jwt.Claims, error)
}

type AuthOpts struct {
	// CheckAuthor rejects requests whose token subject differs from the Param path argument.
	CheckAuthor bool
	// Param defaults to "id".
	Param string
}

func Auth(v Validator, opts AuthOpts) func(http.Handler) http.Handler {
	param := opts.Param
	if param == "" {
		param = "id"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				token, ok := utils.BearerToken(r)
				if !ok {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrMissingToken)
					return
				}

				claims, err := v.Validate(r.Context(), token)
				if err != nil {
					switch {
					case errors.Is(err, jwt.ErrTokenMalformed),
						errors.Is(err, jwt.ErrTokenExpired),
						errors.Is(err, auth.ErrTokenRevoked):
						utils.ErrResponse(w, http.StatusUnauthorized, err)
					case errors.Is(err, repo.ErrStorageUnavailable):
						utils.ErrResponse(w, http.StatusServiceUnavailable, hdl.ErrStorageUnavailable)
					default:
						zap.L().Error("failed to validate token", zap.Error(err))
						utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
					}
					return
				}

				if opts.CheckAuthor {
					id, err := uuid.Parse(chi.URLParam(r, param))
					if err != nil || id != claims.UID {
						utils.ErrResponse(w, http.StatusForbidden, hdl.ErrForbidden)
						return
					}
				}

				ctx := context.WithValue(r.Context(), config.UidKey, claims.UID)
				ctx = context.WithValue(ctx, config.TokenKey, token)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// Device stores the client IP and User-Agent in the request context.
// Mount it after chi's RealIP so proxy headers are honored.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			ctx := context.WithValue(r.Context(), config.IpKey, ip)
			ctx = context.WithValue(ctx, config.UaKey, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewLoggingResponseWriter(w http.ResponseWriter) *LoggingResponseWriter {
	return &LoggingResponseWriter{w, http.StatusOK}
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			s := time.Now()
			lrw := NewLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)

			metrics.ObserveRequest(time.Since(s), lrw.statusCode, r.Method+" "+route(r))
		},
	)
}

func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				lrw := NewLoggingResponseWriter(w)
				logger.Debug(
					"-->",
					zap.String("method", r.Method),
					zap.String("remote", r.RemoteAddr),
				)

				next.ServeHTTP(lrw, r)

				logger.Info(
					"<--",
					zap.String("method", r.Method),
					zap.String("route", route(r)),
					zap.Int("status", lrw.statusCode),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				)
			},
		)
	}
}

func OT(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			span, ctx := opentracing.StartSpanFromContext(r.Context(), r.Method)
			defer span.Finish()

			lrw := NewLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r.WithContext(ctx))
			span.SetOperationName(fmt.Sprintf("%s %s", r.Method, route(r)))
			if lrw.statusCode >= http.StatusInternalServerError {
				span.SetTag(config.ErrorSpanTag, true)
			}
		},
	)
}

// route returns the matched chi pattern so path arguments such as tokens
// never reach logs, spans or metric labels.
func route(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "unmatched"
}
