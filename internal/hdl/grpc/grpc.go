package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/JMURv/session-keeper/api/grpc/v1/gen"
	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/hdl/grpc/interceptors"
	metrics "github.com/JMURv/session-keeper/internal/observability/metrics/prometheus"
	"github.com/JMURv/session-keeper/internal/repo"
	pm "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	ot "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Validator interface {
	Validate(ctx context.Context, token string) (jwt.Claims, error)
}

type Handler struct {
	gen.UnimplementedValidatorServer
	srv  *grpc.Server
	hsrv *health.Server
	ctrl Validator
}

func New(name string, ctrl Validator) *Handler {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recovery(),
			interceptors.LogTraceMetrics(),
			metrics.SrvMetrics.UnaryServerInterceptor(
				pm.WithExemplarFromContext(metrics.Exemplar),
			),
		),
		grpc.ChainStreamInterceptor(
			metrics.SrvMetrics.StreamServerInterceptor(
				pm.WithExemplarFromContext(metrics.Exemplar),
			),
		),
	)

	h := &Handler{
		ctrl: ctrl,
		srv:  srv,
		hsrv: health.NewServer(),
	}

	gen.RegisterValidatorServer(srv, h)
	grpc_health_v1.RegisterHealthServer(srv, h.hsrv)
	reflection.Register(srv)
	metrics.SrvMetrics.InitializeMetrics(srv)

	h.hsrv.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	return h
}

func (h *Handler) Start(port int) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		zap.L().Fatal("failed to listen", zap.Error(err))
	}

	zap.L().Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
	if err = h.Serve(lis); err != nil {
		zap.L().Fatal("failed to serve", zap.Error(err))
	}
}

func (h *Handler) Serve(lis net.Listener) error {
	if err := h.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (h *Handler) Close() error {
	h.hsrv.Shutdown()
	h.srv.GracefulStop()
	return nil
}

// Validate reports token liveness. Unusable tokens yield false rather than an error.
func (h *Handler) Validate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	const op = "sessions.Validate.hdl"
	span, ctx := ot.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	_, err := h.ctrl.Validate(ctx, req.GetValue())
	switch {
	case err == nil:
		metrics.TokenValidated(true)
		return wrapperspb.Bool(true), nil
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenRevoked):
		metrics.TokenValidated(false)
		return wrapperspb.Bool(false), nil
	case errors.Is(err, repo.ErrStorageUnavailable):
		return nil, status.Error(codes.Unavailable, err.Error())
	default:
		zap.L().Error("failed to validate token", zap.String("op", op), zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
}
