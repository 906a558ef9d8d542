package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/JMURv/session-keeper/api/grpc/v1/gen"
	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/JMURv/session-keeper/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "session-keeper"

func dial(t *testing.T, v Validator) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	h := New(serviceName, v)
	go func() {
		_ = h.Serve(lis)
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(
			func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			},
		),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(
		func() {
			_ = conn.Close()
			_ = h.Close()
		},
	)
	return conn
}

func TestHandler_Validate(t *testing.T) {
	const token = "header.payload.signature"
	mock := gomock.NewController(t)
	mctrl := mocks.NewMockAppCtrl(mock)
	cli := gen.NewValidatorClient(dial(t, mctrl))

	tests := []struct {
		name string
		err  error
		live bool
		code codes.Code
	}{
		{name: "Live", live: true, code: codes.OK},
		{name: "Revoked", err: auth.ErrTokenRevoked, code: codes.OK},
		{name: "Expired", err: jwt.ErrTokenExpired, code: codes.OK},
		{name: "Malformed", err: jwt.ErrTokenMalformed, code: codes.OK},
		{name: "StorageUnavailable", err: repo.ErrStorageUnavailable, code: codes.Unavailable},
		{name: "Unexpected", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				mctrl.EXPECT().Validate(gomock.Any(), token).Return(jwt.Claims{UID: uuid.New()}, tt.err)

				res, err := cli.Validate(context.Background(), wrapperspb.String(token))
				assert.Equal(t, tt.code, status.Code(err))
				if tt.code == codes.OK {
					assert.Equal(t, tt.live, res.GetValue())
				}
			},
		)
	}
}

func TestHandler_ValidateEmptyToken(t *testing.T) {
	mock := gomock.NewController(t)
	cli := gen.NewValidatorClient(dial(t, mocks.NewMockAppCtrl(mock)))

	_, err := cli.Validate(context.Background(), wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHandler_Health(t *testing.T) {
	mock := gomock.NewController(t)
	conn := dial(t, mocks.NewMockAppCtrl(mock))

	res, err := grpc_health_v1.NewHealthClient(conn).Check(
		context.Background(), &grpc_health_v1.HealthCheckRequest{Service: serviceName},
	)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestHandler_RegistersValidatorService(t *testing.T) {
	mock := gomock.NewController(t)
	h := New(serviceName, mocks.NewMockAppCtrl(mock))
	t.Cleanup(
		func() {
			_ = h.Close()
		},
	)

	info, ok := h.srv.GetServiceInfo()[gen.Validator_ServiceDesc.ServiceName]
	require.True(t, ok)
	require.Len(t, info.Methods, 1)
	assert.Equal(t, "Validate", info.Methods[0].Name)
	assert.Equal(t, "/sessions.v1.Validator/Validate", gen.Validator_Validate_FullMethodName)
}
