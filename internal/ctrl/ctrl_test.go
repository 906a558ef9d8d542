package ctrl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stalled blocks every delivery until release is closed.
type stalled struct {
	release chan struct{}
	calls   atomic.Int32
}

func (s *stalled) Send(ctx context.Context, _, _, _ string) error {
	return s.wait(ctx)
}

func (s *stalled) Publish(ctx context.Context, _ *md.SecurityEvent) error {
	return s.wait(ctx)
}

func (s *stalled) wait(ctx context.Context) error {
	select {
	case <-s.release:
		s.calls.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func returnsWithin(t *testing.T, d time.Duration, fn func() error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(d):
		t.Fatal("call blocked on delivery")
	}
}

func TestController_RequestResetDoesNotWaitForMail(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockAuth := mocks.NewMockCore(ctrlMock)
	mockRepo := mocks.NewMockAppRepo(ctrlMock)
	mailer := &stalled{release: make(chan struct{})}

	conf := config.Config{}
	conf.Server.ResetURL = "https://app.example.com/reset"
	conf.Notify.Timeout = time.Minute
	ctrl := New(mockAuth, mockRepo, nil, mailer, nil, nil, conf)

	uid := uuid.New()
	mockAuth.EXPECT().VerifyRecaptcha(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.com").Return(&md.User{ID: uid, Email: "a@b.com"}, nil)
	mockAuth.EXPECT().NewResetToken(gomock.Any(), uid).Return("reset.token", nil)

	returnsWithin(
		t, time.Second, func() error {
			return ctrl.RequestReset(context.Background(), &dto.ResetRequest{Email: "a@b.com"})
		},
	)
	assert.Zero(t, mailer.calls.Load())

	close(mailer.release)
	ctrl.Wait()
	assert.EqualValues(t, 1, mailer.calls.Load())
}

func TestController_RegisterDoesNotWaitForBroker(t *testing.T) {
	ctrlMock := gomock.NewController(t)
	defer ctrlMock.Finish()

	mockAuth := mocks.NewMockCore(ctrlMock)
	mockRepo := mocks.NewMockAppRepo(ctrlMock)
	broker := &stalled{release: make(chan struct{})}

	conf := config.Config{}
	conf.Notify.Timeout = time.Minute
	ctrl := New(mockAuth, mockRepo, nil, nil, broker, nil, conf)

	mockAuth.EXPECT().Hash("password123").Return("hash", nil)
	mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(uuid.New(), nil)

	returnsWithin(
		t, time.Second, func() error {
			_, err := ctrl.Register(
				context.Background(), &dto.CreateUserRequest{Email: "a@b.com", Password: "password123"},
			)
			return err
		},
	)
	assert.Zero(t, broker.calls.Load())

	close(broker.release)
	ctrl.Wait()
	assert.EqualValues(t, 1, broker.calls.Load())
}

func TestController_DeliveryOutlivesRequestContext(t *testing.T) {
	mailer := &stalled{release: make(chan struct{})}
	conf := config.Config{}
	conf.Notify.Timeout = time.Minute
	ctrl := New(nil, nil, nil, mailer, nil, nil, conf)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl.notify(ctx, "test", "a@b.com", "subject", "body")
	cancel()

	close(mailer.release)
	ctrl.Wait()
	assert.EqualValues(t, 1, mailer.calls.Load())
}
