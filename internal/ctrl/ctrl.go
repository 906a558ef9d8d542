package ctrl

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/config"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/vault"
	"go.uber.org/zap"
)

//go:generate mockgen -source=ctrl.go -destination=../../tests/mocks/mock_ctrl.go -package=mocks

type AppRepo interface {
	userRepo
	sessionRepo
	accountRepo
}

type AppCtrl interface {
	userCtrl
	sessionCtrl
	passwordCtrl
	accountCtrl
}

type CacheService interface {
	io.Closer
	GetToStruct(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, t time.Duration, key string, val any)
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string)
	InvalidateKeysByPattern(ctx context.Context, pattern string)
}

// Notifier delivers a single plain-text message. Implementations must honor ctx.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e *md.SecurityEvent) error
}

type Controller struct {
	au       auth.Core
	repo     AppRepo
	cache    CacheService
	notifier Notifier
	events   EventPublisher
	vault    vault.Port

	resetURL      string
	notifyTimeout time.Duration
	loginAlerts   bool

	bg sync.WaitGroup
}

func New(
	au auth.Core,
	repo AppRepo,
	cache CacheService,
	notifier Notifier,
	events EventPublisher,
	vlt vault.Port,
	conf config.Config,
) *Controller {
	timeout := conf.Notify.Timeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	return &Controller{
		au:            au,
		repo:          repo,
		cache:         cache,
		notifier:      notifier,
		events:        events,
		vault:         vlt,
		resetURL:      conf.Server.ResetURL,
		notifyTimeout: timeout,
		loginAlerts:   conf.Notify.LoginAlerts,
	}
}

const defaultNotifyTimeout = 10 * time.Second

// Wait blocks until every notification and event dispatched so far has been
// delivered or has failed.
func (c *Controller) Wait() {
	c.bg.Wait()
}

// notify sends mail in the background on a context detached from the caller's
// cancellation but bounded by notifyTimeout. Failures are logged and swallowed.
func (c *Controller) notify(ctx context.Context, op, to, subject, body string) {
	if c.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyTimeout)
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		defer cancel()

		if err := c.notifier.Send(ctx, to, subject, body); err != nil {
			zap.L().Warn(
				ErrNotificationFailure.Error(),
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}()
}

func (c *Controller) publish(ctx context.Context, op string, e *md.SecurityEvent) {
	if c.events == nil {
		return
	}

	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyTimeout)
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		defer cancel()

		if err := c.events.Publish(ctx, e); err != nil {
			zap.L().Warn(
				"failed to publish security event",
				zap.String("op", op),
				zap.String("type", e.Type),
				zap.Error(err),
			)
		}
	}()
}
