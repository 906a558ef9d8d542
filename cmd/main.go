package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JMURv/session-keeper/internal/auth"
	memcache "github.com/JMURv/session-keeper/internal/cache/memory"
	"github.com/JMURv/session-keeper/internal/cache/redis"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/ctrl"
	"github.com/JMURv/session-keeper/internal/events/kafka"
	"github.com/JMURv/session-keeper/internal/hdl/grpc"
	"github.com/JMURv/session-keeper/internal/hdl/http"
	"github.com/JMURv/session-keeper/internal/notify/amqp"
	"github.com/JMURv/session-keeper/internal/observability/metrics/prometheus"
	"github.com/JMURv/session-keeper/internal/observability/tracing/jaeger"
	"github.com/JMURv/session-keeper/internal/repo/db"
	memrepo "github.com/JMURv/session-keeper/internal/repo/memory"
	"github.com/JMURv/session-keeper/internal/smtp"
	"github.com/JMURv/session-keeper/internal/vault"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type repository interface {
	ctrl.AppRepo
	Close(ctx context.Context) error
}

type notifier interface {
	ctrl.Notifier
	Close() error
}

type publisher interface {
	ctrl.EventPublisher
	Close() error
}

func mustRegisterLogger(mode string) {
	switch mode {
	case "prod":
		zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	case "dev":
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
}

func mustRepo(conf config.Config) repository {
	switch conf.DB.Driver {
	case "memory":
		zap.L().Warn("Using in-memory storage, data will not survive a restart")
		return memrepo.New()
	case "postgres":
		return db.New(conf)
	default:
		zap.L().Fatal("unknown DB_DRIVER", zap.String("driver", conf.DB.Driver))
		return nil
	}
}

func mustCache(conf config.Config) ctrl.CacheService {
	if conf.Redis.Addr == "" {
		zap.L().Warn("REDIS_ADDR is empty, using in-process cache")
		return memcache.New()
	}
	return redis.New(conf)
}

func mustNotifier(conf config.Config) notifier {
	switch conf.Notify.Driver {
	case "smtp":
		return smtp.New(conf)
	case "amqp":
		p, err := amqp.New(conf)
		if err != nil {
			zap.L().Fatal("failed to connect to broker", zap.Error(err))
		}
		return p
	case "none":
		return nil
	default:
		zap.L().Fatal("unknown NOTIFY_DRIVER", zap.String("driver", conf.Notify.Driver))
		return nil
	}
}

func mustPublisher(conf config.Config) publisher {
	if !conf.Kafka.Enabled {
		return kafka.Noop{}
	}
	return kafka.New(conf)
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Panic("panic occurred", zap.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.MustLoad()
	mustRegisterLogger(conf.Server.Mode)

	go prometheus.New(conf.Server.Port + 5).Start(ctx)
	go jaeger.Start(ctx, conf.ServiceName, conf.Jaeger)

	vlt, err := vault.New(conf)
	if err != nil {
		zap.L().Fatal("failed to init vault", zap.Error(err))
	}

	repo := mustRepo(conf)
	cache := mustCache(conf)
	mailer := mustNotifier(conf)
	events := mustPublisher(conf)

	svc := ctrl.New(auth.New(conf), repo, cache, mailer, events, vlt, conf)
	hh := http.New(svc)
	gh := grpc.New(conf.ServiceName, svc)

	zap.L().Info(
		fmt.Sprintf(
			"Starting server on %v://%v:%v",
			conf.Server.Scheme,
			conf.Server.Domain,
			conf.Server.Port,
		),
	)
	go hh.Start(conf.Server.Port)
	go gh.Start(conf.Server.GRPCPort)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c

	zap.L().Info("Shutting down gracefully...")
	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()

	if err = hh.Close(sctx); err != nil {
		zap.L().Warn("Error closing HTTP handler", zap.Error(err))
	}

	if err = gh.Close(); err != nil {
		zap.L().Warn("Error closing gRPC handler", zap.Error(err))
	}

	drained := make(chan struct{})
	go func() {
		svc.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-sctx.Done():
		zap.L().Warn("Pending notifications dropped on shutdown", zap.Error(sctx.Err()))
	}

	if err = cache.Close(); err != nil {
		zap.L().Warn("Failed to close cache", zap.Error(err))
	}

	if err = events.Close(); err != nil {
		zap.L().Warn("Failed to close event publisher", zap.Error(err))
	}

	if mailer != nil {
		if err = mailer.Close(); err != nil {
			zap.L().Warn("Failed to close notifier", zap.Error(err))
		}
	}

	if err = repo.Close(sctx); err != nil {
		zap.L().Warn("Error closing repository", zap.Error(err))
	}

	cancel()
	_ = zap.L().Sync()
}
