package http

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/cache/memory"
	"github.com/JMURv/session-keeper/internal/cache/redis"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/ctrl"
	hdl "github.com/JMURv/session-keeper/internal/hdl/http"
	"github.com/JMURv/session-keeper/internal/repo/db"
	memrepo "github.com/JMURv/session-keeper/internal/repo/memory"
	"github.com/JMURv/session-keeper/internal/vault"
	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const getTables = `
SELECT tablename
FROM pg_tables
WHERE schemaname = 'public' AND tablename <> 'schema_migrations';
`

const (
	pgUser     = "app_owner"
	pgPassword = "app_password"
	pgDB       = "app_db"
)

var rootDir = filepath.Join("..", "..", "..")

// containers are shared by every test in the package and terminated in TestMain.
var (
	stackOnce sync.Once
	stackErr  error
	pgC       testcontainers.Container
	redisC    testcontainers.Container
)

type mail struct {
	to, subject, body string
}

type outbox struct {
	mu    sync.Mutex
	sent  []mail
	flush func()
}

func (o *outbox) Send(_ context.Context, to, subject, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, mail{to: to, subject: subject, body: body})
	return nil
}

func (o *outbox) last() mail {
	if o.flush != nil {
		o.flush()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return mail{}
	}
	return o.sent[len(o.sent)-1]
}

type repository interface {
	ctrl.AppRepo
	Close(ctx context.Context) error
}

func getRedis(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	return testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		},
	)
}

func getPostgres(ctx context.Context) (testcontainers.Container, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17.4-alpine",
		WaitingFor:   wait.ForHealthCheck().WithStartupTimeout(time.Minute),
		ExposedPorts: []string{"5432/tcp"},
		ConfigModifier: func(conf *container.Config) {
			conf.Healthcheck = &container.HealthConfig{
				Test: []string{
					"CMD-SHELL", fmt.Sprintf("pg_isready -h 127.0.0.1 -U %s -d %s", pgUser, pgDB),
				},
				Interval:    time.Second,
				Timeout:     2 * time.Second,
				Retries:     30,
				StartPeriod: 2 * time.Second,
			}
		},
		Env: map[string]string{
			"POSTGRES_DB":       pgDB,
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
		},
	}

	return testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		},
	)
}

func startStack(ctx context.Context) error {
	var err error
	if redisC, err = getRedis(ctx); err != nil {
		return fmt.Errorf("redis container: %w", err)
	}
	zap.L().Info("Redis container is ready")

	if pgC, err = getPostgres(ctx); err != nil {
		return fmt.Errorf("postgres container: %w", err)
	}
	zap.L().Info("Postgres container is ready")
	return nil
}

func terminateStack() {
	for _, c := range []testcontainers.Container{redisC, pgC} {
		if c == nil {
			continue
		}
		if err := c.Terminate(context.Background()); err != nil {
			zap.L().Warn("Failed to terminate container", zap.Error(err))
		}
	}
}

// containerConfig points conf at the shared Postgres and Redis containers.
func containerConfig(t *testing.T, conf *config.Config) {
	t.Helper()
	ctx := context.Background()

	pgHost, err := pgC.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	conf.DB = config.DBConfig{
		Driver:   "postgres",
		Host:     pgHost,
		Port:     pgPort.Int(),
		User:     pgUser,
		Password: pgPassword,
		Database: pgDB,
		Timeout:  5 * time.Second,
		Backoff:  100 * time.Millisecond,
	}

	redisHost, err := redisC.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisC.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	conf.Redis = config.RedisConfig{
		Addr:    fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
		Timeout: 2 * time.Second,
	}
}

func truncateTables(t *testing.T, conf config.Config) {
	conn, err := sql.Open(
		"pgx", fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=disable",
			conf.DB.User,
			conf.DB.Password,
			conf.DB.Host,
			conf.DB.Port,
			conf.DB.Database,
		),
	)
	require.NoError(t, err)
	defer func(conn *sql.DB) {
		if err := conn.Close(); err != nil {
			zap.L().Debug("Error while closing connection", zap.Error(err))
		}
	}(conn)

	rows, err := conn.Query(getTables)
	require.NoError(t, err)
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Debug("Error while closing rows", zap.Error(err))
		}
	}(rows)

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())

	if len(tables) == 0 {
		return
	}

	_, err = conn.Exec(fmt.Sprintf("TRUNCATE TABLE %v RESTART IDENTITY CASCADE;", strings.Join(tables, ", ")))
	require.NoError(t, err)
}

// setupTestServer wires the full stack behind an httptest server. Storage and
// cache run in Postgres and Redis containers; with -short they are in-memory.
func setupTestServer(t *testing.T) (*httptest.Server, *outbox) {
	t.Helper()
	zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))

	conf := config.Config{Jaeger: &config.JaegerConfig{}}
	conf.ServiceName = "session-keeper"
	conf.Auth.JWT.Secret = "integration-secret"
	conf.Auth.JWT.Issuer = "session-keeper"
	conf.Auth.BcryptCost = bcrypt.MinCost
	conf.Vault.Secret = "integration-vault"
	conf.Vault.Salt = "integration-salt"
	conf.Server.ResetURL = "http://localhost:3000/reset-password"
	conf.Notify.LoginAlerts = true

	var (
		repo  repository
		cache ctrl.CacheService
	)

	if testing.Short() {
		repo, cache = memrepo.New(), memory.New()
	} else {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		stackOnce.Do(
			func() {
				stackErr = startStack(context.Background())
			},
		)
		require.NoError(t, stackErr)

		containerConfig(t, &conf)
		t.Setenv(
			"MIGRATIONS_PATH", filepath.ToSlash(
				filepath.Join(rootDir, "internal", "repo", "db", "migration"),
			),
		)
		repo, cache = db.New(conf), redis.New(conf)

		t.Cleanup(
			func() {
				truncateTables(t, conf)
			},
		)
	}

	vlt, err := vault.New(conf)
	require.NoError(t, err)

	mails := &outbox{}
	svc := ctrl.New(auth.New(conf), repo, cache, mails, nil, vlt, conf)
	mails.flush = svc.Wait
	ts := httptest.NewServer(hdl.New(svc))

	t.Cleanup(
		func() {
			ts.Close()
			svc.Wait()
			cache.InvalidateKeysByPattern(context.Background(), "*")
			_ = cache.Close()
			_ = repo.Close(context.Background())
		},
	)
	return ts, mails
}
