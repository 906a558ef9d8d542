package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	maxRetries     = 1
	defaultBackoff = 50 * time.Millisecond
)

func applyMigrations(db *sql.DB, conf config.Config) error {
	driver, err := pgx.WithInstance(db, &pgx.Config{})
	if err != nil {
		return err
	}

	path := os.Getenv("MIGRATIONS_PATH")
	if path == "" {
		path = filepath.ToSlash(
			filepath.Join("internal", "repo", "db", "migration"),
		)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, conf.DB.Database, driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			zap.L().Info("No migrations to apply")
			return nil
		} else {
			zap.L().Error("Failed to apply migrations", zap.Error(err))
			return err
		}
	}

	zap.L().Info("Applied migrations")
	return nil
}

// exec runs fn under the configured per-attempt timeout. Transient failures
// are retried once; if they persist the error wraps repo.ErrStorageUnavailable.
func (r *Repository) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := r.backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	err := retry.Do(
		ctx, retry.WithMaxRetries(maxRetries, retry.NewConstant(backoff)), func(ctx context.Context) error {
			if r.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}

			if err := fn(ctx); err != nil {
				if isTransient(err) {
					zap.L().Warn("transient storage error", zap.String("op", op), zap.Error(err))
					return retry.RetryableError(err)
				}
				return err
			}
			return nil
		},
	)

	if err != nil && isTransient(err) {
		zap.L().Error("storage unavailable", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", repo.ErrStorageUnavailable, err)
	}
	return err
}

// withTx runs fn inside a single transaction, retried as a whole.
func (r *Repository) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return r.exec(
		ctx, op, func(ctx context.Context) (err error) {
			tx, err := r.conn.BeginTxx(ctx, nil)
			if err != nil {
				return err
			}

			defer func() {
				if p := recover(); p != nil {
					_ = tx.Rollback()
					panic(p)
				}
				if err != nil {
					if rbErr := tx.Rollback(); rbErr != nil {
						zap.L().Debug("failed to rollback", zap.String("op", op), zap.Error(rbErr))
					}
					return
				}
				err = tx.Commit()
			}()

			return fn(ctx, tx)
		},
	)
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.AdminShutdown
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
