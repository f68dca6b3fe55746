package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the retries of a single storage call.
type RetryPolicy struct {
	// Attempts is the number of retries after the first call. Zero disables retries.
	Attempts uint64
	// BaseDelay is the first backoff interval; it doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration
}

// DefaultRetryPolicy is used by repositories constructed without a policy.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(p.Attempts, b)
}

// Retry runs fn, retrying it with exponential backoff while it fails with a
// transient storage error. When the budget is exhausted the last error is
// returned wrapped in common.ErrTransientStore. Non-transient errors and
// context cancellation are returned as is.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && IsTransient(err) && !errors.Is(err, common.ErrTransientStore) {
		return fmt.Errorf("%w: %v", common.ErrTransientStore, err)
	}
	return err
}

// RetryTx runs fn in a transaction and re-runs the whole transaction while
// it fails with a transient error. Inside a transaction a single statement
// cannot be retried: after a deadlock or serialization failure Postgres
// rejects everything up to the rollback with 25P02.
func RetryTx(ctx context.Context, db *sql.DB, p RetryPolicy, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	return Retry(ctx, p, func(ctx context.Context) error {
		return WithTx(ctx, db, opts, fn)
	})
}

// IsTransient reports whether err is a connection-level or concurrency
// failure that may succeed when retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, common.ErrTransientStore) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization failure, deadlock
			return true
		case pgErr.Code == "57P01": // admin shutdown
			return true
		}
		return false
	}

	return pgconn.SafeToRetry(err)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
