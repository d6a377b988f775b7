package xcontext

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type txHolder struct {
	db *gorm.DB
}

// WithDBTransaction opens a transaction on the database of ctx. Every repository call using the
// returned context runs inside it until WithCommitDBTransaction or WithRollbackDBTransaction.
func WithDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(dbTxKey{}).(*txHolder); ok && tx.db != nil {
		// Nested call joins the outer transaction.
		return ctx
	}

	return context.WithValue(ctx, dbTxKey{}, &txHolder{db: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTxKey{}).(*txHolder)
	if !ok || tx.db == nil {
		return nil
	}

	err := tx.db.Commit().Error
	tx.db = nil
	return err
}

// WithRollbackDBTransaction does nothing after a commit, so it is safe to defer.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(dbTxKey{}).(*txHolder)
	if !ok || tx.db == nil {
		return
	}

	tx.db.Rollback()
	tx.db = nil
}

// ErrRetryExhausted is returned by RunInTransaction when every attempt hit contention.
var ErrRetryExhausted = errors.New("transaction retry exhausted")

// RunInTransaction runs fn inside a fresh transaction and commits it. When fn or the commit fails
// with a contention error the whole transaction is retried with exponential backoff, up to
// maxRetry extra attempts.
func RunInTransaction(ctx context.Context, maxRetry int, fn func(context.Context) error) error {
	if maxRetry < 0 {
		maxRetry = 0
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(newTxBackOff(), uint64(maxRetry)),
		ctx,
	)

	var lastErr error
	err := backoff.Retry(func() error {
		txCtx := WithDBTransaction(ctx)
		defer WithRollbackDBTransaction(txCtx)

		err := fn(txCtx)
		if err == nil {
			err = WithCommitDBTransaction(txCtx)
		}

		if err != nil {
			lastErr = err
			if IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		return nil
	}, b)

	if err != nil && IsRetryable(lastErr) {
		return errors.Join(ErrRetryExhausted, lastErr)
	}

	return err
}

func newTxBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// IsRetryable reports whether err is a transient conflict between concurrent transactions.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213, 1205, 1062:
			return true
		}
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
