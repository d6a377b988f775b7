package xcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type counter struct {
	ID    string `gorm:"primaryKey"`
	Value int
}

func newTestContext(t *testing.T) context.Context {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&counter{}))
	require.NoError(t, db.Create(&counter{ID: "a"}).Error)

	return WithDB(context.Background(), db)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(&mysql.MySQLError{Number: 1213}))
	require.True(t, IsRetryable(fmt.Errorf("wrap: %w", &mysql.MySQLError{Number: 1205})))
	require.True(t, IsRetryable(gorm.ErrDuplicatedKey))
	require.True(t, IsRetryable(errors.New("database is locked")))
	require.False(t, IsRetryable(&mysql.MySQLError{Number: 1146}))
	require.False(t, IsRetryable(gorm.ErrRecordNotFound))
	require.False(t, IsRetryable(nil))
}

func TestRunInTransaction_RetryThenCommit(t *testing.T) {
	ctx := newTestContext(t)

	attempts := 0
	err := RunInTransaction(ctx, 3, func(ctx context.Context) error {
		attempts++
		err := DB(ctx).Model(&counter{}).Where("id = ?", "a").
			Update("value", gorm.Expr("value + 1")).Error
		if err != nil {
			return err
		}

		if attempts < 3 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	// Failed attempts were rolled back.
	var c counter
	require.NoError(t, DB(ctx).First(&c, "id = ?", "a").Error)
	require.Equal(t, 1, c.Value)
}

func TestRunInTransaction_Exhausted(t *testing.T) {
	ctx := newTestContext(t)

	attempts := 0
	err := RunInTransaction(ctx, 2, func(ctx context.Context) error {
		attempts++
		return &mysql.MySQLError{Number: 1205}
	})
	require.ErrorIs(t, err, ErrRetryExhausted)
	require.Equal(t, 3, attempts)
}

func TestRunInTransaction_PermanentError(t *testing.T) {
	ctx := newTestContext(t)

	attempts := 0
	invalid := errors.New("invalid state")
	err := RunInTransaction(ctx, 5, func(ctx context.Context) error {
		attempts++
		return invalid
	})
	require.ErrorIs(t, err, invalid)
	require.NotErrorIs(t, err, ErrRetryExhausted)
	require.Equal(t, 1, attempts)
}

func TestRequestUserID(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, RequestUserID(ctx))
	require.Equal(t, "user1", RequestUserID(WithRequestUserID(ctx, "user1")))
}
