package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/ledger/config"
	"github.com/questx-lab/ledger/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey     struct{}
	loggerKey      struct{}
	dbKey          struct{}
	dbTxKey        struct{}
	userIDKey      struct{}
	httpRequestKey struct{}
	httpWriterKey  struct{}
	snowflakeKey   struct{}
	startTimeKey   struct{}
	clockKey       struct{}
	errorKey       struct{}
	responseKey    struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Default()
	}
	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.INFO, false)
	}
	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if one was opened by WithDBTransaction, otherwise the
// database bound by WithDB.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*txHolder); ok && tx.db != nil {
		return tx.db
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return db.WithContext(ctx)
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	r, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return r
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, _ := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	return node
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}

// WithClock overrides the server clock.
func WithClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

func Now(ctx context.Context) time.Time {
	if now, ok := ctx.Value(clockKey{}).(func() time.Time); ok {
		return now()
	}
	return time.Now()
}

// WithError records the error of the request, for the closers of the router.
func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func WithResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

type valueContext struct {
	context.Context
	values context.Context
}

func (c valueContext) Value(key any) any {
	return c.values.Value(key)
}

// WithCancelFrom returns a context holding the values of valueCtx and the deadline and
// cancellation of cancelCtx.
func WithCancelFrom(valueCtx, cancelCtx context.Context) context.Context {
	return valueContext{Context: cancelCtx, values: valueCtx}
}
