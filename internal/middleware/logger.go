package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/router"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// Logger writes one access line per request. Client errors are warnings, anything that is not
// an errorx.Error is logged with its cause.
func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)

		var elapsed time.Duration
		if start := xcontext.StartTime(ctx); !start.IsZero() {
			elapsed = time.Since(start)
		}

		user := xcontext.RequestUserID(ctx)
		if user == "" {
			user = "-"
		}

		err := xcontext.Error(ctx)
		if err == nil {
			xcontext.Logger(ctx).Infof("%s %s | %s | %s", req.Method, req.URL.Path, user, elapsed)
			return
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			xcontext.Logger(ctx).Warnf("%s %s | %s | %s | code=%d", req.Method, req.URL.Path, user, elapsed, errx.Code)
			return
		}

		xcontext.Logger(ctx).Errorf("%s %s | %s | %s | %v", req.Method, req.URL.Path, user, elapsed, err)
	}
}
