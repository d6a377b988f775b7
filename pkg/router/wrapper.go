package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

const maxBodySize = 1 << 20

func wrapHandler[Request, Response any](
	router *Router, method string, handler HandlerFunc[Request, Response],
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := xcontext.WithCancelFrom(router.ctx, r.Context())
		ctx = xcontext.WithHTTPRequest(ctx, r)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		ctx = serve(ctx, router, method, handler)

		for _, c := range router.afters {
			c(ctx)
		}

		handleResponse(ctx)

		for _, c := range router.closers {
			c(ctx)
		}
	})
}

func serve[Request, Response any](
	ctx context.Context, router *Router, method string, handler HandlerFunc[Request, Response],
) context.Context {
	r := xcontext.HTTPRequest(ctx)
	if r.Method != method {
		return xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Method %s is not allowed", r.Method))
	}

	for _, m := range router.befores {
		newCtx, err := m(ctx)
		if err != nil {
			return xcontext.WithError(ctx, err)
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	var req Request
	if err := parseRequest(r, &req); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
		return xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
	}

	resp, err := handler(ctx, &req)
	if err != nil {
		return xcontext.WithError(ctx, err)
	}

	return xcontext.WithResponse(ctx, resp)
}

// parseRequest reads GET parameters from the query string and POST parameters from the JSON
// body. Both use the json tags of the request.
func parseRequest(r *http.Request, req any) error {
	switch r.Method {
	case http.MethodGet:
		params := map[string]any{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			return err
		}

		return decoder.Decode(params)

	case http.MethodPost:
		err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(req)
		if errors.Is(err, io.EOF) {
			// Empty body.
			return nil
		}
		return err
	}

	return errors.New("unsupported method")
}
