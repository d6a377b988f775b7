package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func handleResponse(ctx context.Context) {
	w := xcontext.HTTPWriter(ctx)
	w.Header().Set("Content-Type", "application/json")

	var resp response
	if err := xcontext.Error(ctx); err != nil {
		resp = newErrorResponse(err)
	} else {
		resp = newResponse(xcontext.Response(ctx))
	}

	if err := WriteJson(w, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJson(w http.ResponseWriter, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}
