package router

import (
	"context"
	"net/http"

	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A nil returned context keeps the current one; an
// error stops the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler, whether it failed or not.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	// ctx carries the process-wide values (configs, logger, database) into every request.
	ctx context.Context

	befores []MiddlewareFunc
	afters  []CloserFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), ctx: ctx}
}

// Branch returns a router sharing the routes of r, with a copy of its middlewares. Middlewares
// added to the branch do not affect r.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]CloserFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(c CloserFunc) {
	r.afters = append(r.afters, c)
}

// AddCloser registers a closer that runs after the response has been written.
func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
		},
	}).Handler(r.mux)
}
