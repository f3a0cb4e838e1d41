package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can return a derived
// context to pass values down, or an error to stop the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler with its final error, nil on success.
type CloserFunc func(ctx context.Context, err error)

type Router struct {
	Inner gin.IRouter

	ctx     context.Context
	befores []MiddlewareFunc
	closers []CloserFunc
}

// New creates a root router. The given context is the base of every
// request context, so anything wired into it with xcontext is visible
// to all handlers.
func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{Inner: gin.New(), ctx: ctx}
}

// Branch clones the router with an independent middleware chain but the
// same underlying routes.
func (r *Router) Branch() *Router {
	return &Router{
		Inner:   r.Inner,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

// Group is like Branch but routes under a path prefix.
func (r *Router) Group(pattern string) *Router {
	branch := r.Branch()
	branch.Inner = r.Inner.Group(pattern)
	return branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}
