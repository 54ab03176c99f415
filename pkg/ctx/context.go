// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair, with helpers for params, body
// binding and the response envelope.
//
//	func (c *OrderController) Show(x *ctx.Context) {
//	    order, err := c.orders.Get(x.Context(), x.Param("id"))
//	    if err != nil {
//	        x.Fail(err)
//	        return
//	    }
//	    x.Success(order, "Order found")
//	}
//
// Register with ctx.Wrap:
//
//	g.Get("/{id}", "turno.show", ctx.Wrap(orders.Show))
package ctx

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/bind"
	"github.com/turnosapp/turnos/pkg/logger"
	"github.com/turnosapp/turnos/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return new(Context) },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter (e.g. "/turno/{id}" -> c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value, or "".
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// BindJSON decodes the body into dest. On failure it answers 400 and
// returns false.
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.W, c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// Respond writes the envelope with an explicit ok flag.
func (c *Context) Respond(code int, ok bool, data any, message string) {
	response.Respond(c.W, code, ok, data, message)
}

// Success sends a 200 envelope.
func (c *Context) Success(data any, message string) {
	c.Respond(http.StatusOK, true, data, message)
}

// Created sends a 201 envelope.
func (c *Context) Created(data any, message string) {
	c.Respond(http.StatusCreated, true, data, message)
}

// Error sends a failure envelope.
func (c *Context) Error(code int, message string) {
	c.Respond(code, false, nil, message)
}

// Fail converts err into the envelope. Application errors keep their status
// and message; anything else is logged and answered with an opaque 500.
func (c *Context) Fail(err error) {
	if e, ok := apperr.As(err); ok && e.Status < http.StatusInternalServerError {
		c.Error(e.Status, e.Message)
		return
	}

	logger.WithCtx(c.Context()).Error("request failed",
		"method", c.R.Method,
		"path", c.R.URL.Path,
		"error", err,
	)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}
