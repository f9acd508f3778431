package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
)

// Reply is what a handler produces on success. A string Body is written as
// plain text, a nil Body writes the status alone, anything else is JSON.
type Reply struct {
	Status int
	Body   any
}

// OK replies 200 with body.
func OK(body any) Reply { return Reply{Status: http.StatusOK, Body: body} }

// Created replies 201 with body.
func Created(body any) Reply { return Reply{Status: http.StatusCreated, Body: body} }

// NoContent replies 204.
func NoContent() Reply { return Reply{Status: http.StatusNoContent} }

// HandlerFunc handles a request. It returns a failure instead of writing an
// error response itself.
type HandlerFunc func(c *gin.Context) (Reply, error)

// TxScope is the request-scoped transactional context a handler runs in.
type TxScope interface {
	Commit() error
	Rollback() error
	Release()
}

// ScopeFunc opens a TxScope and binds it to ctx.
type ScopeFunc func(ctx context.Context) (context.Context, TxScope)

// Dispatcher adapts HandlerFuncs to Gin. It owns the request's transactional
// scope and routes every failure through the failure pipeline.
type Dispatcher struct {
	pipeline *failure.Pipeline
	scope    ScopeFunc
	log      *logger.Logger
}

// NewDispatcher creates a Dispatcher. scope may be nil for handlers that
// never touch the database.
func NewDispatcher(p *failure.Pipeline, scope ScopeFunc, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		pipeline: p,
		scope:    scope,
		log:      log.WithComponent("dispatch"),
	}
}

// Handle wraps h. The scope is committed when h succeeds and released on
// every path; a failed commit is handled like any other failure.
func (d *Dispatcher) Handle(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tx TxScope
		if d.scope != nil {
			var ctx context.Context
			ctx, tx = d.scope(c.Request.Context())
			c.Request = c.Request.WithContext(ctx)
			defer tx.Release()
		}

		reply, err := run(c, h)
		if err == nil && tx != nil {
			err = tx.Commit()
		}
		if err != nil {
			d.fail(c, err, tx)
			return
		}
		write(c, reply)
	}
}

// NotFound answers requests no route matched.
func (d *Dispatcher) NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		d.fail(c, errors.NotFound("route", c.Request.URL.Path), nil)
	}
}

func (d *Dispatcher) fail(c *gin.Context, err error, tx TxScope) {
	var ftx failure.Transaction
	if tx != nil {
		ftx = tx
	}
	resp := d.pipeline.Handle(c.Request.Context(), err, ftx)
	if c.Writer.Written() {
		d.log.WithContext(c.Request.Context()).Warn("failure after response was written", logger.Fields(
			logger.FieldError, err.Error(),
		))
		return
	}
	c.AbortWithStatusJSON(resp.Status, resp.Body)
}

func run(c *gin.Context, h HandlerFunc) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.Recovered(r)
		}
	}()
	return h(c)
}

func write(c *gin.Context, r Reply) {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	switch body := r.Body.(type) {
	case nil:
		c.Status(status)
	case string:
		c.String(status, body)
	default:
		c.JSON(status, body)
	}
}
