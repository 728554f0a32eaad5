// Package middleware
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

type Chain struct {
	stack []Middleware
}

func New() *Chain {
	return &Chain{}
}

func (c *Chain) Use(mw Middleware) {
	c.stack = append(c.stack, mw)
}

// Then wraps a handler with the chain, outermost first.
func (c *Chain) Then(h http.Handler) http.Handler {
	for i := len(c.stack) - 1; i >= 0; i-- {
		h = c.stack[i](h)
	}
	return h
}

func (c *Chain) Apply(mux http.Handler) http.Handler {
	return c.Then(mux)
}
