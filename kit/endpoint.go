// Package kit holds the transport-agnostic endpoint plumbing shared by
// the HTTP and MCP surfaces: an Endpoint is a single operation, and
// Middleware wraps endpoints with cross-cutting behaviour.
package kit

import "context"

// Endpoint is one request/response operation.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with additional behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middleware left to right: the first wraps the
// outermost layer.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
