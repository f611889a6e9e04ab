package pipeline

import "context"

// Handler is a pipeline stage.
type Handler interface {
	Serve(ctx context.Context, req *Request)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request)

// Serve calls f.
func (f HandlerFunc) Serve(ctx context.Context, req *Request) { f(ctx, req) }

// Middleware wraps a stage. A middleware must call next exactly once.
type Middleware func(next Handler) Handler

// Chain builds a handler that runs mws in order, then final.
func Chain(final Handler, mws ...Middleware) Handler {
	if final == nil {
		final = HandlerFunc(func(context.Context, *Request) {})
	}
	h := final
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
