package httpapi

import (
	"context"
	"sync/atomic"
)

type ctxHolder struct{ ctx context.Context }

// shutdownCtx is done once the process starts shutting down. Completion work
// derived through requestContext is canceled with it.
var shutdownCtx atomic.Pointer[ctxHolder]

// SetBaseContext installs the shutdown context. nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx.Store(&ctxHolder{ctx: ctx})
}

func baseContext() context.Context {
	if h := shutdownCtx.Load(); h != nil {
		return h.ctx
	}
	return context.Background()
}

// requestContext derives from the request context, keeping its values, and
// is also canceled when the shutdown context is done. cancel must be called
// when the handler returns.
func requestContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	base := baseContext()
	stop := context.AfterFunc(base, func() { cancel(context.Cause(base)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
