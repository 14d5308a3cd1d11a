// Package reqctx carries request-scoped metadata through context.Context.
//
// HTTP middleware attaches a RequestMeta to every request context:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{
//	    RequestID:   "abc-123",
//	    ClientIP:    "192.168.1.1",
//	    RequestedAt: time.Now(),
//	})
//
// Services and the logger read it back with RequestMetaFromContext or
// RequestIDFromContext. Context keys are unexported to prevent collisions.
package reqctx
