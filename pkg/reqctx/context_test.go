package reqctx

import (
	"context"
	"testing"
)

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	if _, ok := RequestMetaFromContext(ctx); ok {
		t.Error("RequestMetaFromContext() ok on empty context")
	}
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "abc-123", ClientIP: "10.0.0.1"})
	meta, ok := RequestMetaFromContext(ctx)
	if !ok || meta.ClientIP != "10.0.0.1" {
		t.Errorf("RequestMetaFromContext() = (%+v, %v)", meta, ok)
	}
	if got := RequestIDFromContext(ctx); got != "abc-123" {
		t.Errorf("RequestIDFromContext() = %q, want abc-123", got)
	}

	if _, ok := RequestMetaFromContext(WithRequestMeta(context.Background(), nil)); ok {
		t.Error("RequestMetaFromContext() ok for nil meta")
	}
}

func TestAdminUser(t *testing.T) {
	if _, ok := AdminUserFromContext(context.Background()); ok {
		t.Error("AdminUserFromContext() ok on empty context")
	}
	u, ok := AdminUserFromContext(WithAdminUser(context.Background(), "proshop"))
	if !ok || u != "proshop" {
		t.Errorf("AdminUserFromContext() = (%q, %v)", u, ok)
	}
}
