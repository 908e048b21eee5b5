package utils

import (
	"context"
	"testing"
)

func TestContextIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetTenantIdFromContext(ctx); ok {
		t.Fatal("empty context reported a tenant id")
	}
	if _, ok := GetCorrelationIdFromContext(ctx); ok {
		t.Fatal("empty context reported a correlation id")
	}

	ctx = SetTenantIdInContext(ctx, "tenant-1")
	ctx = SetUserIdInContext(ctx, "user-1")
	ctx = SetCorrelationIdInContext(ctx, "corr-1")

	if v, ok := GetTenantIdFromContext(ctx); !ok || v != "tenant-1" {
		t.Fatalf("tenant id = %q, %v", v, ok)
	}
	if v, ok := GetUserIdFromContext(ctx); !ok || v != "user-1" {
		t.Fatalf("user id = %q, %v", v, ok)
	}
	if v, ok := GetCorrelationIdFromContext(ctx); !ok || v != "corr-1" {
		t.Fatalf("correlation id = %q, %v", v, ok)
	}
}
