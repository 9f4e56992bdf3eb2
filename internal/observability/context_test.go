package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if got := CorrelationID(ctx); got != "" {
		t.Errorf("CorrelationID(empty) = %q, want empty", got)
	}
	if LoggerFromContext(ctx) == nil {
		t.Fatal("LoggerFromContext(empty) returned nil, want no-op logger")
	}

	logger := zap.NewExample()
	ctx = WithLogger(WithCorrelationID(ctx, "abc"), logger)
	if got := CorrelationID(ctx); got != "abc" {
		t.Errorf("CorrelationID() = %q, want abc", got)
	}
	if got := LoggerFromContext(ctx); got != logger {
		t.Error("LoggerFromContext() did not return stored logger")
	}
}
