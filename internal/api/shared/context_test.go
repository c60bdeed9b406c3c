package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("set and get round trip", func(t *testing.T) {
		t.Parallel()

		ctx := SetTraceID(context.Background())
		traceID := GetTraceID(ctx)

		assert.Len(t, traceID, TraceIDLength*2, "trace ID should be hex encoded")
	})

	t.Run("missing trace id yields empty string", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("trace ids are unique", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := GetTraceID(SetTraceID(context.Background()))
			assert.False(t, seen[id], "duplicate trace ID %s", id)
			seen[id] = true
		}
	})
}
