package app

import (
	"context"
	"errors"
	"testing"
)

func TestFlushTracerRunsRegisteredShutdown(t *testing.T) {
	calls := 0
	a := &App{tracerShutdown: func(ctx context.Context) error {
		calls++
		if ctx == nil {
			return errors.New("nil context")
		}
		return nil
	}}

	a.flushTracer(context.Background())
	if calls != 1 {
		t.Errorf("tracer shutdown called %d times, want 1", calls)
	}
}

func TestFlushTracerWithoutTracingIsNoop(t *testing.T) {
	a := &App{}
	a.flushTracer(context.Background())
}
