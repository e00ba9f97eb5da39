package telemetry

import (
	"context"
	"testing"
)

func TestInitializeFromEnvDisabled(t *testing.T) {
	t.Setenv("HONEYCOMB_API_KEY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	if Configured() {
		t.Fatal("Configured() = true with no endpoint set")
	}

	shutdown, err := InitializeFromEnv(context.Background(), "test")
	if err != nil {
		t.Fatalf("InitializeFromEnv failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	if span.SpanContext().IsSampled() {
		t.Error("span sampled without a configured exporter")
	}
}

func TestConfigured(t *testing.T) {
	t.Setenv("HONEYCOMB_API_KEY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	if !Configured() {
		t.Error("Configured() = false with OTEL_EXPORTER_OTLP_ENDPOINT set")
	}
}
