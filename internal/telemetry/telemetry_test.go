package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown := Setup("dashboard", false, &buf)
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("disabled telemetry must not write spans")
	}
}

func TestSetupWritesSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var buf bytes.Buffer
	shutdown := Setup("dashboard", true, &buf)

	_, span := otel.Tracer("test").Start(context.Background(), "load-report")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "load-report") || !strings.Contains(out, "dashboard") {
		t.Fatalf("expected exported span with service name, got %q", out)
	}
}
