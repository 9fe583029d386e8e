package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/go-content-studio/internal/config"
)

func preserveGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabled(name string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupTracing_DisabledIsNoOp(t *testing.T) {
	preserveGlobals(t)
	prev := otel.GetTracerProvider()

	shutdown, err := SetupTracing(context.Background(), config.OTELConfig{Enabled: false}, "v0", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("tracer provider replaced while disabled")
	}
}

func TestSetupTracing_InstallsProvider(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		preserveGlobals(t)
		cfg := enabled("svc")
		cfg.Insecure = insecure

		var buf bytes.Buffer
		shutdown, err := SetupTracing(context.Background(), cfg, "v1.2.3", zerolog.New(&buf))
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: expected *sdktrace.TracerProvider", insecure)
		}
		_, span := otel.Tracer("test").Start(context.Background(), "root")
		if !span.SpanContext().IsValid() {
			t.Fatal("span context not valid with ratio 1")
		}
		span.End()
		if !strings.Contains(buf.String(), "tracing enabled") {
			t.Fatalf("startup line missing: %s", buf.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(ctx)
		cancel()
	}
}

func TestSetupTracing_CanceledContextStillSucceeds(t *testing.T) {
	preserveGlobals(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the gRPC client connects lazily

	shutdown, err := SetupTracing(ctx, enabled("svc"), "v0", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_ = shutdown(context.Background())
}

func TestSetupTracing_ErrorsLeaveGlobalsIntact(t *testing.T) {
	cases := []struct {
		name  string
		patch func() func()
	}{
		{"exporter", func() func() {
			orig := newExporter
			newExporter = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
				return nil, errors.New("boom-exporter")
			}
			return func() { newExporter = orig }
		}},
		{"resource", func() func() {
			orig := newResource
			newResource = func(context.Context, string, string) (*resource.Resource, error) {
				return nil, errors.New("boom-resource")
			}
			return func() { newResource = orig }
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			preserveGlobals(t)
			defer tc.patch()()

			prevTP := otel.GetTracerProvider()
			prevProp := otel.GetTextMapPropagator()
			if _, err := SetupTracing(context.Background(), enabled("svc"), "v0", zerolog.Nop()); err == nil {
				t.Fatal("expected error")
			}
			if otel.GetTracerProvider() != prevTP || otel.GetTextMapPropagator() != prevProp {
				t.Fatal("globals changed on failure")
			}
		})
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
