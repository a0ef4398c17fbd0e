// Package telemetry records tool calls into OpenTelemetry traces and metrics.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observer wraps tool calls in spans and records call counts and latency.
// A nil *Observer is valid and records nothing.
type Observer struct {
	tracer trace.Tracer

	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewObserver creates instruments on meter and spans on tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	calls, err := meter.Int64Counter("exprtree.tool.calls",
		metric.WithDescription("Number of tool calls"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("exprtree.tool.failures",
		metric.WithDescription("Number of tool calls that returned an error"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("exprtree.tool.duration",
		metric.WithDescription("Tool call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Observer{
		tracer:   tracer,
		calls:    calls,
		failures: failures,
		duration: duration,
	}, nil
}

// Observe runs fn inside a "tool:<name>" span. fn returns the error message
// of a failed call, or "" on success.
func (o *Observer) Observe(ctx context.Context, tool string, fn func(context.Context) string) string {
	if o == nil {
		return fn(ctx)
	}

	ctx, span := o.tracer.Start(ctx, "tool:"+tool,
		trace.WithAttributes(attribute.String("exprtree.tool", tool)),
	)
	defer span.End()

	start := time.Now()
	errMsg := fn(ctx)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("success", errMsg == ""),
	)
	o.calls.Add(ctx, 1, attrs)
	o.duration.Record(ctx, elapsed.Seconds(), attrs)
	if errMsg != "" {
		o.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
		span.SetStatus(codes.Error, errMsg)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return errMsg
}

// NewTracerProvider returns an SDK tracer provider. With a non-empty endpoint
// spans are batched to an OTLP/HTTP collector at that host:port.
func NewTracerProvider(ctx context.Context, endpoint string, insecure bool) (*sdktrace.TracerProvider, error) {
	if endpoint == "" {
		return sdktrace.NewTracerProvider(), nil
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp)), nil
}
