package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/imgopt/internal/core/ports"
)

// SpanLogger implements sdktrace.SpanProcessor and reports every finished span
// with its duration and attributes as a debug log line.
type SpanLogger struct {
	logger ports.Logger
}

// NewSpanLogger returns a new SpanLogger.
func NewSpanLogger(logger ports.Logger) *SpanLogger {
	return &SpanLogger{logger: logger}
}

// NewTracerProvider creates an SDK provider that reports spans through logger.
func NewTracerProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewSpanLogger(logger)),
	)
}

// OnStart does nothing.
func (p *SpanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the finished span.
func (p *SpanLogger) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	parts := []string{
		fmt.Sprintf("%s took %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)),
	}
	for _, kv := range s.Attributes() {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	if status := s.Status(); status.Code == codes.Error {
		parts = append(parts, "error="+status.Description)
	}

	p.logger.Debug(strings.Join(parts, " "))
}

// ForceFlush does nothing.
func (p *SpanLogger) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (p *SpanLogger) Shutdown(context.Context) error {
	return nil
}
