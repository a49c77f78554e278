package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-realtime/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	dispatchCounter, _  = meter.Int64Counter("tool.dispatches", metric.WithDescription("Tool calls dispatched to a handler"))
	duplicateCounter, _ = meter.Int64Counter("tool.duplicates_suppressed", metric.WithDescription("Repeat tool call deliveries dropped"))
	failureCounter, _   = meter.Int64Counter("tool.failures", metric.WithDescription("Tool calls whose handler reported an error"))
)
