package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the security layer
type Metrics struct {
	// Rate limiter metrics
	RateLimitDecisions   metric.Int64Counter
	RateLimitStoreErrors metric.Int64Counter
	StoreRoundTrip       metric.Float64Histogram

	// Validation metrics
	ValidationRejections metric.Int64Counter

	// Audit metrics
	AuditEventsTotal metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	meter := inst.Meter("security")

	var err error
	m.RateLimitDecisions, err = meter.Int64Counter(
		"gatekit.ratelimit.decisions.total",
		metric.WithDescription("Rate limit decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.decisions counter: %w", err)
	}

	m.RateLimitStoreErrors, err = meter.Int64Counter(
		"gatekit.ratelimit.store.errors.total",
		metric.WithDescription("Counter store failures that caused a fail-open admission"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.store.errors counter: %w", err)
	}

	m.StoreRoundTrip, err = meter.Float64Histogram(
		"gatekit.ratelimit.store.roundtrip.duration",
		metric.WithDescription("Counter store pipeline round-trip duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store.roundtrip histogram: %w", err)
	}

	m.ValidationRejections, err = meter.Int64Counter(
		"gatekit.validation.rejections.total",
		metric.WithDescription("Input validation rejections by validator"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation.rejections counter: %w", err)
	}

	m.AuditEventsTotal, err = meter.Int64Counter(
		"gatekit.audit.events.total",
		metric.WithDescription("Security audit events by type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events counter: %w", err)
	}

	return m, nil
}

// RecordRateLimitDecision records one limiter decision
func (m *Metrics) RecordRateLimitDecision(ctx context.Context, preset string, allowed bool) {
	if m == nil || m.RateLimitDecisions == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.RateLimitDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("preset", preset),
		attribute.String("outcome", outcome),
	))
}

// RecordStoreError records one fail-open store failure
func (m *Metrics) RecordStoreError(ctx context.Context, preset string) {
	if m == nil || m.RateLimitStoreErrors == nil {
		return
	}
	m.RateLimitStoreErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("preset", preset),
	))
}

// RecordStoreRoundTrip records one counter store round trip
func (m *Metrics) RecordStoreRoundTrip(ctx context.Context, millis float64) {
	if m == nil || m.StoreRoundTrip == nil {
		return
	}
	m.StoreRoundTrip.Record(ctx, millis)
}

// RecordValidationRejection records one validator rejection
func (m *Metrics) RecordValidationRejection(ctx context.Context, validatorName string) {
	if m == nil || m.ValidationRejections == nil {
		return
	}
	m.ValidationRejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("validator", validatorName),
	))
}

// RecordAuditEvent records one emitted audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	if m == nil || m.AuditEventsTotal == nil {
		return
	}
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
