package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ComplianceMetrics records the engine's operational and compliance signals.
type ComplianceMetrics interface {
	// RecordOperation counts an operation such as ("crypto", "encrypt", "success").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordAccessDecision counts guard decisions by reason code ("ALLOWED" for grants).
	RecordAccessDecision(ctx context.Context, reasonCode string)

	// RecordAuditFailure counts entries the primary audit sink rejected.
	RecordAuditFailure(ctx context.Context, sink string)

	// RecordPHIDetection counts PHI categories found by the detector.
	RecordPHIDetection(ctx context.Context, phiType string)
}

type complianceMetrics struct {
	operationCounter     metric.Int64Counter
	durationHisto        metric.Float64Histogram
	accessDecisionCount  metric.Int64Counter
	auditFailureCounter  metric.Int64Counter
	phiDetectionsCounter metric.Int64Counter
}

// NewComplianceMetrics creates the OpenTelemetry instruments under namespace.
func NewComplianceMetrics(meterProvider metric.MeterProvider, namespace string) (ComplianceMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of compliance engine operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of compliance engine operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	accessDecisionCount, err := meter.Int64Counter(
		fmt.Sprintf("%s_access_decisions_total", namespace),
		metric.WithDescription("Access guard decisions by reason code"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access decision counter: %w", err)
	}

	auditFailureCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_audit_write_failures_total", namespace),
		metric.WithDescription("Audit entries rejected by the primary sink"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit failure counter: %w", err)
	}

	phiDetectionsCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_phi_detections_total", namespace),
		metric.WithDescription("PHI categories detected in scanned content"),
		metric.WithUnit("{detection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create phi detection counter: %w", err)
	}

	return &complianceMetrics{
		operationCounter:     operationCounter,
		durationHisto:        durationHisto,
		accessDecisionCount:  accessDecisionCount,
		auditFailureCounter:  auditFailureCounter,
		phiDetectionsCounter: phiDetectionsCounter,
	}, nil
}

func (m *complianceMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (m *complianceMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (m *complianceMetrics) RecordAccessDecision(ctx context.Context, reasonCode string) {
	m.accessDecisionCount.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reasonCode)))
}

func (m *complianceMetrics) RecordAuditFailure(ctx context.Context, sink string) {
	m.auditFailureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("sink", sink)))
}

func (m *complianceMetrics) RecordPHIDetection(ctx context.Context, phiType string) {
	m.phiDetectionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("phi_type", phiType)))
}

// NoOpComplianceMetrics is used when metrics are disabled.
type NoOpComplianceMetrics struct{}

// NewNoOpComplianceMetrics creates a no-op ComplianceMetrics implementation.
func NewNoOpComplianceMetrics() ComplianceMetrics {
	return &NoOpComplianceMetrics{}
}

func (n *NoOpComplianceMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpComplianceMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpComplianceMetrics) RecordAccessDecision(ctx context.Context, reasonCode string) {}

func (n *NoOpComplianceMetrics) RecordAuditFailure(ctx context.Context, sink string) {}

func (n *NoOpComplianceMetrics) RecordPHIDetection(ctx context.Context, phiType string) {}

// StatusOf maps an error to a status label.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
