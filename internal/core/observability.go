package core

import (
	"context"
	"time"

	"studycore/pkg/domain"
)

// Logger captures the leveled key/value logging surface the service emits on.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder aggregates per-operation outcome counters and timings.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a started span with the operation outcome.
type TraceSpan interface {
	End(err error)
}

// AuditStatus classifies an audit entry outcome.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// AuditEntry captures the audit trail metadata emitted for an operation.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries for completed service operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// Clock supplies the service time source so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics sink to the service.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) {
		s.metrics = recorder
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithAuditRecorder attaches an audit sink to the service.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(s *Service) {
		s.audit = recorder
	}
}

// WithClock overrides the service time source.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPatternLoader attaches the loader used to resolve stored antenna
// patterns during derive and replicate.
func WithPatternLoader(loader domain.PatternLoader) ServiceOption {
	return func(s *Service) {
		s.patterns = loader
	}
}

// auditMetadata maps operation names to the entity and action they audit as.
var auditMetadata = map[string]struct {
	Entity EntityType
	Action Action
}{
	"create_study":     {Entity: EntityStudy, Action: ActionCreate},
	"delete_study":     {Entity: EntityStudy, Action: ActionDelete},
	"save_source":      {Entity: EntitySource, Action: ActionUpdate},
	"delete_source":    {Entity: EntitySource, Action: ActionDelete},
	"derive_source":    {Entity: EntitySource, Action: ActionCreate},
	"replicate_source": {Entity: EntitySource, Action: ActionCreate},
}

func (s *Service) recordAuditSuccess(ctx context.Context, operation, entityID string, duration time.Duration) {
	if s.audit == nil {
		return
	}
	meta, ok := auditMetadata[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.Entity,
		Action:    meta.Action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

func (s *Service) recordAuditFailure(ctx context.Context, operation, entityID string, duration time.Duration, err error) {
	if s.audit == nil {
		return
	}
	meta, ok := auditMetadata[operation]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: operation,
		Entity:    meta.Entity,
		Action:    meta.Action,
		EntityID:  entityID,
		Status:    AuditStatusFailure,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// observe wraps a service operation with tracing, metrics, logging, and audit
// emission. The returned entity id feeds the audit entry so operations that
// allocate keys can report them.
func (s *Service) observe(ctx context.Context, operation string, fn func(ctx context.Context) (string, error)) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	start := s.clock.Now()
	entityID, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "entity_id", entityID, "error", err)
		s.recordAuditFailure(ctx, operation, entityID, duration, err)
		return err
	}
	s.logger.Info("operation completed", "operation", operation, "entity_id", entityID, "duration", duration)
	s.recordAuditSuccess(ctx, operation, entityID, duration)
	return nil
}
