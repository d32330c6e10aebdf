package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditEventType names a structured event emitted once per credential pair.
type AuditEventType string

const (
	AuditCheckComplete AuditEventType = "check_complete"
	AuditCheckSkipped  AuditEventType = "check_skipped"
	AuditReportWritten AuditEventType = "report_written"
)

// AuditEvent is a structured record of one step of a run.
type AuditEvent struct {
	Type       AuditEventType
	RunID      string
	Company    string
	Outcome    string
	Effective  string
	Expiration string
	Duration   time.Duration
	Err        error
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e AuditEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", string(e.Type))
	if e.RunID != "" {
		enc.AddString("run_id", e.RunID)
	}
	if e.Company != "" {
		enc.AddString("company", e.Company)
	}
	if e.Outcome != "" {
		enc.AddString("outcome", e.Outcome)
	}
	if e.Effective != "" {
		enc.AddString("effective", e.Effective)
	}
	if e.Expiration != "" {
		enc.AddString("expiration", e.Expiration)
	}
	if e.Duration > 0 {
		enc.AddDuration("duration", e.Duration)
	}
	if e.Err != nil {
		enc.AddString("error", e.Err.Error())
	}
	return nil
}

// Audit logs e at info level, or warn when it carries an error.
func Audit(logger *zap.Logger, e AuditEvent) {
	if logger == nil {
		return
	}
	if e.Err != nil {
		logger.Warn("audit", zap.Object("event", e))
		return
	}
	logger.Info("audit", zap.Object("event", e))
}
