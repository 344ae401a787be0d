package audit

import (
	"time"

	"github.com/Togather-Foundation/refunds/internal/domain/refunds"
	"github.com/rs/zerolog"
)

// Entry is one refund decision in the audit trail.
type Entry struct {
	Timestamp      time.Time `json:"timestamp"`
	BatchID        string    `json:"batch_id,omitempty"`
	RecordID       string    `json:"record_id"`
	Index          int       `json:"index"`
	Customer       string    `json:"customer"`
	Status         string    `json:"status"` // "valid", "invalid" or "failed"
	Channel        string    `json:"channel,omitempty"`
	Policy         string    `json:"policy,omitempty"`
	Rule           string    `json:"rule,omitempty"`
	TimeLimitHours int       `json:"time_limit_hours,omitempty"`
	RegisteredAt   string    `json:"registered_at,omitempty"`
	CutoffAt       string    `json:"cutoff_at,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Logger writes refund decisions as structured audit records.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

var _ refunds.Observer = (*Logger)(nil)

// NewLogger creates an audit logger writing through zerolog.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("log_type", "audit").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Log writes an audit entry.
func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	l.logger.Info().
		Interface("audit", entry).
		Msg("refund decision")
}

// ObserveOutcome records the decision for one request.
func (l *Logger) ObserveOutcome(o refunds.Outcome) {
	l.Log(EntryFromOutcome(o))
}

// ObserveBatch records the batch totals.
func (l *Logger) ObserveBatch(r refunds.BatchReport) {
	l.logger.Info().
		Str("batch_id", r.ID).
		Int("valid", r.Valid).
		Int("invalid", r.Invalid).
		Int("failed", r.Failed).
		Msg("refund batch closed")
}

// EntryFromOutcome maps a batch outcome to an audit entry. Outcomes carry
// no batch id while the batch is running.
func EntryFromOutcome(o refunds.Outcome) Entry {
	entry := Entry{
		RecordID: o.RecordID,
		Index:    o.Index,
		Customer: o.Name,
	}
	if o.Err != nil || o.Result == nil {
		entry.Status = "failed"
		entry.ErrorKind = o.ErrorKind
		entry.Error = o.Error
		return entry
	}

	exp := o.Result.Explanation
	entry.Status = "invalid"
	if o.Result.Valid {
		entry.Status = "valid"
	}
	entry.Channel = string(exp.Channel)
	entry.Policy = string(exp.Policy)
	entry.Rule = string(exp.Rule)
	entry.TimeLimitHours = exp.TimeLimitHours
	entry.RegisteredAt = exp.RegisteredAt.Format(refunds.CanonicalDateTimeLayout)
	entry.CutoffAt = exp.CutoffAt.Format(refunds.CanonicalDateTimeLayout)
	return entry
}
