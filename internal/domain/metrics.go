package domain

// Outcome labels for BookingMetrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// BookingMetrics records decisions taken by the booking engine.
type BookingMetrics interface {
	RecordRegistration(role RosterRole, outcome string)
	RecordTransition(status EventStatus, outcome string)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordRegistration(RosterRole, string)  {}
func (NoopMetrics) RecordTransition(EventStatus, string) {}
