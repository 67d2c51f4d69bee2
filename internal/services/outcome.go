package services

import (
	"errors"

	"venuebooking/internal/domain"
)

// decisionErrors are the refusals the engine makes on purpose; anything else is a failure.
var decisionErrors = []error{
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrInvalidInput,
	domain.ErrAlreadyRegistered,
	domain.ErrVenueFull,
	domain.ErrSlotConflict,
	domain.ErrNotRegistered,
	domain.ErrEventNotConfirmed,
	domain.ErrCapacityBelowRoster,
	domain.ErrInvalidStatus,
}

func outcomeOf(err error) string {
	if err == nil {
		return domain.OutcomeSuccess
	}
	for _, target := range decisionErrors {
		if errors.Is(err, target) {
			return domain.OutcomeRejected
		}
	}
	return domain.OutcomeError
}

// isDecision reports whether err is a domain refusal that should reach the caller unwrapped.
func isDecision(err error) bool {
	return outcomeOf(err) == domain.OutcomeRejected
}
