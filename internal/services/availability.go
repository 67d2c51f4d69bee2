package services

import (
	"context"
	"fmt"

	"venuebooking/internal/domain"
)

type availabilityChecker struct {
	eventRepo domain.EventRepository
}

// NewAvailabilityChecker returns the read-only slot checker. Only Confirmed events occupy a slot.
// Callers that confirm an event must run it inside the same transaction as the status write.
func NewAvailabilityChecker(eventRepo domain.EventRepository) domain.AvailabilityChecker {
	return &availabilityChecker{eventRepo: eventRepo}
}

func (c *availabilityChecker) IsAvailable(ctx context.Context, slot domain.Slot, excludeEventID string) (*domain.Availability, error) {
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	candidates, err := c.eventRepo.ListConfirmedOverlapping(ctx, slot, excludeEventID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed events: %w", err)
	}

	// Re-apply the overlap test so the answer does not depend on how the store filtered.
	conflicting := make([]*domain.Event, 0, len(candidates))
	for _, e := range candidates {
		if e.ID == excludeEventID || e.Status != domain.EventStatusConfirmed {
			continue
		}
		if slot.Overlaps(e.Slot()) {
			conflicting = append(conflicting, e)
		}
	}
	return &domain.Availability{
		Available:   len(conflicting) == 0,
		Conflicting: conflicting,
	}, nil
}
