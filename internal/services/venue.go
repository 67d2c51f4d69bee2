package services

import (
	"context"
	"fmt"
	"time"

	"venuebooking/internal/domain"
)

type venueService struct {
	venueRepo      domain.VenueRepository
	eventRepo      domain.EventRepository
	txManager      domain.TxManager
	contextTimeout time.Duration
}

func NewVenueService(venueRepo domain.VenueRepository, eventRepo domain.EventRepository, txManager domain.TxManager, timeout time.Duration) domain.VenueService {
	return &venueService{
		venueRepo:      venueRepo,
		eventRepo:      eventRepo,
		txManager:      txManager,
		contextTimeout: timeout,
	}
}

func (s *venueService) CreateVenue(ctx context.Context, actor domain.Principal, fields domain.VenueFields) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanManageVenues(actor) {
		return nil, domain.ErrForbidden
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	venue := domain.NewVenue(fields, now, now)
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venues, err := s.venueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []*domain.Venue{}
	}
	return venues, nil
}

// UpdateVenue replaces the venue fields. Capacity may not drop below the largest roster
// of any event at the venue; the venue row lock keeps registrations out while that is checked.
func (s *venueService) UpdateVenue(ctx context.Context, actor domain.Principal, id string, fields domain.VenueFields) (*domain.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanManageVenues(actor) {
		return nil, domain.ErrForbidden
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Venue
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		venue, err := s.venueRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if fields.Capacity < venue.Capacity {
			max, err := s.venueRepo.MaxParticipants(ctx, id)
			if err != nil {
				return fmt.Errorf("max participants: %w", err)
			}
			if fields.Capacity < max {
				return fmt.Errorf("%w: %d participants already registered", domain.ErrCapacityBelowRoster, max)
			}
		}
		venue.Name = fields.Name
		venue.Location = fields.Location
		venue.Capacity = fields.Capacity
		venue.UpdatedAt = time.Now()
		if err := s.venueRepo.Update(ctx, venue); err != nil {
			return err
		}
		updated = venue
		return nil
	})
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return updated, nil
}

func (s *venueService) DeleteVenue(ctx context.Context, actor domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanManageVenues(actor) {
		return domain.ErrForbidden
	}
	// The cascade locks the venue's events; taking them before the venue row keeps the
	// event-then-venue order used by confirmation and registration.
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.LockByVenueID(ctx, id); err != nil {
			return fmt.Errorf("lock venue events: %w", err)
		}
		return s.venueRepo.Delete(ctx, id)
	})
	if err != nil {
		if isDecision(err) {
			return err
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}
