package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"venuebooking/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	rosterRepo     domain.RosterRepository
	userRepo       domain.UserRepository
	availability   domain.AvailabilityChecker
	txManager      domain.TxManager
	emailService   domain.EmailService
	metrics        domain.BookingMetrics
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	rosterRepo domain.RosterRepository,
	userRepo domain.UserRepository,
	availability domain.AvailabilityChecker,
	txManager domain.TxManager,
	emailService domain.EmailService,
	metrics domain.BookingMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		rosterRepo:     rosterRepo,
		userRepo:       userRepo,
		availability:   availability,
		txManager:      txManager,
		emailService:   emailService,
		metrics:        metrics,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actor domain.Principal, fields domain.EventFields) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.UserID == "" {
		return nil, domain.ErrForbidden
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.venueRepo.GetByID(ctx, fields.VenueID); err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}

	event := domain.NewEvent(fields, actor.UserID, time.Now())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces every editable field and sends the event back to Pending.
func (s *eventService) UpdateEvent(ctx context.Context, actor domain.Principal, eventID string, fields domain.EventFields) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Event
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if !domain.CanEditEvent(actor, event) {
			return domain.ErrForbidden
		}
		// Locked so a concurrent UpdateVenue cannot shrink it below this roster before commit.
		venue, err := s.venueRepo.GetByIDForUpdate(ctx, fields.VenueID)
		if err != nil {
			return err
		}
		if venue.Capacity < event.ParticipantsNo {
			return fmt.Errorf("%w: venue holds %d, %d registered", domain.ErrCapacityBelowRoster, venue.Capacity, event.ParticipantsNo)
		}
		event.Apply(fields)
		event.UpdatedAt = time.Now()
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actor domain.Principal, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isDecision(err) {
			return err
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !domain.CanDeleteEvent(actor, event) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if isDecision(err) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	if err != nil {
		return nil, fmt.Errorf("get venue: %w", err)
	}
	volunteers, err := s.rosterRepo.Count(ctx, domain.RosterVolunteer, eventID)
	if err != nil {
		return nil, fmt.Errorf("count volunteers: %w", err)
	}
	attendees, err := s.rosterRepo.Count(ctx, domain.RosterAttendee, eventID)
	if err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}
	return &domain.EventDetails{
		Event:      event,
		Venue:      venue,
		Volunteers: volunteers,
		Attendees:  attendees,
	}, nil
}

func (s *eventService) ListConfirmedEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByStatus(ctx, domain.EventStatusConfirmed, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list confirmed events: %w", err)
	}
	return nonNilEvents(events), total, nil
}

func (s *eventService) ListHostedEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByHostID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list hosted events: %w", err)
	}
	return nonNilEvents(events), nil
}

func (s *eventService) ListPendingEvents(ctx context.Context, actor domain.Principal, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanReviewEvents(actor) {
		return nil, 0, domain.ErrForbidden
	}
	events, total, err := s.eventRepo.ListByStatus(ctx, domain.EventStatusPending, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending events: %w", err)
	}
	return nonNilEvents(events), total, nil
}

func (s *eventService) CheckAvailability(ctx context.Context, actor domain.Principal, eventID string) (*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.CanReviewEvents(actor) {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	availability, err := s.availability.IsAvailable(ctx, event.Slot(), event.ID)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("check availability: %w", err)
	}
	return availability, nil
}

// ApproveOrReject reviews a Pending event. For Confirmed the event row and then the venue row are
// locked, so every confirmation at a venue serialises and the conflict check sees all committed ones.
func (s *eventService) ApproveOrReject(ctx context.Context, actor domain.Principal, eventID string, status domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.transition(ctx, actor, eventID, status)
	s.metrics.RecordTransition(status, outcomeOf(err))
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("transition event: %w", err)
	}

	s.notifyHost(ctx, event)
	return event, nil
}

func (s *eventService) transition(ctx context.Context, actor domain.Principal, eventID string, status domain.EventStatus) (*domain.Event, error) {
	if !domain.CanReviewEvents(actor) {
		return nil, domain.ErrForbidden
	}
	if status != domain.EventStatusConfirmed && status != domain.EventStatusRejected {
		return nil, fmt.Errorf("%w: cannot move an event to %s", domain.ErrInvalidStatus, status)
	}

	var reviewed *domain.Event
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status != domain.EventStatusPending {
			return fmt.Errorf("%w: event is already %s", domain.ErrInvalidStatus, event.Status)
		}
		if status == domain.EventStatusConfirmed {
			if _, err := s.venueRepo.GetByIDForUpdate(ctx, event.VenueID); err != nil {
				return err
			}
			availability, err := s.availability.IsAvailable(ctx, event.Slot(), event.ID)
			if err != nil {
				return err
			}
			if !availability.Available {
				return domain.ErrSlotConflict
			}
		}
		if err := s.eventRepo.UpdateStatus(ctx, event.ID, status); err != nil {
			return err
		}
		event.Status = status
		reviewed = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// notifyHost emails the host about a review. Failures are logged and never undo the transition.
func (s *eventService) notifyHost(ctx context.Context, event *domain.Event) {
	host, err := s.userRepo.GetByID(ctx, event.HostID)
	if err != nil {
		s.logger.WarnContext(ctx, "event status email skipped", "event_id", event.ID, "err", err)
		return
	}
	venueName := ""
	if venue, err := s.venueRepo.GetByID(ctx, event.VenueID); err == nil {
		venueName = venue.Name
	}
	data := &domain.EventStatusEmailData{
		Email:     host.Email,
		HostName:  host.Name,
		EventName: event.Name,
		Date:      event.Date.String(),
		StartTime: event.StartTime.String(),
		EndTime:   event.EndTime.String(),
		VenueName: venueName,
		Status:    string(event.Status),
	}
	if err := s.emailService.SendEventStatus(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "event status email failed", "event_id", event.ID, "err", err)
	}
}

func nonNilEvents(events []*domain.Event) []*domain.Event {
	if events == nil {
		return []*domain.Event{}
	}
	return events
}
