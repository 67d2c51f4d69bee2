package services

import (
	"context"
	"fmt"
	"time"

	"venuebooking/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	rosterRepo     domain.RosterRepository
	userRepo       domain.UserRepository
	txManager      domain.TxManager
	metrics        domain.BookingMetrics
	contextTimeout time.Duration
}

func NewRegistrationService(eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	rosterRepo domain.RosterRepository,
	userRepo domain.UserRepository,
	txManager domain.TxManager,
	metrics domain.BookingMetrics,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		rosterRepo:     rosterRepo,
		userRepo:       userRepo,
		txManager:      txManager,
		metrics:        metrics,
		contextTimeout: timeout,
	}
}

// RegisterParticipant adds the actor to the participant roster. The event and venue rows stay
// locked from the size check until the insert commits, so concurrent registrations cannot overfill.
func (s *registrationService) RegisterParticipant(ctx context.Context, actor domain.Principal, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.register(ctx, actor, eventID, domain.RosterParticipant, func(ctx context.Context, event *domain.Event) error {
		venue, err := s.venueRepo.GetByIDForUpdate(ctx, event.VenueID)
		if err != nil {
			return err
		}
		registered, err := s.rosterRepo.Count(ctx, domain.RosterParticipant, event.ID)
		if err != nil {
			return err
		}
		if registered >= venue.Capacity {
			return domain.ErrVenueFull
		}
		return nil
	})
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register participant: %w", err)
	}
	return event, nil
}

// RegisterVolunteer adds the actor to the volunteer roster. Volunteers have no capacity limit.
func (s *registrationService) RegisterVolunteer(ctx context.Context, actor domain.Principal, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.register(ctx, actor, eventID, domain.RosterVolunteer, nil)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register volunteer: %w", err)
	}
	return event, nil
}

func (s *registrationService) register(ctx context.Context, actor domain.Principal, eventID string, role domain.RosterRole, admit func(ctx context.Context, event *domain.Event) error) (*domain.Event, error) {
	if actor.UserID == "" {
		return nil, domain.ErrForbidden
	}

	var registered *domain.Event
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status != domain.EventStatusConfirmed {
			return domain.ErrEventNotConfirmed
		}
		exists, err := s.rosterRepo.Contains(ctx, role, event.ID, actor.UserID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}
		if admit != nil {
			if err := admit(ctx, event); err != nil {
				return err
			}
		}
		if err := s.rosterRepo.Add(ctx, domain.NewRosterEntry(role, event.ID, actor.UserID, time.Now())); err != nil {
			return err
		}
		if role == domain.RosterParticipant {
			n, err := s.rosterRepo.SyncParticipantsNo(ctx, event.ID)
			if err != nil {
				return err
			}
			event.ParticipantsNo = n
		}
		registered = event
		return nil
	})
	s.metrics.RecordRegistration(role, outcomeOf(err))
	if err != nil {
		return nil, err
	}
	return registered, nil
}

// MarkAttendance records that a participant attended. Checks run in a fixed order: the event and
// user must exist, the user must be a participant, and only then is the actor's role checked.
// Marking twice succeeds with AlreadyMarked set.
func (s *registrationService) MarkAttendance(ctx context.Context, actor domain.Principal, eventID, userID string) (*domain.AttendanceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.AttendanceResult
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		participant, err := s.rosterRepo.Contains(ctx, domain.RosterParticipant, event.ID, user.ID)
		if err != nil {
			return err
		}
		if !participant {
			return domain.ErrNotRegistered
		}
		volunteer, err := s.rosterRepo.Contains(ctx, domain.RosterVolunteer, event.ID, actor.UserID)
		if err != nil {
			return err
		}
		if !domain.CanManageRoster(actor, event, volunteer) {
			return domain.ErrForbidden
		}

		result = &domain.AttendanceResult{EventID: event.ID, UserID: user.ID, UserName: user.Name}
		attended, err := s.rosterRepo.Contains(ctx, domain.RosterAttendee, event.ID, user.ID)
		if err != nil {
			return err
		}
		if attended {
			result.AlreadyMarked = true
			return nil
		}
		return s.rosterRepo.Add(ctx, domain.NewRosterEntry(domain.RosterAttendee, event.ID, user.ID, time.Now()))
	})
	s.metrics.RecordRegistration(domain.RosterAttendee, outcomeOf(err))
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("mark attendance: %w", err)
	}
	return result, nil
}

func (s *registrationService) ListParticipants(ctx context.Context, actor domain.Principal, eventID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isDecision(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	volunteer, err := s.rosterRepo.Contains(ctx, domain.RosterVolunteer, event.ID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("check volunteer: %w", err)
	}
	if !domain.CanManageRoster(actor, event, volunteer) {
		return nil, domain.ErrForbidden
	}
	users, err := s.rosterRepo.ListUsers(ctx, domain.RosterParticipant, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *registrationService) ListParticipatingEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	return s.listEvents(ctx, actor, domain.RosterParticipant)
}

func (s *registrationService) ListVolunteeringEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	return s.listEvents(ctx, actor, domain.RosterVolunteer)
}

func (s *registrationService) ListAttendedEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	return s.listEvents(ctx, actor, domain.RosterAttendee)
}

func (s *registrationService) listEvents(ctx context.Context, actor domain.Principal, role domain.RosterRole) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.rosterRepo.ListEvents(ctx, role, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", role, err)
	}
	return nonNilEvents(events), nil
}
