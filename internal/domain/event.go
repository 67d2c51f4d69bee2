package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventStatus is the scheduling approval state of an event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "Pending"
	EventStatusConfirmed EventStatus = "Confirmed"
	EventStatusRejected  EventStatus = "Rejected"
)

// ParseEventStatus accepts the three lifecycle states, case-insensitively.
func ParseEventStatus(s string) (EventStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return EventStatusPending, nil
	case "confirmed":
		return EventStatusConfirmed, nil
	case "rejected":
		return EventStatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ResetStatusOnEdit is the re-review policy: any host edit, even one that changes nothing,
// sends the event back to Pending.
const ResetStatusOnEdit = true

// Event is a proposed or scheduled occupation of a venue slot.
// swagger:model Event
type Event struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Date           Date        `json:"date"`
	StartTime      ClockTime   `json:"start_time"`
	EndTime        ClockTime   `json:"end_time"`
	VenueID        string      `json:"venue_id"`
	HostID         string      `json:"host_id"`
	Status         EventStatus `json:"status"`
	ParticipantsNo int         `json:"participants_no"`
	BookingTime    time.Time   `json:"booking_time"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// EventFields are the host-editable fields of an event. Updates replace all of them.
type EventFields struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        Date      `json:"date"`
	StartTime   ClockTime `json:"start_time"`
	EndTime     ClockTime `json:"end_time"`
	VenueID     string    `json:"venue_id"`
}

// Validate trims text and checks that the requested slot is well formed.
func (f *EventFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.VenueID = strings.TrimSpace(f.VenueID)
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return f.Slot().Validate()
}

func (f EventFields) Slot() Slot {
	return Slot{VenueID: f.VenueID, Date: f.Date, Start: f.StartTime, End: f.EndTime}
}

// NewEvent returns a Pending event hosted by hostID. ID is typically set by the repository on create.
func NewEvent(f EventFields, hostID string, bookingTime time.Time) *Event {
	e := &Event{
		HostID:      hostID,
		Status:      EventStatusPending,
		BookingTime: bookingTime,
		UpdatedAt:   bookingTime,
	}
	e.Apply(f)
	return e
}

// Apply replaces the schedule fields. Under ResetStatusOnEdit the event returns to Pending.
func (e *Event) Apply(f EventFields) {
	e.Name = f.Name
	e.Description = f.Description
	e.Date = f.Date
	e.StartTime = f.StartTime
	e.EndTime = f.EndTime
	e.VenueID = f.VenueID
	if ResetStatusOnEdit {
		e.Status = EventStatusPending
	}
}

// Slot returns the venue time the event occupies once Confirmed.
func (e *Event) Slot() Slot {
	return Slot{VenueID: e.VenueID, Date: e.Date, Start: e.StartTime, End: e.EndTime}
}

// EventDetails bundles an event with its venue and roster sizes.
// swagger:model EventDetails
type EventDetails struct {
	Event      *Event `json:"event"`
	Venue      *Venue `json:"venue"`
	Volunteers int    `json:"volunteers"`
	Attendees  int    `json:"attendees"`
}

// Availability is the answer of the availability checker.
// swagger:model Availability
type Availability struct {
	Available   bool     `json:"available"`
	Conflicting []*Event `json:"conflicting"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate locks the event row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	// Update replaces the schedule fields and status of the stored event.
	Update(ctx context.Context, event *Event) error
	UpdateStatus(ctx context.Context, id string, status EventStatus) error
	Delete(ctx context.Context, id string) error
	// LockByVenueID locks every event row at the venue in ID order until the surrounding transaction ends.
	LockByVenueID(ctx context.Context, venueID string) error
	ListByStatus(ctx context.Context, status EventStatus, params PaginationParams) ([]*Event, int, error)
	ListByHostID(ctx context.Context, hostID string) ([]*Event, error)
	// ListConfirmedOverlapping returns Confirmed events whose slot overlaps the given one,
	// excluding excludeEventID when it is not empty.
	ListConfirmedOverlapping(ctx context.Context, slot Slot, excludeEventID string) ([]*Event, error)
}

// AvailabilityChecker decides whether a slot is free of other Confirmed events.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, slot Slot, excludeEventID string) (*Availability, error)
}

// EventService is the Event Lifecycle Manager.
type EventService interface {
	CreateEvent(ctx context.Context, actor Principal, fields EventFields) (*Event, error)
	UpdateEvent(ctx context.Context, actor Principal, eventID string, fields EventFields) (*Event, error)
	DeleteEvent(ctx context.Context, actor Principal, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*EventDetails, error)
	ListConfirmedEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListHostedEvents(ctx context.Context, actor Principal) ([]*Event, error)
	ListPendingEvents(ctx context.Context, actor Principal, params PaginationParams) ([]*Event, int, error)
	CheckAvailability(ctx context.Context, actor Principal, eventID string) (*Availability, error)
	// ApproveOrReject moves an event to Confirmed or Rejected. Confirmation re-checks
	// availability inside the same transaction as the status write.
	ApproveOrReject(ctx context.Context, actor Principal, eventID string, status EventStatus) (*Event, error)
}
