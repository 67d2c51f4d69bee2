package domain

import (
	"context"
	"time"
)

// RosterRole names one of the three membership relations between events and users.
type RosterRole string

const (
	RosterParticipant RosterRole = "participant"
	RosterVolunteer   RosterRole = "volunteer"
	RosterAttendee    RosterRole = "attendee"
)

// RosterEntry records one user's membership of an event roster.
// swagger:model RosterEntry
type RosterEntry struct {
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Role      RosterRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewRosterEntry returns an entry for the given role.
func NewRosterEntry(role RosterRole, eventID, userID string, createdAt time.Time) *RosterEntry {
	return &RosterEntry{
		EventID:   eventID,
		UserID:    userID,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// AttendanceResult reports the outcome of marking attendance. AlreadyMarked is true for a repeated mark.
// swagger:model AttendanceResult
type AttendanceResult struct {
	EventID       string `json:"event_id"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	AlreadyMarked bool   `json:"already_marked"`
}

// RosterRepository defines storage operations for the participant, volunteer and attendee rosters.
type RosterRepository interface {
	// Add inserts the entry. It returns ErrAlreadyRegistered when the user is already on the roster.
	Add(ctx context.Context, entry *RosterEntry) error
	Contains(ctx context.Context, role RosterRole, eventID, userID string) (bool, error)
	Count(ctx context.Context, role RosterRole, eventID string) (int, error)
	ListUsers(ctx context.Context, role RosterRole, eventID string) ([]*User, error)
	ListEvents(ctx context.Context, role RosterRole, userID string) ([]*Event, error)
	// SyncParticipantsNo recomputes events.participants_no from the participant roster and returns it.
	SyncParticipantsNo(ctx context.Context, eventID string) (int, error)
}

// RegistrationService is the Registration & Attendance Engine.
type RegistrationService interface {
	RegisterParticipant(ctx context.Context, actor Principal, eventID string) (*Event, error)
	RegisterVolunteer(ctx context.Context, actor Principal, eventID string) (*Event, error)
	MarkAttendance(ctx context.Context, actor Principal, eventID, userID string) (*AttendanceResult, error)
	ListParticipants(ctx context.Context, actor Principal, eventID string) ([]*User, error)
	ListParticipatingEvents(ctx context.Context, actor Principal) ([]*Event, error)
	ListVolunteeringEvents(ctx context.Context, actor Principal) ([]*Event, error)
	ListAttendedEvents(ctx context.Context, actor Principal) ([]*Event, error)
}
