package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Venue is a bookable place with a fixed participant capacity.
// swagger:model Venue
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VenueFields are the administrator-editable fields of a venue. Updates replace all of them.
type VenueFields struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// Validate trims the text fields and checks the capacity.
func (f *VenueFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Location = strings.TrimSpace(f.Location)
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if f.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a positive integer", ErrInvalidInput)
	}
	return nil
}

// NewVenue returns a new Venue with the given fields. ID is typically set by the repository on create.
func NewVenue(f VenueFields, createdAt, updatedAt time.Time) *Venue {
	return &Venue{
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// VenueRepository defines the interface for venue storage.
type VenueRepository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	// GetByIDForUpdate locks the venue row until the surrounding transaction ends.
	// Confirmations at the same venue serialise on this lock.
	GetByIDForUpdate(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context) ([]*Venue, error)
	Update(ctx context.Context, venue *Venue) error
	Delete(ctx context.Context, id string) error
	// MaxParticipants returns the largest participant roster among the venue's events.
	MaxParticipants(ctx context.Context, venueID string) (int, error)
}

// VenueService is the Venue Registry. Writes are administrator only, reads are open.
type VenueService interface {
	CreateVenue(ctx context.Context, actor Principal, fields VenueFields) (*Venue, error)
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context) ([]*Venue, error)
	UpdateVenue(ctx context.Context, actor Principal, id string, fields VenueFields) (*Venue, error)
	DeleteVenue(ctx context.Context, actor Principal, id string) error
}
