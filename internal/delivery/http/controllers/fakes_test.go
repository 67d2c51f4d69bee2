package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/domain"
)

const (
	testEventID = "0b6f1a52-3c2d-4f8e-9a41-5e7d2c9b1a10"
	testVenueID = "7d1e4c9a-2b3f-4a6d-8e5c-1f0a9b8c7d20"
	testUserID  = "c3a9e2f1-6b4d-4e8a-9f7c-2d1b0a9e8f30"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// fakeEventService implements domain.EventService and records the last call's inputs.
type fakeEventService struct {
	event        *domain.Event
	events       []*domain.Event
	total        int
	details      *domain.EventDetails
	availability *domain.Availability
	err          error

	lastActor  domain.Principal
	lastID     string
	lastFields domain.EventFields
	lastStatus domain.EventStatus
	lastParams domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(ctx context.Context, actor domain.Principal, fields domain.EventFields) (*domain.Event, error) {
	f.lastActor, f.lastFields = actor, fields
	return f.event, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, actor domain.Principal, eventID string, fields domain.EventFields) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastFields = actor, eventID, fields
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, actor domain.Principal, eventID string) error {
	f.lastActor, f.lastID = actor, eventID
	return f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	f.lastID = eventID
	return f.details, f.err
}

func (f *fakeEventService) ListConfirmedEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListHostedEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	f.lastActor = actor
	return f.events, f.err
}

func (f *fakeEventService) ListPendingEvents(ctx context.Context, actor domain.Principal, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastActor, f.lastParams = actor, params
	return f.events, f.total, f.err
}

func (f *fakeEventService) CheckAvailability(ctx context.Context, actor domain.Principal, eventID string) (*domain.Availability, error) {
	f.lastActor, f.lastID = actor, eventID
	return f.availability, f.err
}

func (f *fakeEventService) ApproveOrReject(ctx context.Context, actor domain.Principal, eventID string, status domain.EventStatus) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastStatus = actor, eventID, status
	return f.event, f.err
}

type fakeVenueService struct {
	venue  *domain.Venue
	venues []*domain.Venue
	err    error

	lastActor  domain.Principal
	lastID     string
	lastFields domain.VenueFields
}

func (f *fakeVenueService) CreateVenue(ctx context.Context, actor domain.Principal, fields domain.VenueFields) (*domain.Venue, error) {
	f.lastActor, f.lastFields = actor, fields
	return f.venue, f.err
}

func (f *fakeVenueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	f.lastID = id
	return f.venue, f.err
}

func (f *fakeVenueService) ListVenues(ctx context.Context) ([]*domain.Venue, error) {
	return f.venues, f.err
}

func (f *fakeVenueService) UpdateVenue(ctx context.Context, actor domain.Principal, id string, fields domain.VenueFields) (*domain.Venue, error) {
	f.lastActor, f.lastID, f.lastFields = actor, id, fields
	return f.venue, f.err
}

func (f *fakeVenueService) DeleteVenue(ctx context.Context, actor domain.Principal, id string) error {
	f.lastActor, f.lastID = actor, id
	return f.err
}

type fakeRegistrationService struct {
	event      *domain.Event
	events     []*domain.Event
	users      []*domain.User
	attendance *domain.AttendanceResult
	err        error

	lastActor   domain.Principal
	lastEventID string
	lastUserID  string
	lastCall    string
}

func (f *fakeRegistrationService) RegisterParticipant(ctx context.Context, actor domain.Principal, eventID string) (*domain.Event, error) {
	f.lastActor, f.lastEventID, f.lastCall = actor, eventID, "participant"
	return f.event, f.err
}

func (f *fakeRegistrationService) RegisterVolunteer(ctx context.Context, actor domain.Principal, eventID string) (*domain.Event, error) {
	f.lastActor, f.lastEventID, f.lastCall = actor, eventID, "volunteer"
	return f.event, f.err
}

func (f *fakeRegistrationService) MarkAttendance(ctx context.Context, actor domain.Principal, eventID, userID string) (*domain.AttendanceResult, error) {
	f.lastActor, f.lastEventID, f.lastUserID = actor, eventID, userID
	return f.attendance, f.err
}

func (f *fakeRegistrationService) ListParticipants(ctx context.Context, actor domain.Principal, eventID string) ([]*domain.User, error) {
	f.lastActor, f.lastEventID = actor, eventID
	return f.users, f.err
}

func (f *fakeRegistrationService) ListParticipatingEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	f.lastActor, f.lastCall = actor, "participating"
	return f.events, f.err
}

func (f *fakeRegistrationService) ListVolunteeringEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	f.lastActor, f.lastCall = actor, "volunteering"
	return f.events, f.err
}

func (f *fakeRegistrationService) ListAttendedEvents(ctx context.Context, actor domain.Principal) ([]*domain.Event, error) {
	f.lastActor, f.lastCall = actor, "attended"
	return f.events, f.err
}

type fakeAuthService struct {
	token string
	user  *domain.User
	err   error

	lastName     string
	lastEmail    string
	lastPassword string
	lastID       string
	lastActor    domain.Principal
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	f.lastName, f.lastEmail, f.lastPassword = name, email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.lastID = id
	return f.user, f.err
}

func (f *fakeAuthService) DeleteAccount(ctx context.Context, actor domain.Principal, id string) error {
	f.lastActor, f.lastID = actor, id
	return f.err
}
