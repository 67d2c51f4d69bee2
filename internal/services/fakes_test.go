package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"venuebooking/internal/domain"
)

type fakeTxKey struct{}

// fakeTx tracks the row locks one transaction holds and the order it took them in.
type fakeTx struct {
	held  map[string]*sync.Mutex
	order []string
}

// fakeTxManager stands in for Postgres row locks. Each key taken through lock is held by
// its transaction until WithinTx returns, so only code that actually locks is serialised.
type fakeTxManager struct {
	mu      sync.Mutex
	rows    map[string]*sync.Mutex
	calls   int
	history [][]string
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{rows: make(map[string]*sync.Mutex)}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		return fn(ctx)
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	tx := &fakeTx{held: make(map[string]*sync.Mutex)}
	defer func() {
		for _, row := range tx.held {
			row.Unlock()
		}
		m.mu.Lock()
		m.history = append(m.history, tx.order)
		m.mu.Unlock()
	}()
	return fn(context.WithValue(ctx, fakeTxKey{}, tx))
}

// lock blocks until the row is free. Outside a transaction it is a no-op, like FOR UPDATE in autocommit.
func (m *fakeTxManager) lock(ctx context.Context, key string) {
	tx, ok := ctx.Value(fakeTxKey{}).(*fakeTx)
	if !ok {
		return
	}
	if _, held := tx.held[key]; held {
		return
	}
	m.mu.Lock()
	row, ok := m.rows[key]
	if !ok {
		row = &sync.Mutex{}
		m.rows[key] = row
	}
	m.mu.Unlock()

	row.Lock()
	tx.held[key] = row
	tx.order = append(tx.order, key)
}

// lastLocks returns the lock order of the most recently finished transaction.
func (m *fakeTxManager) lastLocks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// fakeEventRepo is an in-memory EventRepository for tests. It stores and returns copies.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
	locks  *fakeTxManager
}

func newFakeEventRepo(locks *fakeTxManager) *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
		locks:  locks,
	}
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = copyEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return copyEvent(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.locks.lock(ctx, "event:"+id)
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = copyEvent(e)
	return nil
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) LockByVenueID(ctx context.Context, venueID string) error {
	for _, e := range f.filter(func(e *domain.Event) bool { return e.VenueID == venueID }) {
		f.locks.lock(ctx, "event:"+e.ID)
	}
	return nil
}

func (f *fakeEventRepo) setParticipantsNo(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		e.ParticipantsNo = n
	}
}

func (f *fakeEventRepo) filter(keep func(e *domain.Event) bool) []*domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.byID {
		if keep(e) {
			out = append(out, copyEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEventRepo) ListByStatus(ctx context.Context, status domain.EventStatus, params domain.PaginationParams) ([]*domain.Event, int, error) {
	all := f.filter(func(e *domain.Event) bool { return e.Status == status })
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PageSize
	if params.PageSize <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f *fakeEventRepo) ListByHostID(ctx context.Context, hostID string) ([]*domain.Event, error) {
	return f.filter(func(e *domain.Event) bool { return e.HostID == hostID }), nil
}

func (f *fakeEventRepo) ListConfirmedOverlapping(ctx context.Context, slot domain.Slot, excludeEventID string) ([]*domain.Event, error) {
	return f.filter(func(e *domain.Event) bool {
		return e.ID != excludeEventID && e.Status == domain.EventStatusConfirmed && slot.Overlaps(e.Slot())
	}), nil
}

// fakeVenueRepo is an in-memory VenueRepository. MaxParticipants reads the event fake.
type fakeVenueRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Venue
	nextID int
	events *fakeEventRepo
	locks  *fakeTxManager
}

func newFakeVenueRepo(events *fakeEventRepo, locks *fakeTxManager) *fakeVenueRepo {
	return &fakeVenueRepo{byID: make(map[string]*domain.Venue), nextID: 1, events: events, locks: locks}
}

func (f *fakeVenueRepo) Create(ctx context.Context, v *domain.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = fmt.Sprintf("venue-%d", f.nextID)
	f.nextID++
	c := *v
	f.byID[v.ID] = &c
	return nil
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (f *fakeVenueRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Venue, error) {
	if _, err := f.GetByID(ctx, id); err != nil {
		return nil, err
	}
	f.locks.lock(ctx, "venue:"+id)
	return f.GetByID(ctx, id)
}

func (f *fakeVenueRepo) List(ctx context.Context) ([]*domain.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Venue
	for _, v := range f.byID {
		c := *v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeVenueRepo) Update(ctx context.Context, v *domain.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[v.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *v
	f.byID[v.ID] = &c
	return nil
}

func (f *fakeVenueRepo) Delete(ctx context.Context, id string) error {
	f.locks.lock(ctx, "venue:"+id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVenueRepo) MaxParticipants(ctx context.Context, venueID string) (int, error) {
	max := 0
	for _, e := range f.events.filter(func(e *domain.Event) bool { return e.VenueID == venueID }) {
		if e.ParticipantsNo > max {
			max = e.ParticipantsNo
		}
	}
	return max, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
	// onDelete mirrors the ON DELETE CASCADE rules of the schema.
	onDelete func(userID string)
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), byEmail: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	u, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return domain.ErrUserNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, u.Email)
	f.mu.Unlock()
	if f.onDelete != nil {
		f.onDelete(id)
	}
	return nil
}

// fakeRosterRepo keeps the three rosters as role -> event -> user sets.
type fakeRosterRepo struct {
	mu      sync.Mutex
	entries map[domain.RosterRole]map[string]map[string]bool
	events  *fakeEventRepo
	users   *fakeUserRepo
}

func newFakeRosterRepo(events *fakeEventRepo, users *fakeUserRepo) *fakeRosterRepo {
	return &fakeRosterRepo{
		entries: make(map[domain.RosterRole]map[string]map[string]bool),
		events:  events,
		users:   users,
	}
}

func (f *fakeRosterRepo) Add(ctx context.Context, entry *domain.RosterEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	byEvent, ok := f.entries[entry.Role]
	if !ok {
		byEvent = make(map[string]map[string]bool)
		f.entries[entry.Role] = byEvent
	}
	members, ok := byEvent[entry.EventID]
	if !ok {
		members = make(map[string]bool)
		byEvent[entry.EventID] = members
	}
	if members[entry.UserID] {
		return domain.ErrAlreadyRegistered
	}
	members[entry.UserID] = true
	return nil
}

func (f *fakeRosterRepo) Contains(ctx context.Context, role domain.RosterRole, eventID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[role][eventID][userID], nil
}

func (f *fakeRosterRepo) Count(ctx context.Context, role domain.RosterRole, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries[role][eventID]), nil
}

func (f *fakeRosterRepo) ListUsers(ctx context.Context, role domain.RosterRole, eventID string) ([]*domain.User, error) {
	f.mu.Lock()
	ids := make([]string, 0, len(f.entries[role][eventID]))
	for id := range f.entries[role][eventID] {
		ids = append(ids, id)
	}
	f.mu.Unlock()
	sort.Strings(ids)
	var out []*domain.User
	for _, id := range ids {
		u, err := f.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRosterRepo) ListEvents(ctx context.Context, role domain.RosterRole, userID string) ([]*domain.Event, error) {
	f.mu.Lock()
	var ids []string
	for eventID, members := range f.entries[role] {
		if members[userID] {
			ids = append(ids, eventID)
		}
	}
	f.mu.Unlock()
	sort.Strings(ids)
	var out []*domain.Event
	for _, id := range ids {
		e, err := f.events.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// dropUser removes the user from every roster and deletes the events they host, as the cascade does.
func (f *fakeRosterRepo) dropUser(userID string) {
	hosted := f.events.filter(func(e *domain.Event) bool { return e.HostID == userID })
	f.mu.Lock()
	for _, byEvent := range f.entries {
		for eventID, members := range byEvent {
			delete(members, userID)
			for _, e := range hosted {
				if e.ID == eventID {
					delete(byEvent, eventID)
				}
			}
		}
	}
	f.mu.Unlock()
	for _, e := range hosted {
		_ = f.events.Delete(context.Background(), e.ID)
	}
}

func (f *fakeRosterRepo) SyncParticipantsNo(ctx context.Context, eventID string) (int, error) {
	n, _ := f.Count(ctx, domain.RosterParticipant, eventID)
	f.events.setParticipantsNo(eventID, n)
	return n, nil
}

// fakeMetrics counts recorded decisions keyed by "label/outcome".
type fakeMetrics struct {
	mu            sync.Mutex
	registrations map[string]int
	transitions   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{registrations: make(map[string]int), transitions: make(map[string]int)}
}

func (m *fakeMetrics) RecordRegistration(role domain.RosterRole, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[string(role)+"/"+outcome]++
}

func (m *fakeMetrics) RecordTransition(status domain.EventStatus, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[string(status)+"/"+outcome]++
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	mu       sync.Mutex
	welcome  []*domain.WelcomeMessageEmailData
	statuses []*domain.EventStatusEmailData
	err      error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.welcome = append(f.welcome, data)
	return nil
}

func (f *fakeEmailService) SendEventStatus(ctx context.Context, data *domain.EventStatusEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, data)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return "hash:" + salt + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(user *domain.User, expiry time.Duration) (string, error) {
	return "token-" + user.ID, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires the services to a shared set of fakes.
type fixture struct {
	events  *fakeEventRepo
	venues  *fakeVenueRepo
	users   *fakeUserRepo
	rosters *fakeRosterRepo
	tx      *fakeTxManager
	metrics *fakeMetrics
	email   *fakeEmailService

	venueSvc domain.VenueService
	eventSvc domain.EventService
	regSvc   domain.RegistrationService
	authSvc  domain.AuthService
	admin    domain.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := newFakeTxManager()
	f := &fixture{
		events:  newFakeEventRepo(tx),
		users:   newFakeUserRepo(),
		tx:      tx,
		metrics: newFakeMetrics(),
		email:   &fakeEmailService{},
	}
	f.venues = newFakeVenueRepo(f.events, tx)
	f.rosters = newFakeRosterRepo(f.events, f.users)
	f.users.onDelete = f.rosters.dropUser
	timeout := 5 * time.Second
	f.venueSvc = NewVenueService(f.venues, f.events, f.tx, timeout)
	f.eventSvc = NewEventService(f.events, f.venues, f.rosters, f.users, NewAvailabilityChecker(f.events),
		f.tx, f.email, f.metrics, discardLogger(), timeout)
	f.regSvc = NewRegistrationService(f.events, f.venues, f.rosters, f.users, f.tx, f.metrics, timeout)
	f.authSvc = NewAuthService(f.users, f.rosters, f.events, f.tx, fakeHasher{}, fakeIssuer{}, f.email,
		nil, time.Hour, discardLogger(), timeout)
	f.admin = f.seedUser(t, "Admin", true).Principal()
	return f
}

func (f *fixture) seedUser(t *testing.T, name string, admin bool) *domain.User {
	t.Helper()
	now := time.Now()
	u := domain.NewUser(fmt.Sprintf("%s-%d@example.com", name, f.users.nextID), name, admin, now, now)
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (f *fixture) seedVenue(t *testing.T, capacity int) *domain.Venue {
	t.Helper()
	now := time.Now()
	v := domain.NewVenue(domain.VenueFields{Name: "Hall", Location: "Main St", Capacity: capacity}, now, now)
	if err := f.venues.Create(context.Background(), v); err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	return v
}

var testDay = domain.NewDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

func eventFields(venueID, start, end string) domain.EventFields {
	return domain.EventFields{
		Name:        "Meetup",
		Description: "Monthly meetup",
		Date:        testDay,
		StartTime:   domain.MustClockTime(start),
		EndTime:     domain.MustClockTime(end),
		VenueID:     venueID,
	}
}

func (f *fixture) seedEvent(t *testing.T, host *domain.User, venue *domain.Venue, start, end string, status domain.EventStatus) *domain.Event {
	t.Helper()
	e := domain.NewEvent(eventFields(venue.ID, start, end), host.ID, time.Now())
	e.Status = status
	if err := f.events.Create(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}
