package postgres

import (
	"context"
	"database/sql"
	"errors"

	"venuebooking/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, description, date, start_time, end_time, venue_id, host_id, status, participants_no, booking_time, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	err := s.Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.StartTime, &e.EndTime,
		&e.VenueID, &e.HostID, &status, &e.ParticipantsNo, &e.BookingTime, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, date, start_time, end_time, venue_id, host_id, status, participants_no, booking_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.Description, e.Date, e.StartTime, e.EndTime, e.VenueID, e.HostID,
		string(e.Status), e.ParticipantsNo, e.BookingTime, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) getOne(ctx context.Context, query, id string) (*domain.Event, error) {
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, date = $4, start_time = $5, end_time = $6, venue_id = $7, status = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Date, e.StartTime, e.EndTime, e.VenueID, string(e.Status), e.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the event; roster rows cascade.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) LockByVenueID(ctx context.Context, venueID string) error {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT id FROM events WHERE venue_id = $1 ORDER BY id FOR UPDATE`, venueID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *eventRepository) ListByStatus(ctx context.Context, status domain.EventStatus, params domain.PaginationParams) ([]*domain.Event, int, error) {
	db := conn(ctx, r.DB)
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE status = $1`, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1
		ORDER BY date, start_time, id
		LIMIT $2 OFFSET $3
	`
	rows, err := db.QueryContext(ctx, query, string(status), params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByHostID(ctx context.Context, hostID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE host_id = $1
		ORDER BY booking_time DESC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListConfirmedOverlapping(ctx context.Context, slot domain.Slot, excludeEventID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE venue_id = $1
		  AND date = $2
		  AND status = 'Confirmed'
		  AND start_time < $3
		  AND end_time > $4
		  AND ($5 = '' OR id::text <> $5)
		ORDER BY start_time
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, slot.VenueID, slot.Date, slot.End, slot.Start, excludeEventID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
