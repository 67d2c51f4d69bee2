package postgres

import (
	"context"
	"database/sql"
	"errors"

	"venuebooking/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{
		DB: db,
	}
}

const venueColumns = `id, name, location, capacity, created_at, updated_at`

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, location, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query, v.Name, v.Location, v.Capacity, v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *venueRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *venueRepository) getOne(ctx context.Context, query, id string) (*domain.Venue, error) {
	v := &domain.Venue{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v := &domain.Venue{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *venueRepository) Update(ctx context.Context, v *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $2, location = $3, capacity = $4, updated_at = $5
		WHERE id = $1
		RETURNING created_at
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, v.ID, v.Name, v.Location, v.Capacity, v.UpdatedAt).Scan(&v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the venue; events at the venue and their rosters go with it (ON DELETE CASCADE).
func (r *venueRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *venueRepository) MaxParticipants(ctx context.Context, venueID string) (int, error) {
	query := `SELECT COALESCE(MAX(participants_no), 0) FROM events WHERE venue_id = $1`
	var max int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, venueID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
