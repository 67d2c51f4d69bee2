package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"venuebooking/internal/domain"
)

var venueRowColumns = []string{"id", "name", "location", "capacity", "created_at", "updated_at"}

func TestVenueRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO venues \(name, location, capacity, created_at, updated_at\)`).
		WithArgs("Hall A", "Riverside", 100, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("venue-1"))

	v := domain.NewVenue(domain.VenueFields{Name: "Hall A", Location: "Riverside", Capacity: 100}, now, now)
	require.NoError(t, NewVenueRepository(db).Create(context.Background(), v))
	require.Equal(t, "venue-1", v.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		forUpdate bool
		mock      func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM venues WHERE id = \$1$`).
					WithArgs("venue-1").
					WillReturnRows(sqlmock.NewRows(venueRowColumns).AddRow("venue-1", "Hall A", "Riverside", 100, now, now))
			},
		},
		{
			name:      "locks the row",
			forUpdate: true,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM venues WHERE id = \$1 FOR UPDATE`).
					WithArgs("venue-1").
					WillReturnRows(sqlmock.NewRows(venueRowColumns).AddRow("venue-1", "Hall A", "Riverside", 100, now, now))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM venues`).
					WithArgs("venue-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVenueRepository(db)
			var v *domain.Venue
			if tt.forUpdate {
				v, err = repo.GetByIDForUpdate(ctx, "venue-1")
			} else {
				v, err = repo.GetByID(ctx, "venue-1")
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 100, v.Capacity)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVenueRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM venues ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(venueRowColumns).
			AddRow("venue-1", "Hall A", "Riverside", 100, now, now).
			AddRow("venue-2", "Hall B", "Old town", 40, now, now))

	venues, err := NewVenueRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, venues, 2)
	require.Equal(t, "Hall B", venues[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueRepository_Update(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE venues`).
			WithArgs("venue-1", "Hall A", "Riverside", 80, updated).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

		v := &domain.Venue{ID: "venue-1", Name: "Hall A", Location: "Riverside", Capacity: 80, UpdatedAt: updated}
		require.NoError(t, NewVenueRepository(db).Update(ctx, v))
		require.Equal(t, created, v.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE venues`).WillReturnError(sql.ErrNoRows)

		err = NewVenueRepository(db).Update(ctx, &domain.Venue{ID: "venue-9"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestVenueRepository_DeleteAndMaxParticipants(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(participants_no\), 0\) FROM events WHERE venue_id = \$1`).
		WithArgs("venue-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(42))
	mock.ExpectExec(`DELETE FROM venues WHERE id = \$1`).
		WithArgs("venue-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewVenueRepository(db)
	max, err := repo.MaxParticipants(context.Background(), "venue-1")
	require.NoError(t, err)
	require.Equal(t, 42, max)
	require.ErrorIs(t, repo.Delete(context.Background(), "venue-1"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
