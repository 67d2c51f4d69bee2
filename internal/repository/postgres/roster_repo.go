package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"venuebooking/internal/domain"
)

// rosterTables maps each role to its join table. Table names never come from input.
var rosterTables = map[domain.RosterRole]string{
	domain.RosterParticipant: "event_participants",
	domain.RosterVolunteer:   "event_volunteers",
	domain.RosterAttendee:    "event_attendees",
}

type rosterRepository struct {
	DB *sql.DB
}

func NewRosterRepository(db *sql.DB) domain.RosterRepository {
	return &rosterRepository{DB: db}
}

func rosterTable(role domain.RosterRole) (string, error) {
	table, ok := rosterTables[role]
	if !ok {
		return "", fmt.Errorf("unknown roster role %q: %w", role, domain.ErrInvalidInput)
	}
	return table, nil
}

func (r *rosterRepository) Add(ctx context.Context, entry *domain.RosterEntry) error {
	table, err := rosterTable(entry.Role)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (event_id, user_id, created_at) VALUES ($1, $2, $3)`
	_, err = conn(ctx, r.DB).ExecContext(ctx, query, entry.EventID, entry.UserID, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *rosterRepository) Contains(ctx context.Context, role domain.RosterRole, eventID, userID string) (bool, error) {
	table, err := rosterTable(role)
	if err != nil {
		return false, err
	}
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *rosterRepository) Count(ctx context.Context, role domain.RosterRole, eventID string) (int, error) {
	table, err := rosterTable(role)
	if err != nil {
		return 0, err
	}
	var n int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *rosterRepository) ListUsers(ctx context.Context, role domain.RosterRole, eventID string) ([]*domain.User, error) {
	table, err := rosterTable(role)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT u.id, u.email, u.name, u.is_admin, u.created_at, u.updated_at
		FROM ` + table + ` r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at, u.id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *rosterRepository) ListEvents(ctx context.Context, role domain.RosterRole, userID string) ([]*domain.Event, error) {
	table, err := rosterTable(role)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT e.id, e.name, e.description, e.date, e.start_time, e.end_time, e.venue_id, e.host_id,
		       e.status, e.participants_no, e.booking_time, e.updated_at
		FROM ` + table + ` r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.date, e.start_time
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *rosterRepository) SyncParticipantsNo(ctx context.Context, eventID string) (int, error) {
	query := `
		UPDATE events
		SET participants_no = (SELECT COUNT(*) FROM event_participants WHERE event_id = $1)
		WHERE id = $1
		RETURNING participants_no
	`
	var n int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
