package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campushub/internal/domain"
	"campushub/internal/model"
)

const eventColumns = `
	id, title, description, location, start_date, end_date,
	registration_deadline, max_attendees, is_active, creator_id,
	created_at, updated_at
`

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (title, description, location, start_date, end_date,
		                    registration_deadline, max_attendees, is_active, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
		e.RegistrationDeadline, e.MaxAttendees, e.IsActive, e.CreatorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartDate, &e.EndDate,
		&e.RegistrationDeadline, &e.MaxAttendees, &e.IsActive, &e.CreatorID,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &e, nil
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Location, &e.StartDate, &e.EndDate,
			&e.RegistrationDeadline, &e.MaxAttendees, &e.IsActive, &e.CreatorID,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_date = $4,
		    end_date = $5, registration_deadline = $6, max_attendees = $7,
		    is_active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
		e.RegistrationDeadline, e.MaxAttendees, e.IsActive, e.ID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// CountActiveRegistrations counts rows still occupying a seat.
func (r *repository) CountActiveRegistrations(ctx context.Context, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND status NOT IN ('CANCELLED', 'REJECTED')
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}
