package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campushub/internal/domain"
	"campushub/internal/model"
)

const registrationColumns = `
	id, event_id, user_id, status, attendance_status, registration_date,
	check_in_time, check_out_time, cancelled_at, notes, qr_code_url, updated_at
`

// RegisterTx runs the capacity check and the insert as one atomic unit: the
// event row is locked FOR UPDATE so concurrent registrations for the same
// event serialize on the count-then-insert sequence, and the
// (event_id, user_id) unique constraint closes the duplicate race the
// pre-check cannot. The QR credential is issued and persisted inside the
// same transaction; a QR failure rolls the registration back. The
// confirmation outbox row commits together with the registration.
func (r *repository) RegisterTx(ctx context.Context, reg *model.Registration, now time.Time, issueQR func(registrationID int64) (string, error)) (*model.Registration, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var event model.Event
	err = tx.QueryRowContext(ctx, `
		SELECT id, start_date, registration_deadline, max_attendees, is_active
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, reg.EventID).Scan(
		&event.ID, &event.StartDate, &event.RegistrationDeadline,
		&event.MaxAttendees, &event.IsActive,
	)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	var occupied int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND status NOT IN ('CANCELLED', 'REJECTED')
	`, reg.EventID).Scan(&occupied)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	if err := domain.CanRegister(&event, occupied, now); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`, reg.EventID, reg.UserID).Scan(&existing)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to check duplicate registration: %w", err)
	}
	if existing > 0 {
		_ = tx.Rollback()
		return nil, domain.ErrAlreadyRegistered
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id, status, notes, registration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registration_date, updated_at
	`, reg.EventID, reg.UserID, reg.Status, reg.Notes, now).Scan(
		&reg.ID, &reg.RegistrationDate, &reg.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		if IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	qrCodeURL, err := issueQR(reg.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE registrations SET qr_code_url = $1 WHERE id = $2
	`, qrCodeURL, reg.ID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}
	reg.QRCodeURL = qrCodeURL

	msg := domain.NewOutboxMessage(domain.Intent{
		Kind:           domain.KindForStatus(reg.Status),
		RegistrationID: reg.ID,
	})
	if err := insertOutboxTx(ctx, tx, msg); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return reg, nil
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

func (r *repository) GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE event_id = $1
		ORDER BY registration_date DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistrationRows(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// UpdateRegistrationTx applies the resolved state-machine changes and
// persists one outbox row per notification intent in the same transaction.
func (r *repository) UpdateRegistrationTx(ctx context.Context, registrationID int64, changes domain.Changes, intents []domain.Intent) error {
	if changes.Empty() && len(intents) == 0 {
		return nil
	}

	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if !changes.Empty() {
		set := []string{"updated_at = NOW()"}
		args := []any{}
		arg := func(v any) string {
			args = append(args, v)
			return fmt.Sprintf("$%d", len(args))
		}

		if changes.Status != nil {
			set = append(set, "status = "+arg(*changes.Status))
		}
		if changes.AttendanceStatus != nil {
			set = append(set, "attendance_status = "+arg(string(*changes.AttendanceStatus)))
		}
		if changes.CheckInTime != nil {
			set = append(set, "check_in_time = "+arg(*changes.CheckInTime))
		}
		if changes.CheckOutTime != nil {
			set = append(set, "check_out_time = "+arg(*changes.CheckOutTime))
		}
		if changes.CancelledAt != nil {
			set = append(set, "cancelled_at = "+arg(*changes.CancelledAt))
		}
		if changes.Notes != nil {
			set = append(set, "notes = "+arg(*changes.Notes))
		}

		query := "UPDATE registrations SET " + strings.Join(set, ", ") +
			" WHERE id = " + arg(registrationID) + " RETURNING id"

		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			_ = tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrRegistrationNotFound
			}
			return fmt.Errorf("failed to update registration: %w", err)
		}
	}

	for _, intent := range intents {
		if err := insertOutboxTx(ctx, tx, domain.NewOutboxMessage(intent)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanRegistration(row *sql.Row) (*model.Registration, error) {
	var reg model.Registration
	var attendance, notes, qrCodeURL sql.NullString
	var checkIn, checkOut, cancelledAt sql.NullTime

	if err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &attendance,
		&reg.RegistrationDate, &checkIn, &checkOut, &cancelledAt,
		&notes, &qrCodeURL, &reg.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	fillRegistration(&reg, attendance, notes, qrCodeURL, checkIn, checkOut, cancelledAt)
	return &reg, nil
}

func scanRegistrationRows(rows *sql.Rows) (*model.Registration, error) {
	var reg model.Registration
	var attendance, notes, qrCodeURL sql.NullString
	var checkIn, checkOut, cancelledAt sql.NullTime

	if err := rows.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &attendance,
		&reg.RegistrationDate, &checkIn, &checkOut, &cancelledAt,
		&notes, &qrCodeURL, &reg.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	fillRegistration(&reg, attendance, notes, qrCodeURL, checkIn, checkOut, cancelledAt)
	return &reg, nil
}

func fillRegistration(reg *model.Registration, attendance, notes, qrCodeURL sql.NullString, checkIn, checkOut, cancelledAt sql.NullTime) {
	if attendance.Valid {
		reg.AttendanceStatus = model.AttendanceStatus(attendance.String)
	}
	if notes.Valid {
		reg.Notes = notes.String
	}
	if qrCodeURL.Valid {
		reg.QRCodeURL = qrCodeURL.String
	}
	reg.CheckInTime = timePtr(checkIn)
	reg.CheckOutTime = timePtr(checkOut)
	reg.CancelledAt = timePtr(cancelledAt)
}
