package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-vaccination-tracker/internal/domain/reminders"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

// Nota de esquema: (patient_id, dose_definition_id, due_date) es la clave
// natural del recordatorio. El motor no deduplica; si la clínica quiere
// unicidad alcanza con un índice único sobre esas tres columnas.
func (r *RemindersRepo) Create(ctx context.Context, e reminders.ReminderEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccine_reminders (
			id, patient_id, dose_definition_id,
			due_date, notify_on,
			sent, sent_at,
			title, message,
			pet_name, owner_name, owner_email, owner_phone,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		e.ID,
		e.PatientID,
		e.DoseDefinitionID,
		e.DueDate,
		e.NotifyOn,
		e.Sent,
		e.SentAt,
		e.Title,
		e.Message,
		e.PetName,
		e.OwnerName,
		e.OwnerEmail,
		e.OwnerPhone,
		e.CreatedAt,
	)
	return err
}

const reminderColumns = `
	id, patient_id, dose_definition_id,
	due_date, notify_on,
	sent, sent_at,
	title, message,
	pet_name, owner_name, owner_email, owner_phone,
	created_at
`

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.ReminderEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.ReminderEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+reminderColumns+`
		FROM vaccine_reminders
		WHERE id = $1
	`, id)

	e, err := scanReminder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return reminders.ReminderEvent{}, ErrNotFound
		}
		return reminders.ReminderEvent{}, err
	}
	return e, nil
}

func (r *RemindersRepo) ListByPatient(ctx context.Context, patientID string) ([]reminders.ReminderEvent, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM vaccine_reminders
		WHERE patient_id = $1
		ORDER BY due_date ASC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *RemindersRepo) ListPending(ctx context.Context, now time.Time) ([]reminders.ReminderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM vaccine_reminders
		WHERE sent = false AND notify_on <= $1
		ORDER BY notify_on ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *RemindersRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE vaccine_reminders
		SET sent = true, sent_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM vaccine_reminders
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReminder(row rowScanner) (reminders.ReminderEvent, error) {
	var e reminders.ReminderEvent
	var sentAt sql.NullTime

	if err := row.Scan(
		&e.ID,
		&e.PatientID,
		&e.DoseDefinitionID,
		&e.DueDate,
		&e.NotifyOn,
		&e.Sent,
		&sentAt,
		&e.Title,
		&e.Message,
		&e.PetName,
		&e.OwnerName,
		&e.OwnerEmail,
		&e.OwnerPhone,
		&e.CreatedAt,
	); err != nil {
		return reminders.ReminderEvent{}, err
	}

	if sentAt.Valid {
		t := sentAt.Time
		e.SentAt = &t
	}
	return e, nil
}

func collectReminders(rows *sql.Rows) ([]reminders.ReminderEvent, error) {
	out := make([]reminders.ReminderEvent, 0)
	for rows.Next() {
		e, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
