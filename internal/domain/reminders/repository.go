package reminders

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e ReminderEvent) error
	GetByID(ctx context.Context, id string) (ReminderEvent, error)
	ListByPatient(ctx context.Context, patientID string) ([]ReminderEvent, error)

	// ListPending devuelve los no enviados con NotifyOn <= now.
	ListPending(ctx context.Context, now time.Time) ([]ReminderEvent, error)

	MarkSent(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
