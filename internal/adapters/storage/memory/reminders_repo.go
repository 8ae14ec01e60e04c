package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"vet-vaccination-tracker/internal/domain/reminders"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.ReminderEvent
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.ReminderEvent),
	}
}

func (r *reminderRepo) Create(ctx context.Context, e reminders.ReminderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("reminder already exists")
	}
	// Sin chequeo de clave natural: la deduplicación es decisión del caller.
	r.byID[e.ID] = e
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.ReminderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return reminders.ReminderEvent{}, ErrNotFound
	}
	return e, nil
}

func (r *reminderRepo) ListByPatient(ctx context.Context, patientID string) ([]reminders.ReminderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.ReminderEvent, 0)
	for _, e := range r.byID {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (r *reminderRepo) ListPending(ctx context.Context, now time.Time) ([]reminders.ReminderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.ReminderEvent, 0)
	for _, e := range r.byID {
		if e.Sent {
			continue
		}
		if e.NotifyOn.After(now) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].NotifyOn.Before(out[j].NotifyOn)
	})
	return out, nil
}

func (r *reminderRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.Sent = true
	e.SentAt = &at
	r.byID[id] = e
	return nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
