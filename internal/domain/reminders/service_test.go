package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-vaccination-tracker/internal/domain/compliance"
	"vet-vaccination-tracker/internal/domain/protocol"
	"vet-vaccination-tracker/internal/platform/logger"
	"vet-vaccination-tracker/internal/ports/notify"
)

type fakeRepo struct {
	byID map[string]ReminderEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]ReminderEvent)}
}

func (r *fakeRepo) Create(_ context.Context, e ReminderEvent) error {
	r.byID[e.ID] = e
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (ReminderEvent, error) {
	e, ok := r.byID[id]
	if !ok {
		return ReminderEvent{}, ErrNotFound
	}
	return e, nil
}

func (r *fakeRepo) ListByPatient(_ context.Context, patientID string) ([]ReminderEvent, error) {
	out := make([]ReminderEvent, 0)
	for _, e := range r.byID {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListPending(_ context.Context, now time.Time) ([]ReminderEvent, error) {
	out := make([]ReminderEvent, 0)
	for _, e := range r.byID {
		if !e.Sent && !e.NotifyOn.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	e, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.Sent = true
	e.SentAt = &at
	r.byID[id] = e
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeNotifier struct {
	sent    []notify.Message
	failAll bool
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	if n.failAll {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func seedReminder(repo *fakeRepo, id, email string, notifyOn time.Time) {
	repo.byID[id] = ReminderEvent{
		ID:         id,
		PatientID:  "p1",
		DueDate:    notifyOn.AddDate(0, 0, 5),
		NotifyOn:   notifyOn,
		Title:      "Refuerzo de Polivalente",
		Message:    "mensaje",
		OwnerName:  "Ana",
		OwnerEmail: email,
	}
}

func TestPlanAndRecordPersistsReminders(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newTestScheduler(), nil, logger.Nop())

	applied := compliance.Entry{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)}
	created, err := svc.PlanAndRecord(
		context.Background(),
		protocol.SpeciesDog,
		[]compliance.Entry{applied},
		applied,
		3,
		Contact{PatientID: "p1", PetName: "Rocky", OwnerEmail: "ana@example.com"},
	)
	if err != nil {
		t.Fatalf("PlanAndRecord: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("esperaba 1 recordatorio, hubo %d", len(created))
	}

	stored, err := repo.GetByID(context.Background(), created[0].ID)
	if err != nil {
		t.Fatalf("el recordatorio no quedó persistido: %v", err)
	}
	if stored.DoseDefinitionID != "puppy-extra" {
		t.Errorf("target = %s, esperaba puppy-extra", stored.DoseDefinitionID)
	}
	if !stored.DueDate.Equal(day(2024, 1, 15)) {
		t.Errorf("due = %v", stored.DueDate)
	}
}

func TestPlanAndRecordNoContact(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newTestScheduler(), nil, logger.Nop())

	applied := compliance.Entry{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)}
	_, err := svc.PlanAndRecord(
		context.Background(),
		protocol.SpeciesDog,
		[]compliance.Entry{applied},
		applied,
		3,
		Contact{PatientID: "p1", PetName: "Rocky"},
	)
	if !errors.Is(err, ErrNoContact) {
		t.Fatalf("err = %v, esperaba ErrNoContact", err)
	}
	if len(repo.byID) != 0 {
		t.Errorf("no debía persistirse nada, hay %d", len(repo.byID))
	}
}

func TestDispatchPending(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, newTestScheduler(), notifier, logger.Nop())

	now := day(2024, 6, 10)
	seedReminder(repo, "r-due", "ana@example.com", day(2024, 6, 8))
	seedReminder(repo, "r-no-email", "", day(2024, 6, 8))
	seedReminder(repo, "r-future", "ana@example.com", day(2024, 7, 1))

	sent, err := svc.DispatchPending(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, esperaba 1", sent)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ReminderID != "r-due" {
		t.Fatalf("despacho inesperado: %+v", notifier.sent)
	}

	if ev := repo.byID["r-due"]; !ev.Sent || ev.SentAt == nil || !ev.SentAt.Equal(now) {
		t.Errorf("r-due debía quedar marcado enviado: %+v", ev)
	}
	if ev := repo.byID["r-no-email"]; ev.Sent {
		t.Error("sin email se saltea, no se marca enviado")
	}
	if ev := repo.byID["r-future"]; ev.Sent {
		t.Error("un recordatorio futuro no debe despacharse")
	}
}

func TestDispatchPendingSendFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newTestScheduler(), &fakeNotifier{failAll: true}, logger.Nop())

	seedReminder(repo, "r-due", "ana@example.com", day(2024, 6, 8))

	sent, err := svc.DispatchPending(context.Background(), day(2024, 6, 10))
	if err != nil {
		t.Fatalf("un fallo de envío no corta el lote: %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, esperaba 0", sent)
	}
	if repo.byID["r-due"].Sent {
		t.Error("un envío fallido no debe marcarse enviado")
	}
}

func TestDispatchPendingWithoutNotifier(t *testing.T) {
	svc := NewService(newFakeRepo(), newTestScheduler(), nil, logger.Nop())

	if _, err := svc.DispatchPending(context.Background(), time.Now()); !errors.Is(err, ErrNotifierNotConfigured) {
		t.Fatalf("err = %v, esperaba ErrNotifierNotConfigured", err)
	}
}

func TestMarkSent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, newTestScheduler(), nil, logger.Nop())
	svc.now = func() time.Time { return day(2024, 6, 10) }

	seedReminder(repo, "r1", "ana@example.com", day(2024, 6, 8))

	ev, err := svc.MarkSent(context.Background(), "r1")
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if !ev.Sent || ev.SentAt == nil || !ev.SentAt.Equal(day(2024, 6, 10)) {
		t.Errorf("evento no marcado: %+v", ev)
	}
}
