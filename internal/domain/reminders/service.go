package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-vaccination-tracker/internal/domain/compliance"
	"vet-vaccination-tracker/internal/domain/protocol"
	"vet-vaccination-tracker/internal/platform/logger"
	"vet-vaccination-tracker/internal/ports/notify"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrNotifierNotConfigured = errors.New("notifier not configured")
)

type Service struct {
	repo     Repository
	sched    *Scheduler
	notifier notify.Notifier // puede ser nil (sin despacho saliente)
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, sched *Scheduler, notifier notify.Notifier, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		sched:    sched,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// PlanAndRecord corre scheduler + builder para una dosis recién aplicada y
// persiste los recordatorios resultantes. No deduplica: correrlo dos veces
// por el mismo evento crea duplicados (clave natural expuesta en el modelo,
// unicidad a criterio del store).
//
// ErrNoContact se propaga para que el caller lo degrade a advertencia: la
// dosis ya quedó registrada y no debe bloquearse por un recordatorio fallido.
func (s *Service) PlanAndRecord(
	ctx context.Context,
	species protocol.Species,
	entries []compliance.Entry,
	applied compliance.Entry,
	patientAgeMonths int,
	contact Contact,
) ([]ReminderEvent, error) {
	plans := s.sched.PlanFor(species, entries, applied, patientAgeMonths)
	if len(plans) == 0 {
		return nil, nil
	}

	now := s.now()
	created := make([]ReminderEvent, 0, len(plans))
	for _, plan := range plans {
		ev, err := BuildEvent(plan, contact, now)
		if err != nil {
			return created, err
		}
		if err := s.repo.Create(ctx, ev); err != nil {
			return created, err
		}
		created = append(created, ev)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (ReminderEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ReminderEvent{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]ReminderEvent, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Delete borra el recordatorio (acción explícita del usuario; el motor nunca
// borra por su cuenta).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// MarkSent registra que el notificador externo despachó el aviso.
func (s *Service) MarkSent(ctx context.Context, id string) (ReminderEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ReminderEvent{}, ErrInvalidInput
	}
	if err := s.repo.MarkSent(ctx, id, s.now()); err != nil {
		return ReminderEvent{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// DispatchPending entrega al notificador los recordatorios vencidos
// (NotifyOn <= now, no enviados). Recordatorios sin email se saltean con
// warning; un fallo de envío no corta el lote. Devuelve cuántos salieron.
func (s *Service) DispatchPending(ctx context.Context, now time.Time) (int, error) {
	if s.notifier == nil {
		return 0, ErrNotifierNotConfigured
	}

	pending, err := s.repo.ListPending(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range pending {
		if strings.TrimSpace(ev.OwnerEmail) == "" {
			s.log.Warn("skipping reminder without email", map[string]any{
				"reminder_id": ev.ID,
				"patient_id":  ev.PatientID,
			})
			continue
		}

		msg := notify.Message{
			ReminderID: ev.ID,
			PatientID:  ev.PatientID,
			ToName:     ev.OwnerName,
			ToEmail:    ev.OwnerEmail,
			ToPhone:    ev.OwnerPhone,
			Subject:    ev.Title,
			Body:       ev.Message,
			DueDate:    ev.DueDate,
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.Error("reminder dispatch failed", map[string]any{
				"reminder_id": ev.ID,
				"error":       err.Error(),
			})
			continue
		}

		if err := s.repo.MarkSent(ctx, ev.ID, now); err != nil {
			s.log.Error("could not mark reminder as sent", map[string]any{
				"reminder_id": ev.ID,
				"error":       err.Error(),
			})
			continue
		}
		sent++
	}
	return sent, nil
}
