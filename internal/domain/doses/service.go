package doses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type ApplyInput struct {
	DoseDefinitionID string
	AppliedOn        time.Time
	Notes            string
}

// Apply registra una dosis aplicada. No valida contra el catálogo: registrar
// fuera de esquema está permitido (el age gate y los missing-prior solo
// advierten) y los ids históricos pueden no existir más.
func (s *Service) Apply(ctx context.Context, patientID, recordedBy string, in ApplyInput) (AppliedDose, error) {
	if strings.TrimSpace(patientID) == "" {
		return AppliedDose{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.DoseDefinitionID) == "" {
		return AppliedDose{}, ErrInvalidInput
	}
	if in.AppliedOn.IsZero() {
		return AppliedDose{}, ErrInvalidInput
	}
	if strings.TrimSpace(recordedBy) == "" {
		return AppliedDose{}, ErrInvalidInput
	}

	d := AppliedDose{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		DoseDefinitionID: strings.TrimSpace(in.DoseDefinitionID),
		AppliedOn:        in.AppliedOn,
		RecordedAt:       s.now(),
		RecordedBy:       recordedBy,
		Notes:            strings.TrimSpace(in.Notes),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return AppliedDose{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (AppliedDose, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AppliedDose{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]AppliedDose, error) {
	return s.repo.ListByPatient(ctx, patientID, filter)
}

// Delete elimina el registro por completo (el modelo no contempla void).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
