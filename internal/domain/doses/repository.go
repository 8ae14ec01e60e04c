package doses

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, d AppliedDose) error
	GetByID(ctx context.Context, id string) (AppliedDose, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]AppliedDose, error)
	Delete(ctx context.Context, id string) error
}

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
