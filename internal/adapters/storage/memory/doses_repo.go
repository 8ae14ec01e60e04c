package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"vet-vaccination-tracker/internal/domain/doses"
)

type doseRepo struct {
	mu   sync.RWMutex
	byID map[string]doses.AppliedDose
}

func NewDoseRepo() doses.Repository {
	return &doseRepo{
		byID: make(map[string]doses.AppliedDose),
	}
}

func (r *doseRepo) Create(ctx context.Context, d doses.AppliedDose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("dose already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doseRepo) GetByID(ctx context.Context, id string) (doses.AppliedDose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doses.AppliedDose{}, ErrNotFound
	}
	return d, nil
}

func (r *doseRepo) ListByPatient(ctx context.Context, patientID string, filter doses.ListFilter) ([]doses.AppliedDose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doses.AppliedDose, 0)
	for _, d := range r.byID {
		if d.PatientID != patientID {
			continue
		}
		if filter.From != nil && d.AppliedOn.Before(*filter.From) {
			continue
		}
		if filter.To != nil && d.AppliedOn.After(*filter.To) {
			continue
		}
		out = append(out, d)
	}

	// Orden por applied_on asc: el historial se lee en orden de aplicación.
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppliedOn.Before(out[j].AppliedOn)
	})

	// Limit <= 0 significa historial completo (el pipeline lo necesita entero).
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *doseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
