package doses_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-vaccination-tracker/internal/adapters/storage/memory"
	"vet-vaccination-tracker/internal/domain/doses"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApply(t *testing.T) {
	svc := doses.NewService(memory.NewDoseRepo())

	d, err := svc.Apply(context.Background(), "p1", "vet-1", doses.ApplyInput{
		DoseDefinitionID: "puppy",
		AppliedOn:        day(2024, 1, 1),
		Notes:            "  sin reacción  ",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if d.ID == "" {
		t.Error("la dosis debe llevar ID")
	}
	if d.PatientID != "p1" || d.RecordedBy != "vet-1" {
		t.Errorf("referencias incorrectas: %+v", d)
	}
	if d.Notes != "sin reacción" {
		t.Errorf("notes sin trim: %q", d.Notes)
	}
	if d.RecordedAt.IsZero() {
		t.Error("recordedAt vacío")
	}

	stored, err := svc.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("la dosis no quedó persistida: %v", err)
	}
	if !stored.AppliedOn.Equal(day(2024, 1, 1)) {
		t.Errorf("appliedOn = %v", stored.AppliedOn)
	}
}

func TestApplyValidation(t *testing.T) {
	svc := doses.NewService(memory.NewDoseRepo())
	ctx := context.Background()

	cases := []struct {
		name       string
		patientID  string
		recordedBy string
		in         doses.ApplyInput
	}{
		{"sin paciente", "", "vet-1", doses.ApplyInput{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)}},
		{"sin definición", "p1", "vet-1", doses.ApplyInput{AppliedOn: day(2024, 1, 1)}},
		{"sin fecha", "p1", "vet-1", doses.ApplyInput{DoseDefinitionID: "puppy"}},
		{"sin usuario", "p1", "", doses.ApplyInput{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(ctx, tc.patientID, tc.recordedBy, tc.in); !errors.Is(err, doses.ErrInvalidInput) {
				t.Fatalf("err = %v, esperaba ErrInvalidInput", err)
			}
		})
	}
}

func TestListByPatientFilter(t *testing.T) {
	svc := doses.NewService(memory.NewDoseRepo())
	ctx := context.Background()

	dates := []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 3, 1)}
	for _, d := range dates {
		if _, err := svc.Apply(ctx, "p1", "vet-1", doses.ApplyInput{DoseDefinitionID: "puppy", AppliedOn: d}); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if _, err := svc.Apply(ctx, "p2", "vet-1", doses.ApplyInput{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 15)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	all, err := svc.ListByPatient(ctx, "p1", doses.ListFilter{})
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("esperaba 3 dosis, hubo %d", len(all))
	}
	// Orden ascendente por applied_on.
	for i := 1; i < len(all); i++ {
		if all[i].AppliedOn.Before(all[i-1].AppliedOn) {
			t.Fatal("historial fuera de orden")
		}
	}

	from := day(2024, 1, 15)
	to := day(2024, 2, 15)
	ranged, err := svc.ListByPatient(ctx, "p1", doses.ListFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(ranged) != 1 || !ranged[0].AppliedOn.Equal(day(2024, 2, 1)) {
		t.Fatalf("filtro de rango incorrecto: %+v", ranged)
	}

	limited, err := svc.ListByPatient(ctx, "p1", doses.ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit = 2, hubo %d", len(limited))
	}
}

func TestDelete(t *testing.T) {
	svc := doses.NewService(memory.NewDoseRepo())
	ctx := context.Background()

	d, err := svc.Apply(ctx, "p1", "vet-1", doses.ApplyInput{DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, d.ID); err == nil {
		t.Fatal("la dosis seguía existiendo tras el borrado")
	}

	if err := svc.Delete(ctx, "  "); !errors.Is(err, doses.ErrInvalidInput) {
		t.Fatalf("err = %v, esperaba ErrInvalidInput", err)
	}
}

func TestEntries(t *testing.T) {
	history := []doses.AppliedDose{
		{ID: "d1", DoseDefinitionID: "puppy", AppliedOn: day(2024, 1, 1)},
		{ID: "d2", DoseDefinitionID: "puppy-extra", AppliedOn: day(2024, 1, 15)},
	}

	entries := doses.Entries(history)
	if len(entries) != 2 {
		t.Fatalf("esperaba 2 entradas, hubo %d", len(entries))
	}
	if entries[0].DoseDefinitionID != "puppy" || !entries[0].AppliedOn.Equal(day(2024, 1, 1)) {
		t.Errorf("entrada incorrecta: %+v", entries[0])
	}
}
