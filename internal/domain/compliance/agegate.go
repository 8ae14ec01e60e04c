package compliance

import (
	"fmt"

	"vet-vaccination-tracker/internal/domain/protocol"
)

// AgeCheck es el resultado del age gate. Allowed es siempre true: la edad
// mínima es una advertencia, nunca un veto. El caller decide si pide
// confirmación antes de registrar.
type AgeCheck struct {
	Allowed  bool
	EdgeCase bool
	Warning  string
}

// CheckAge evalúa la edad del paciente contra la edad mínima de la dosis.
// Dosis desconocidas o sin umbral pasan sin advertencia.
func (e *Evaluator) CheckAge(doseDefinitionID string, patientAgeMonths int, species protocol.Species) AgeCheck {
	d, ok := e.catalog.Resolve(doseDefinitionID)
	if !ok || d.Species != species {
		return AgeCheck{Allowed: true}
	}

	if d.HasMinAge() && patientAgeMonths < *d.MinAgeMonths {
		return AgeCheck{
			Allowed:  true,
			EdgeCase: true,
			Warning: fmt.Sprintf(
				"Este paciente tiene %d meses. La vacuna %s generalmente se aplica a partir de los %d meses.",
				patientAgeMonths, d.DisplayName, *d.MinAgeMonths,
			),
		}
	}

	return AgeCheck{Allowed: true}
}
