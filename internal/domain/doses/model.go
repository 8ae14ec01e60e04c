package doses

import "time"

// AppliedDose es un registro inmutable del historial de vacunación.
// No hay edición in-place: corregir implica borrar y volver a registrar.
type AppliedDose struct {
	ID        string
	PatientID string

	// DoseDefinitionID referencia el catálogo. Puede apuntar a un id que ya no
	// existe (datos anteriores a cambios de catálogo); el motor lo tolera
	// tratándolo como que no cubre nada.
	DoseDefinitionID string

	AppliedOn  time.Time
	RecordedAt time.Time
	RecordedBy string

	Notes string
}
