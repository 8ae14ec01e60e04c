package reminders

import (
	"fmt"
	"time"
)

// ReminderEvent es un recordatorio futuro ya armado, listo para que el
// notificador externo lo despache. El motor lo crea con Sent=false y no lo
// vuelve a tocar: marcarlo enviado es trabajo del notificador, borrarlo es
// acción explícita del usuario.
type ReminderEvent struct {
	ID        string
	PatientID string

	// DoseDefinitionID es la dosis objetivo del recordatorio.
	DoseDefinitionID string

	// DueDate: fecha recomendada de la próxima dosis.
	// NotifyOn: fecha en que debe despacharse el aviso (siempre antes de DueDate).
	DueDate  time.Time
	NotifyOn time.Time

	Sent   bool
	SentAt *time.Time

	// Metadata de presentación para el notificador.
	Title      string
	Message    string
	PetName    string
	OwnerName  string
	OwnerEmail string
	OwnerPhone string

	CreatedAt time.Time
}

// NaturalKey es la clave natural del recordatorio. El motor no deduplica:
// disparar el pipeline dos veces por el mismo evento produce duplicados y es
// el store/caller quien decide si impone unicidad sobre esta clave.
func (e ReminderEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s", e.PatientID, e.DoseDefinitionID, e.DueDate.Format("2006-01-02"))
}
